package resolver

import (
	"sort"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"

	"github.com/cory-johannsen/mapforge/internal/catalog"
)

// Tokenize splits an asset name on case, underscore, and digit boundaries
// into lowercased tokens: "PineTree" -> [pine tree], "Oak_Tree_01" ->
// [oak tree 01].
func Tokenize(name string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}

	var prev rune
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.' || r == '/':
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
			b.WriteRune(unicode.ToLower(r))
		case prev != 0 && unicode.IsDigit(r) != unicode.IsDigit(prev):
			flush()
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToLower(r))
		}
		prev = r
	}
	flush()
	return tokens
}

// overlap counts distinct shared tokens between two token lists.
func overlap(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	seen := make(map[string]struct{}, len(b))
	n := 0
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

// candidate is one ranked catalog entry during tier 3/4 search.
type candidate struct {
	entry    catalog.Entry
	overlap  int
	similar  float64
	declared int
}

// rank orders candidates by token overlap, then Jaro-Winkler similarity,
// then catalog declaration order. The ordering is deterministic for any
// input set.
func rank(sourceName string, sourceTokens []string, entries []catalog.Entry) []candidate {
	srcLower := strings.ToLower(sourceName)
	cands := make([]candidate, 0, len(entries))
	for i, e := range entries {
		cands = append(cands, candidate{
			entry:    e,
			overlap:  overlap(sourceTokens, Tokenize(e.ID)),
			similar:  matchr.JaroWinkler(srcLower, strings.ToLower(e.ID), false),
			declared: i,
		})
	}
	sort.SliceStable(cands, func(i, j int) bool { return less(cands[i], cands[j]) })
	return cands
}

func less(a, b candidate) bool {
	if a.overlap != b.overlap {
		return a.overlap > b.overlap
	}
	if a.similar != b.similar {
		return a.similar > b.similar
	}
	return a.declared < b.declared
}

// inferredCategories maps name keywords to semantic categories for source
// types without an explicit table entry.
var inferredCategories = []struct {
	keyword  string
	category string
}{
	{"tree", "tree"},
	{"pine", "tree"},
	{"oak", "tree"},
	{"birch", "tree"},
	{"palm", "tree"},
	{"bush", "bush"},
	{"hedge", "bush"},
	{"rock", "rock"},
	{"boulder", "rock"},
	{"stone", "rock"},
	{"wall", "wall"},
	{"fence", "fence"},
	{"wire", "fence"},
	{"house", "building"},
	{"barn", "building"},
	{"church", "building"},
	{"building", "building"},
	{"bunker", "building"},
	{"bridge", "bridge"},
	{"tower", "tower"},
	{"sandbag", "cover"},
	{"crate", "cover"},
	{"barrel", "cover"},
}

// InferCategory guesses a semantic category from the tokens of a source
// name. Returns false when no keyword applies.
func InferCategory(sourceType string) (string, bool) {
	tokens := Tokenize(sourceType)
	for _, ic := range inferredCategories {
		for _, t := range tokens {
			if t == ic.keyword {
				return ic.category, true
			}
		}
	}
	return "", false
}

// terrainFeature reports whether a source name denotes terrain, water, or
// sky geometry that the target terrain already provides.
func terrainFeature(sourceType string) bool {
	lower := strings.ToLower(sourceType)
	for _, kw := range []string{"terrain", "water", "sea", "ocean", "sky", "sun"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
