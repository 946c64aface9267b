package resolver

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/mapforge/internal/catalog"
)

// Deps bundles the immutable shared inputs every strategy reads. Strategies
// hold no state of their own, so resolution is safe to parallelize.
type Deps struct {
	Catalog  *catalog.Catalog
	Mappings *catalog.MappingTable
}

// Strategy is one tier of the fallback chain. Resolve returns false when the
// strategy has nothing to offer and the chain should continue.
type Strategy interface {
	Name() string
	Resolve(sourceType string, ctx catalog.MapContext, deps Deps) (Resolution, bool)
}

// exactStrategy is tier 1: the precomputed source-to-target table, filtered
// by map restrictions.
type exactStrategy struct{}

func (exactStrategy) Name() string { return "exact" }

func (exactStrategy) Resolve(sourceType string, ctx catalog.MapContext, deps Deps) (Resolution, bool) {
	target, ok := deps.Mappings.ExactFor(sourceType)
	if !ok {
		return Resolution{}, false
	}
	entry, found := deps.Catalog.ByID(target)
	if !found || !entry.AllowsMap(ctx.TargetMap) {
		return Resolution{}, false
	}
	id := entry.ID
	return Resolution{
		TargetID:   &id,
		Tier:       TierExact,
		Confidence: 1.0,
		Note:       "direct mapping",
	}, true
}

// overrideStrategy is tier 2: an alternate mapping declared specifically for
// the target map, same restriction filter.
type overrideStrategy struct{}

func (overrideStrategy) Name() string { return "override" }

func (overrideStrategy) Resolve(sourceType string, ctx catalog.MapContext, deps Deps) (Resolution, bool) {
	target, ok := deps.Mappings.OverrideFor(sourceType, ctx.TargetMap)
	if !ok {
		return Resolution{}, false
	}
	entry, found := deps.Catalog.ByID(target)
	if !found || !entry.AllowsMap(ctx.TargetMap) {
		return Resolution{}, false
	}
	id := entry.ID
	return Resolution{
		TargetID:   &id,
		Tier:       TierOverride,
		Confidence: 1.0,
		Note:       fmt.Sprintf("override for %s", ctx.TargetMap),
	}, true
}

// categoryStrategy is tier 3: substitute within the source's semantic
// category so a tree stands in for a tree, never a rock.
type categoryStrategy struct{}

func (categoryStrategy) Name() string { return "category" }

func (categoryStrategy) Resolve(sourceType string, ctx catalog.MapContext, deps Deps) (Resolution, bool) {
	category, ok := deps.Mappings.CategoryFor(sourceType)
	if !ok {
		category, ok = InferCategory(sourceType)
	}
	if !ok {
		return Resolution{}, false
	}

	var allowed []catalog.Entry
	for _, e := range deps.Catalog.ByCategory(category) {
		if e.AllowsMap(ctx.TargetMap) {
			allowed = append(allowed, e)
		}
	}
	if len(allowed) == 0 {
		return Resolution{}, false
	}

	best := rank(sourceType, Tokenize(sourceType), allowed)[0]
	id := best.entry.ID
	return Resolution{
		TargetID:   &id,
		Tier:       TierCategory,
		Confidence: 0.5 + 0.4*best.similar,
		Note:       fmt.Sprintf("category %q substitute", category),
	}, true
}

// keywordStrategy is tier 4: full-catalog search ranked by token overlap.
// At least one shared token is required.
type keywordStrategy struct{}

func (keywordStrategy) Name() string { return "keyword" }

func (keywordStrategy) Resolve(sourceType string, ctx catalog.MapContext, deps Deps) (Resolution, bool) {
	tokens := Tokenize(sourceType)
	if len(tokens) == 0 {
		return Resolution{}, false
	}

	var allowed []catalog.Entry
	for _, e := range deps.Catalog.Entries() {
		if e.AllowsMap(ctx.TargetMap) {
			allowed = append(allowed, e)
		}
	}
	if len(allowed) == 0 {
		return Resolution{}, false
	}

	best := rank(sourceType, tokens, allowed)[0]
	if best.overlap < 1 {
		return Resolution{}, false
	}
	id := best.entry.ID
	return Resolution{
		TargetID:   &id,
		Tier:       TierKeyword,
		Confidence: 0.3 + 0.3*best.similar,
		Note:       fmt.Sprintf("%d shared token(s)", best.overlap),
	}, true
}

// guessStrategy is tier 5: ordered substring rules to a generic fallback,
// independent of restriction filtering.
type guessStrategy struct{}

func (guessStrategy) Name() string { return "guess" }

func (guessStrategy) Resolve(sourceType string, _ catalog.MapContext, deps Deps) (Resolution, bool) {
	lower := strings.ToLower(sourceType)
	for _, rule := range deps.Mappings.Guesses {
		if rule.Contains == "" || rule.Target == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(rule.Contains)) {
			target := rule.Target
			return Resolution{
				TargetID:   &target,
				Tier:       TierGuess,
				Confidence: 0.2,
				Note:       fmt.Sprintf("substring rule %q", rule.Contains),
			}, true
		}
	}
	return Resolution{}, false
}
