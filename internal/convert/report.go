package convert

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/mapforge/internal/object"
	"github.com/cory-johannsen/mapforge/internal/resolver"
	"github.com/cory-johannsen/mapforge/internal/script"
	"github.com/cory-johannsen/mapforge/internal/validate"
)

// Report aggregates everything a run produced besides the document itself.
// Skipped and unmapped resolutions are distinct non-error outcomes; only
// the validation issues can flip the process exit code.
type Report struct {
	// RunID uniquely identifies this conversion run in logs and summaries.
	RunID string
	// SourceFiles is the number of root script files parsed.
	SourceFiles int
	// Objects is the number of placed instances built from the scripts.
	Objects int
	// ByCategory counts objects per gameplay role.
	ByCategory map[object.Category]int
	// ParseDiags and BuildDiags are the non-fatal problems from the parse
	// and model-build stages.
	ParseDiags []script.Diag
	BuildDiags []script.Diag
	// TreeWarnings are objects the scene builder could not place.
	TreeWarnings []string
	// Stats is the per-tier resolution breakdown.
	Stats *resolver.Stats
	// Issues is the structural validation outcome.
	Issues []validate.Issue
}

// Validated reports whether every validation rule passed.
func (r *Report) Validated() bool { return validate.AllPassed(r.Issues) }

// Summary renders the end-of-run text block.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", r.RunID)
	fmt.Fprintf(&b, "parsed  %d file(s), %d object(s)\n", r.SourceFiles, r.Objects)
	for _, c := range []object.Category{
		object.CategorySpawner,
		object.CategoryControlPoint,
		object.CategoryStaticDecoration,
		object.CategoryTerrainConfig,
		object.CategoryUnknown,
	} {
		if n := r.ByCategory[c]; n > 0 {
			fmt.Fprintf(&b, "  %-18s %d\n", c.String(), n)
		}
	}
	if n := len(r.ParseDiags) + len(r.BuildDiags); n > 0 {
		fmt.Fprintf(&b, "diagnostics %d (parse %d, build %d)\n",
			n, len(r.ParseDiags), len(r.BuildDiags))
	}
	for _, w := range r.TreeWarnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}
	if r.Stats != nil && r.Stats.Total() > 0 {
		b.WriteString("resolution tiers:\n")
		b.WriteString(indent(r.Stats.Summary()))
	}
	passed := 0
	for _, i := range r.Issues {
		if i.Passed {
			passed++
		}
	}
	fmt.Fprintf(&b, "validation %d/%d rules passed\n", passed, len(r.Issues))
	for _, i := range r.Issues {
		if !i.Passed {
			fmt.Fprintf(&b, "  FAIL %s: %s\n", i.Rule, i.Detail)
		}
	}
	return b.String()
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
