package resolver

import (
	"github.com/cory-johannsen/mapforge/internal/catalog"
)

// Resolver walks an ordered strategy list; the first strategy to produce a
// resolution wins. The list itself is inspectable so the fallback ordering
// is data, not buried control flow.
type Resolver struct {
	deps       Deps
	strategies []Strategy
}

// New constructs a Resolver with the standard tier ordering: exact,
// override, category, keyword, guess.
//
// Precondition: cat must be non-nil; mappings may be empty but not nil.
func New(cat *catalog.Catalog, mappings *catalog.MappingTable) *Resolver {
	return NewWithStrategies(
		Deps{Catalog: cat, Mappings: mappings},
		[]Strategy{
			exactStrategy{},
			overrideStrategy{},
			categoryStrategy{},
			keywordStrategy{},
			guessStrategy{},
		},
	)
}

// NewWithStrategies constructs a Resolver with a caller-supplied chain,
// used by tests to exercise tiers in isolation.
func NewWithStrategies(deps Deps, strategies []Strategy) *Resolver {
	return &Resolver{deps: deps, strategies: strategies}
}

// StrategyNames returns the chain ordering for logs and reports.
func (r *Resolver) StrategyNames() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve maps a source type to a target catalog entry. It is a total
// function over immutable inputs: every call returns a tagged Resolution
// and concurrent calls are safe.
//
// Postcondition: the returned Resolution's Tier is one of the defined
// outcomes; TargetID is non-nil iff the tier is 1-5.
func (r *Resolver) Resolve(sourceType string, ctx catalog.MapContext) Resolution {
	for _, s := range r.strategies {
		if res, ok := s.Resolve(sourceType, ctx, r.deps); ok {
			return res
		}
	}

	if note, ok := r.deps.Mappings.SkipNote(sourceType); ok {
		return Resolution{Tier: TierSkipped, Note: note}
	}
	if terrainFeature(sourceType) {
		return Resolution{Tier: TierSkipped,
			Note: "terrain/water feature provided by the target terrain"}
	}
	return Resolution{Tier: TierUnmapped, Note: "no strategy produced a target"}
}
