// Package resolver maps legacy source asset types to best-available target
// catalog entries through an ordered fallback chain. Resolution is a total
// function: every call produces a tagged Resolution, never an error.
package resolver

import (
	"fmt"
	"sort"
	"strings"
)

// Tier identifies which fallback strategy produced a resolution.
type Tier int

const (
	// TierSkipped marks a source type deliberately converted to nothing
	// (terrain and water features with no destination equivalent).
	TierSkipped Tier = 0
	// TierExact is a direct entry in the source-to-target mapping table.
	TierExact Tier = 1
	// TierOverride is an alternate mapping declared for the target map.
	TierOverride Tier = 2
	// TierCategory is a same-semantic-category substitute.
	TierCategory Tier = 3
	// TierKeyword is a full-catalog token-overlap match.
	TierKeyword Tier = 4
	// TierGuess is a substring heuristic fallback.
	TierGuess Tier = 5
	// TierUnmapped means no strategy produced a target.
	TierUnmapped Tier = 6
)

// String returns the tier label used in reports.
func (t Tier) String() string {
	switch t {
	case TierSkipped:
		return "skipped"
	case TierExact:
		return "exact"
	case TierOverride:
		return "override"
	case TierCategory:
		return "category"
	case TierKeyword:
		return "keyword"
	case TierGuess:
		return "guess"
	case TierUnmapped:
		return "unmapped"
	default:
		return "invalid"
	}
}

// Resolution is the outcome of one resolve call. TargetID is nil for the
// skipped and unmapped outcomes. Resolutions are never mutated after
// creation.
type Resolution struct {
	TargetID   *string
	Tier       Tier
	Confidence float64
	Note       string
}

// Resolved reports whether a target asset was assigned.
func (r Resolution) Resolved() bool { return r.TargetID != nil }

// Stats accumulates per-tier counts so callers can report conversion
// quality without re-deriving resolver logic.
type Stats struct {
	total  int
	byTier map[Tier]int
}

// NewStats returns an empty accumulator.
func NewStats() *Stats {
	return &Stats{byTier: make(map[Tier]int)}
}

// Record counts one resolution.
func (s *Stats) Record(res Resolution) {
	s.total++
	s.byTier[res.Tier]++
}

// Total returns the number of recorded resolutions.
func (s *Stats) Total() int { return s.total }

// Count returns how many resolutions landed on the given tier.
func (s *Stats) Count(t Tier) int { return s.byTier[t] }

// Percent returns the share of resolutions on the given tier, 0-100.
func (s *Stats) Percent(t Tier) float64 {
	if s.total == 0 {
		return 0
	}
	return 100 * float64(s.byTier[t]) / float64(s.total)
}

// Summary renders one line per populated tier, highest tier count first.
func (s *Stats) Summary() string {
	tiers := make([]Tier, 0, len(s.byTier))
	for t := range s.byTier {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool {
		if s.byTier[tiers[i]] != s.byTier[tiers[j]] {
			return s.byTier[tiers[i]] > s.byTier[tiers[j]]
		}
		return tiers[i] < tiers[j]
	})
	var b strings.Builder
	for _, t := range tiers {
		fmt.Fprintf(&b, "%-9s %5d  (%.1f%%)\n", t.String(), s.byTier[t], s.Percent(t))
	}
	return b.String()
}
