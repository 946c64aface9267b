package transform

import (
	"fmt"

	"github.com/cory-johannsen/mapforge/internal/terrain"
)

// ResidualMetric scores one candidate orientation: lower is better. The
// points are the fully placed XZ positions for that candidate. Metrics are
// deliberately pluggable; no single scoring function is canonical.
type ResidualMetric interface {
	Name() string
	Score(points [][2]float64, oracle terrain.Oracle) float64
}

// MetricByName returns the shipped metric for a config name.
func MetricByName(name string) (ResidualMetric, error) {
	switch name {
	case "spread":
		return BoundsSpread{}, nil
	case "slope":
		return SlopeRoughness{}, nil
	default:
		return nil, fmt.Errorf("unknown orientation metric %q", name)
	}
}

// BoundsSpread penalizes placements that spill outside the terrain bounds:
// the score is the summed squared distance of each point past the nearest
// edge. A layout fully inside the terrain scores zero.
type BoundsSpread struct{}

// Name returns "spread".
func (BoundsSpread) Name() string { return "spread" }

// Score sums squared out-of-bounds distances over all points.
func (BoundsSpread) Score(points [][2]float64, oracle terrain.Oracle) float64 {
	b := oracle.Bounds()
	var score float64
	for _, p := range points {
		score += overshoot(p[0], b.MinX, b.MaxX)
		score += overshoot(p[1], b.MinZ, b.MaxZ)
	}
	return score
}

func overshoot(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return (lo - v) * (lo - v)
	case v > hi:
		return (v - hi) * (v - hi)
	default:
		return 0
	}
}

// SlopeRoughness penalizes placing objects on steep ground: for each point
// it samples the terrain one step in each axis direction and accumulates
// the absolute height deltas.
type SlopeRoughness struct {
	// Step is the sampling distance in world units; 0 means 1.
	Step float64
}

// Name returns "slope".
func (m SlopeRoughness) Name() string { return "slope" }

// Score sums local slope magnitudes at every point.
func (m SlopeRoughness) Score(points [][2]float64, oracle terrain.Oracle) float64 {
	step := m.Step
	if step == 0 {
		step = 1
	}
	var score float64
	for _, p := range points {
		h := oracle.HeightAt(p[0], p[1])
		score += abs(oracle.HeightAt(p[0]+step, p[1]) - h)
		score += abs(oracle.HeightAt(p[0]-step, p[1]) - h)
		score += abs(oracle.HeightAt(p[0], p[1]+step) - h)
		score += abs(oracle.HeightAt(p[0], p[1]-step) - h)
	}
	return score
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
