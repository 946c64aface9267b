// Package transform reconciles source-space object coordinates with the
// target terrain: centroid re-basing onto the terrain's true center, an
// optional quarter-turn orientation search, and height re-sampling.
package transform

import (
	"math"

	"github.com/cory-johannsen/mapforge/internal/object"
	"github.com/cory-johannsen/mapforge/internal/terrain"
)

// Quarter is a rotation about the vertical axis, in degrees.
type Quarter int

const (
	Turn0   Quarter = 0
	Turn90  Quarter = 90
	Turn180 Quarter = 180
	Turn270 Quarter = 270
)

// quarters is the candidate set for the orientation search, Turn0 first so
// ties deterministically resolve to no rotation.
var quarters = []Quarter{Turn0, Turn90, Turn180, Turn270}

// Placement is the computed re-basing for one conversion run.
type Placement struct {
	// CentroidX, CentroidZ is the source object centroid, the rotation pivot.
	CentroidX float64
	CentroidZ float64
	// TranslateX, TranslateZ moves the source centroid onto the terrain center.
	TranslateX float64
	TranslateZ float64
	// Rotation is the chosen quarter turn.
	Rotation Quarter
	// Residual is the metric score of the chosen rotation, for the report.
	Residual float64
}

// Options configures Plan.
type Options struct {
	// AutoOrient enables the exhaustive 4-candidate orientation search.
	// When false the rotation is always Turn0.
	AutoOrient bool
	// Metric scores candidate orientations; required when AutoOrient is set.
	Metric ResidualMetric
}

// Plan computes the placement for the given objects: source centroid,
// translation onto the terrain's true geometric center (never assumed to be
// the origin), and the residual-minimizing quarter turn.
//
// Precondition: oracle must be non-nil.
// Postcondition: the returned placement maps the object centroid exactly
// onto the terrain center.
func Plan(objects []*object.ParsedObject, oracle terrain.Oracle, opts Options) Placement {
	bounds := oracle.Bounds()
	targetX := bounds.CenterX()
	targetZ := bounds.CenterZ()

	if len(objects) == 0 {
		return Placement{CentroidX: targetX, CentroidZ: targetZ}
	}

	var cx, cz float64
	for _, o := range objects {
		cx += o.Position[0]
		cz += o.Position[2]
	}
	cx /= float64(len(objects))
	cz /= float64(len(objects))

	p := Placement{
		CentroidX:  cx,
		CentroidZ:  cz,
		TranslateX: targetX - cx,
		TranslateZ: targetZ - cz,
	}

	if !opts.AutoOrient || opts.Metric == nil {
		p.Residual = math.NaN()
		return p
	}

	best := math.Inf(1)
	for _, q := range quarters {
		points := make([][2]float64, len(objects))
		for i, o := range objects {
			x, z := placeXZ(o.Position[0], o.Position[2], p, q)
			points[i] = [2]float64{x, z}
		}
		// Strict less-than keeps the earliest candidate on ties, so a full
		// tie resolves to Turn0.
		if score := opts.Metric.Score(points, oracle); score < best {
			best = score
			p.Rotation = q
		}
	}
	p.Residual = best
	return p
}

// Apply rewrites every object's position and yaw in place: rotate about the
// source centroid, translate onto the terrain center, and recompute the
// height from the oracle. The source height is always discarded; stacking
// two unrelated height datums is never correct.
func Apply(objects []*object.ParsedObject, p Placement, oracle terrain.Oracle) {
	for _, o := range objects {
		x, z := placeXZ(o.Position[0], o.Position[2], p, p.Rotation)
		o.Position[0] = x
		o.Position[2] = z
		o.Position[1] = oracle.HeightAt(x, z)
		o.Rotation.Yaw = wrapDegrees(o.Rotation.Yaw + float64(p.Rotation))
	}
}

// placeXZ rotates (x, z) about the source centroid by q and applies the
// placement translation. Quarter turns use exact integer forms so repeated
// conversion introduces no trigonometric drift.
func placeXZ(x, z float64, p Placement, q Quarter) (float64, float64) {
	dx := x - p.CentroidX
	dz := z - p.CentroidZ

	var rx, rz float64
	switch q {
	case Turn90:
		rx, rz = -dz, dx
	case Turn180:
		rx, rz = -dx, -dz
	case Turn270:
		rx, rz = dz, -dx
	default:
		rx, rz = dx, dz
	}

	return p.CentroidX + rx + p.TranslateX, p.CentroidZ + rz + p.TranslateZ
}

func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}
