// Package terrain answers height queries against the target map's terrain.
// All providers share one bilinear contract so callers never know which
// backing source is in use.
package terrain

// Bounds is the world-space extent of a terrain on the horizontal plane.
type Bounds struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
}

// CenterX returns the true geometric center on the X axis.
func (b Bounds) CenterX() float64 { return (b.MinX + b.MaxX) / 2 }

// CenterZ returns the true geometric center on the Z axis.
func (b Bounds) CenterZ() float64 { return (b.MinZ + b.MaxZ) / 2 }

// Oracle answers height queries for a terrain. Implementations are
// immutable after construction; HeightAt is safe for concurrent use.
type Oracle interface {
	// HeightAt returns the terrain height at (x, z). Queries outside the
	// bounds are clamped to the nearest edge sample, never extrapolated.
	HeightAt(x, z float64) float64
	// Bounds returns the terrain extent the oracle covers.
	Bounds() Bounds
}

// Constant is the fixed-height provider, used for flat placeholder terrain
// and in tests.
type Constant struct {
	height float64
	bounds Bounds
}

var _ Oracle = (*Constant)(nil)

// NewConstant constructs a Constant oracle.
func NewConstant(height float64, bounds Bounds) *Constant {
	return &Constant{height: height, bounds: bounds}
}

// HeightAt returns the fixed height for every query.
func (c *Constant) HeightAt(x, z float64) float64 { return c.height }

// Bounds returns the configured extent.
func (c *Constant) Bounds() Bounds { return c.bounds }
