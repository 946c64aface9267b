package terrain

import (
	"fmt"
	"math"
)

// Grid is a cached height field: a row-major 2-D sample array over
// world-space bounds. Built once, queried many times, read-only.
type Grid struct {
	samples []float64
	nx, nz  int
	bounds  Bounds
}

var _ Oracle = (*Grid)(nil)

// NewGrid builds a Grid from rows of samples. rows[j][i] is the height at
// grid coordinate (i, j), with i spanning X and j spanning Z.
//
// Precondition: rows must be rectangular with at least one sample per axis;
// bounds must have positive extent on both axes.
// Postcondition: returns a queryable Grid or a non-nil error.
func NewGrid(rows [][]float64, bounds Bounds) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("height grid needs at least one sample per axis")
	}
	if bounds.MaxX <= bounds.MinX || bounds.MaxZ <= bounds.MinZ {
		return nil, fmt.Errorf("height grid bounds must have positive extent, got %+v", bounds)
	}
	nx := len(rows[0])
	nz := len(rows)
	samples := make([]float64, 0, nx*nz)
	for j, row := range rows {
		if len(row) != nx {
			return nil, fmt.Errorf("height grid row %d has %d samples, want %d", j, len(row), nx)
		}
		samples = append(samples, row...)
	}
	return &Grid{samples: samples, nx: nx, nz: nz, bounds: bounds}, nil
}

// Bounds returns the world-space extent of the grid.
func (g *Grid) Bounds() Bounds { return g.bounds }

// Size returns the sample counts per axis.
func (g *Grid) Size() (nx, nz int) { return g.nx, g.nz }

// HeightAt bilinearly interpolates the four nearest samples. Coordinates
// outside the bounds clamp to the nearest edge sample.
func (g *Grid) HeightAt(x, z float64) float64 {
	fx := g.axisCoord(x, g.bounds.MinX, g.bounds.MaxX, g.nx)
	fz := g.axisCoord(z, g.bounds.MinZ, g.bounds.MaxZ, g.nz)

	i0 := int(math.Floor(fx))
	j0 := int(math.Floor(fz))
	i1 := min(i0+1, g.nx-1)
	j1 := min(j0+1, g.nz-1)
	tx := fx - float64(i0)
	tz := fz - float64(j0)

	h00 := g.at(i0, j0)
	h10 := g.at(i1, j0)
	h01 := g.at(i0, j1)
	h11 := g.at(i1, j1)

	bottom := h00 + (h10-h00)*tx
	top := h01 + (h11-h01)*tx
	return bottom + (top-bottom)*tz
}

// axisCoord maps a world coordinate to a fractional sample index, clamped
// into [0, n-1].
func (g *Grid) axisCoord(v, lo, hi float64, n int) float64 {
	if n == 1 {
		return 0
	}
	f := (v - lo) / (hi - lo) * float64(n-1)
	if f < 0 {
		return 0
	}
	if max := float64(n - 1); f > max {
		return max
	}
	return f
}

func (g *Grid) at(i, j int) float64 {
	return g.samples[j*g.nx+i]
}
