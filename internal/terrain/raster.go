package terrain

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// FromRaster builds a height grid from a raw square heightmap file. A file
// of n*n bytes is read as 8-bit samples, 2*n*n bytes as little-endian
// 16-bit samples. Each sample becomes raw*scale + offset world units.
//
// Precondition: path must be a readable raw heightmap with a square sample
// count; scale must be non-zero.
// Postcondition: returns a Grid honoring the bilinear contract, or a
// non-nil error.
func FromRaster(path string, scale, offset float64, bounds Bounds) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading heightmap %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("heightmap %s is empty", path)
	}

	// 2*n*n is never a perfect square, so the two layouts cannot collide.
	var raw []float64
	if intSqrt(len(data)) > 0 {
		raw = make([]float64, len(data))
		for i, b := range data {
			raw[i] = float64(b)
		}
	} else if len(data)%2 == 0 && intSqrt(len(data)/2) > 0 {
		raw = make([]float64, len(data)/2)
		for i := range raw {
			raw[i] = float64(binary.LittleEndian.Uint16(data[2*i:]))
		}
	} else {
		return nil, fmt.Errorf("heightmap %s: %d bytes is not a square 8-bit or 16-bit raster", path, len(data))
	}

	side := intSqrt(len(raw))
	if side < 2 {
		return nil, fmt.Errorf("heightmap %s: side %d is too small", path, side)
	}

	rows := make([][]float64, side)
	for j := 0; j < side; j++ {
		row := make([]float64, side)
		for i := 0; i < side; i++ {
			row[i] = raw[j*side+i]*scale + offset
		}
		rows[j] = row
	}
	return NewGrid(rows, bounds)
}

// intSqrt returns n where n*n == v, or 0 when v is not a perfect square.
func intSqrt(v int) int {
	if v <= 0 {
		return 0
	}
	n := int(math.Round(math.Sqrt(float64(v))))
	if n*n == v {
		return n
	}
	return 0
}
