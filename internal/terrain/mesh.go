package terrain

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// FromMesh rasterizes a terrain vertex cloud into a height grid. Vertices
// are binned into the nearest cell and averaged; cells left empty are
// filled from their nearest populated neighbors so the grid has no holes.
//
// Precondition: resolution >= 2; bounds must have positive extent.
// Postcondition: returns a Grid honoring the bilinear contract, or an
// error when no vertex lands inside the bounds.
func FromMesh(verts [][3]float64, resolution int, bounds Bounds) (*Grid, error) {
	if resolution < 2 {
		return nil, fmt.Errorf("mesh grid resolution must be >= 2, got %d", resolution)
	}
	if bounds.MaxX <= bounds.MinX || bounds.MaxZ <= bounds.MinZ {
		return nil, fmt.Errorf("mesh grid bounds must have positive extent, got %+v", bounds)
	}

	sum := make([]float64, resolution*resolution)
	count := make([]int, resolution*resolution)
	spanX := bounds.MaxX - bounds.MinX
	spanZ := bounds.MaxZ - bounds.MinZ

	binned := 0
	for _, v := range verts {
		i := int(math.Round((v[0] - bounds.MinX) / spanX * float64(resolution-1)))
		j := int(math.Round((v[2] - bounds.MinZ) / spanZ * float64(resolution-1)))
		if i < 0 || i >= resolution || j < 0 || j >= resolution {
			continue
		}
		sum[j*resolution+i] += v[1]
		count[j*resolution+i]++
		binned++
	}
	if binned == 0 {
		return nil, fmt.Errorf("no mesh vertices fall inside bounds %+v", bounds)
	}

	heights := make([]float64, resolution*resolution)
	filled := make([]bool, resolution*resolution)
	for idx := range heights {
		if count[idx] > 0 {
			heights[idx] = sum[idx] / float64(count[idx])
			filled[idx] = true
		}
	}
	fillHoles(heights, filled, resolution)

	rows := make([][]float64, resolution)
	for j := range rows {
		rows[j] = heights[j*resolution : (j+1)*resolution]
	}
	return NewGrid(rows, bounds)
}

// fillHoles propagates heights outward from populated cells, one ring per
// pass, averaging the already-filled 4-neighbors. Terminates because every
// pass fills at least one cell while any hole remains.
func fillHoles(heights []float64, filled []bool, n int) {
	for {
		progressed := false
		next := make([]bool, len(filled))
		copy(next, filled)
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				idx := j*n + i
				if filled[idx] {
					continue
				}
				var sum float64
				var cnt int
				for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
					ni, nj := i+d[0], j+d[1]
					if ni < 0 || ni >= n || nj < 0 || nj >= n {
						continue
					}
					if filled[nj*n+ni] {
						sum += heights[nj*n+ni]
						cnt++
					}
				}
				if cnt > 0 {
					heights[idx] = sum / float64(cnt)
					next[idx] = true
					progressed = true
				}
			}
		}
		filled = next
		if !progressed {
			return
		}
	}
}

// LoadMeshVertices reads a vertex dump in the common text form: one
// "v x y z" line per vertex, other lines ignored.
//
// Precondition: path must be readable.
// Postcondition: returns at least one vertex or a non-nil error.
func LoadMeshVertices(path string) ([][3]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mesh file %s: %w", path, err)
	}
	defer f.Close()

	var verts [][3]float64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) != 4 || fields[0] != "v" {
			continue
		}
		var v [3]float64
		ok := true
		for i := 0; i < 3; i++ {
			n, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				ok = false
				break
			}
			v[i] = n
		}
		if ok {
			verts = append(verts, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mesh file %s: %w", path, err)
	}
	if len(verts) == 0 {
		return nil, fmt.Errorf("mesh file %s contains no vertices", path)
	}
	return verts, nil
}
