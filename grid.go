package dbscan

import "math"

// cellKey addresses one grid cell. Unused trailing dimensions stay zero.
type cellKey [maxGridDims]int64

// GridIndex hashes points into hypercube cells of side Radius. Every
// neighbor of a point lies in the point's own cell or one of the 3^dims - 1
// cells around it, so a query scans at most 3^dims cells.
type GridIndex struct {
	data     []float64
	n        int
	dims     int
	radius   float64
	cellSize float64
	metric   DistanceMetric
	cells    map[cellKey][]int
	keys     []cellKey // cell of each point
	offsets  []cellKey // all {-1,0,1}^dims displacements
}

// NewGridIndex buckets flat row-major data with n points of dimensionality
// dims (at most 8). The data slice is borrowed, not copied.
func NewGridIndex(data []float64, n, dims int, metric DistanceMetric, radius float64) *GridIndex {
	cellSize := radius
	if cellSize == 0 {
		// Only identical points are neighbors, and they share any cell.
		cellSize = 1
	}

	g := &GridIndex{
		data:     data,
		n:        n,
		dims:     dims,
		radius:   radius,
		cellSize: cellSize,
		metric:   metric,
		cells:    make(map[cellKey][]int),
		keys:     make([]cellKey, n),
		offsets:  gridOffsets(dims),
	}
	for i := 0; i < n; i++ {
		k := g.cellOf(data[i*dims : (i+1)*dims])
		g.keys[i] = k
		g.cells[k] = append(g.cells[k], i)
	}
	return g
}

func (g *GridIndex) cellOf(p []float64) cellKey {
	var k cellKey
	for d, v := range p {
		k[d] = int64(math.Floor(v / g.cellSize))
	}
	return k
}

// gridOffsets enumerates {-1,0,1}^dims in odometer order.
func gridOffsets(dims int) []cellKey {
	total := 1
	for d := 0; d < dims; d++ {
		total *= 3
	}
	offsets := make([]cellKey, total)
	for i := range offsets {
		v := i
		for d := 0; d < dims; d++ {
			offsets[i][d] = int64(v%3) - 1
			v /= 3
		}
	}
	return offsets
}

// NumCells returns the number of non-empty cells.
func (g *GridIndex) NumCells() int { return len(g.cells) }

func (g *GridIndex) NumPoints() int { return g.n }

func (g *GridIndex) Neighbors(dst []int, i int) []int {
	query := g.data[i*g.dims : (i+1)*g.dims]
	home := g.keys[i]
	for _, off := range g.offsets {
		k := home
		for d := 0; d < g.dims; d++ {
			k[d] += off[d]
		}
		for _, j := range g.cells[k] {
			if j == i || g.metric.Distance(query, g.data[j*g.dims:(j+1)*g.dims]) <= g.radius {
				dst = append(dst, j)
			}
		}
	}
	return dst
}
