package dbscan

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// indexedPoint is a kdtree.Comparable that remembers its original index.
// Distance is squared Euclidean, as gonum's keepers expect.
type indexedPoint struct {
	idx    int
	coords []float64
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.coords[d] - c.(indexedPoint).coords[d]
}

func (p indexedPoint) Dims() int { return len(p.coords) }

func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	return euclideanSumOfSquares(p.coords, c.(indexedPoint).coords)
}

// indexedPoints implements kdtree.Interface.
type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p indexedPoints) Len() int                              { return len(p) }
func (p indexedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p indexedPoints) Pivot(d kdtree.Dim) int {
	return indexedPlane{points: p, dim: d}.Pivot()
}

// indexedPlane sorts points along one dimension for median pivoting.
type indexedPlane struct {
	points indexedPoints
	dim    kdtree.Dim
}

func (p indexedPlane) Less(i, j int) bool {
	return p.points[i].coords[p.dim] < p.points[j].coords[p.dim]
}
func (p indexedPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p indexedPlane) Slice(start, end int) kdtree.SortSlicer {
	return indexedPlane{points: p.points[start:end], dim: p.dim}
}
func (p indexedPlane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p indexedPlane) Len() int      { return len(p.points) }

// GonumKDTree is a Euclidean SpatialTree backed by gonum's
// spatial/kdtree package.
type GonumKDTree struct {
	data []float64
	n    int
	dims int
	tree *kdtree.Tree
}

// NewGonumKDTree builds a gonum KD-tree over flat row-major data with n
// points of dimensionality dims. The data is copied.
func NewGonumKDTree(data []float64, n, dims int) *GonumKDTree {
	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)

	g := &GonumKDTree{data: dataCopy, n: n, dims: dims}
	if n == 0 {
		return g
	}
	pts := make(indexedPoints, n)
	for i := range pts {
		pts[i] = indexedPoint{idx: i, coords: dataCopy[i*dims : (i+1)*dims]}
	}
	g.tree = kdtree.New(pts, false)
	return g
}

func (g *GonumKDTree) Data() []float64  { return g.data }
func (g *GonumKDTree) NumPoints() int   { return g.n }
func (g *GonumKDTree) NumFeatures() int { return g.dims }

// QueryRadius appends the indices of every point within Euclidean
// distance r of query.
func (g *GonumKDTree) QueryRadius(dst []int, query []float64, r float64) []int {
	if g.tree == nil {
		return dst
	}
	keep := kdtree.NewDistKeeper(r * r * (1 + radiusSlack))
	g.tree.NearestSet(keep, indexedPoint{idx: -1, coords: query})
	for _, c := range keep.Heap {
		p, ok := c.Comparable.(indexedPoint)
		if ok && math.Sqrt(c.Dist) <= r {
			dst = append(dst, p.idx)
		}
	}
	return dst
}

// QueryKNN finds the k nearest neighbors for each row in queryData.
func (g *GonumKDTree) QueryKNN(queryData []float64, queryRows, k int) ([][]int, [][]float64) {
	indices := make([][]int, queryRows)
	distances := make([][]float64, queryRows)
	if g.tree == nil || k < 1 {
		return indices, distances
	}

	for q := 0; q < queryRows; q++ {
		keep := kdtree.NewNKeeper(k)
		g.tree.NearestSet(keep, indexedPoint{idx: -1, coords: queryData[q*g.dims : (q+1)*g.dims]})

		found := make(kdtree.Heap, 0, keep.Len())
		for _, c := range keep.Heap {
			if _, ok := c.Comparable.(indexedPoint); ok {
				found = append(found, c)
			}
		}
		sort.Slice(found, func(i, j int) bool { return found[i].Dist < found[j].Dist })

		idx := make([]int, len(found))
		dist := make([]float64, len(found))
		for i, c := range found {
			idx[i] = c.Comparable.(indexedPoint).idx
			dist[i] = math.Sqrt(c.Dist)
		}
		indices[q] = idx
		distances[q] = dist
	}
	return indices, distances
}
