package dbscan

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// BallTree is a ball tree over flat row-major points. Every node keeps the
// centroid of its points and the largest distance from it, so pruning is
// sound for any metric that satisfies the triangle inequality.
type BallTree struct {
	pointTree
	centers []float64 // centroid of node i is centers[i*dims:(i+1)*dims]
	radii   []float64
}

// NewBallTree builds a ball tree from flat row-major data with n points of
// dimensionality dims. The data is copied. leafSize caps the points per
// leaf; values below 1 are treated as 1.
func NewBallTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *BallTree {
	t := &BallTree{pointTree: newPointTree(data, n, dims, metric, leafSize)}
	t.centers = make([]float64, len(t.nodes)*dims)
	t.radii = make([]float64, len(t.nodes))
	t.build(t.recordBall)
	return t
}

func (t *BallTree) center(id int) []float64 { return t.centers[id*t.dims : (id+1)*t.dims] }

func (t *BallTree) recordBall(id, start, end int) {
	c := t.center(id)
	for _, p := range t.perm[start:end] {
		floats.Add(c, t.point(p))
	}
	floats.Scale(1/float64(end-start), c)

	var radius float64
	for _, p := range t.perm[start:end] {
		radius = max(radius, t.metric.Distance(c, t.point(p)))
	}
	t.radii[id] = radius
}

// QueryRadius appends to dst the indices of every point within distance r
// of query and returns the extended slice. Points at exactly r are
// included.
func (t *BallTree) QueryRadius(dst []int, query []float64, r float64) []int {
	return t.queryRadius(dst, query, r, t.MinRdistPoint)
}

// QueryKNN finds the k nearest neighbors for each row in queryData.
func (t *BallTree) QueryKNN(queryData []float64, queryRows, k int) ([][]int, [][]float64) {
	return t.queryKNN(queryData, queryRows, k, t.MinRdistPoint)
}

// MinRdistPoint returns a lower bound in reduced-distance space on the
// distance between point and any point in node. Unused nodes report +Inf.
func (t *BallTree) MinRdistPoint(node int, point []float64) float64 {
	if !t.used(node) {
		return math.Inf(1)
	}
	gap := max(t.metric.Distance(point, t.center(node))-t.radii[node], 0)
	return t.metric.DistToRdist(gap)
}
