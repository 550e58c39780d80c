package dbscan

import "math"

// KDTree is a KD-tree over flat row-major points. Every node keeps the
// axis-aligned bounding box of its points, which bounds the distance to
// them for any Lp metric.
type KDTree struct {
	pointTree
	lo, hi []float64 // box of node i is lo[i*dims:(i+1)*dims], hi[...]
}

// NewKDTree builds a KD-tree from flat row-major data with n points of
// dimensionality dims. The data is copied. leafSize caps the points per
// leaf; values below 1 are treated as 1.
func NewKDTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *KDTree {
	t := &KDTree{pointTree: newPointTree(data, n, dims, metric, leafSize)}
	t.lo = make([]float64, len(t.nodes)*dims)
	t.hi = make([]float64, len(t.nodes)*dims)
	t.build(t.recordBox)
	return t
}

func (t *KDTree) recordBox(id, start, end int) {
	lo := t.lo[id*t.dims : (id+1)*t.dims]
	hi := t.hi[id*t.dims : (id+1)*t.dims]
	copy(lo, t.point(t.perm[start]))
	copy(hi, lo)
	for _, p := range t.perm[start+1 : end] {
		for d, v := range t.point(p) {
			lo[d], hi[d] = min(lo[d], v), max(hi[d], v)
		}
	}
}

// QueryRadius appends to dst the indices of every point within distance r
// of query and returns the extended slice. Points at exactly r are
// included.
func (t *KDTree) QueryRadius(dst []int, query []float64, r float64) []int {
	return t.queryRadius(dst, query, r, t.MinRdistPoint)
}

// QueryKNN finds the k nearest neighbors for each row in queryData.
func (t *KDTree) QueryKNN(queryData []float64, queryRows, k int) ([][]int, [][]float64) {
	return t.queryKNN(queryData, queryRows, k, t.MinRdistPoint)
}

// MinRdistPoint returns a lower bound in reduced-distance space on the
// distance between point and any point in node. Unused nodes report +Inf.
func (t *KDTree) MinRdistPoint(node int, point []float64) float64 {
	if !t.used(node) {
		return math.Inf(1)
	}
	lo := t.lo[node*t.dims : (node+1)*t.dims]
	hi := t.hi[node*t.dims : (node+1)*t.dims]
	p := metricP(t.metric)

	var rdist float64
	for d, v := range point {
		gap := max(lo[d]-v, v-hi[d], 0)
		switch {
		case math.IsInf(p, 1):
			rdist = max(rdist, gap)
		case p == 2:
			rdist += gap * gap
		case p == 1:
			rdist += gap
		default:
			rdist += math.Pow(gap, p)
		}
	}
	return rdist
}

// metricP returns the Minkowski exponent for the metric, defaulting to
// 2 for Euclidean and 1 for Manhattan.
func metricP(m DistanceMetric) float64 {
	switch v := m.(type) {
	case EuclideanMetric:
		return 2.0
	case ManhattanMetric:
		return 1.0
	case MinkowskiMetric:
		return v.P
	case ChebyshevMetric:
		return math.Inf(1)
	default:
		return 2.0
	}
}
