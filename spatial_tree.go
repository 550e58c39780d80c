package dbscan

import (
	"container/heap"
	"sort"
)

// SpatialTree is the read interface shared by the KD-tree, the ball tree
// and the gonum-backed KD-tree.
type SpatialTree interface {
	// QueryKNN finds the k nearest neighbors for each row in queryData.
	// queryData is flat row-major with queryRows rows.
	// Returns per-query neighbor indices and distances (both sorted by distance).
	QueryKNN(queryData []float64, queryRows, k int) (indices [][]int, distances [][]float64)

	// QueryRadius appends to dst the indices of every point within distance
	// r of query, boundary included, in no particular order.
	QueryRadius(dst []int, query []float64, r float64) []int

	// Data returns the flat row-major point data owned by the tree.
	Data() []float64

	// NumPoints returns the number of points in the tree.
	NumPoints() int

	// NumFeatures returns the dimensionality of each point.
	NumFeatures() int
}

// radiusSlack widens pruning bounds so that rounding in the bound
// computation never drops a point that lies exactly on the radius.
const radiusSlack = 1e-9

// pruneRdist converts a radius into the reduced-distance bound a tree may
// prune against.
func pruneRdist(m DistanceMetric, r float64) float64 {
	return m.DistToRdist(r) * (1 + radiusSlack)
}

// lowerBound returns a reduced-distance lower bound from a query to every
// point of a node.
type lowerBound func(node int, query []float64) float64

// treeNode covers the points perm[start:end].
type treeNode struct {
	start, end int
	leaf       bool
}

// pointTree is the array-backed binary tree under KDTree and BallTree.
// Node i has children 2i+1 and 2i+2. Each split sorts a node's points along
// their widest dimension and halves them at the median.
type pointTree struct {
	data     []float64
	n        int
	dims     int
	leafSize int
	metric   DistanceMetric
	perm     []int // tree order -> point index
	nodes    []treeNode
}

func newPointTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) pointTree {
	leafSize = max(leafSize, 1)
	t := pointTree{
		data:     append([]float64(nil), data...),
		n:        n,
		dims:     dims,
		leafSize: leafSize,
		metric:   metric,
		perm:     make([]int, n),
		nodes:    make([]treeNode, treeSize(n, leafSize)),
	}
	for i := range t.perm {
		t.perm[i] = i
	}
	return t
}

// treeSize is the node count of a complete tree deep enough that halving
// n points leaves at most leafSize per leaf.
func treeSize(n, leafSize int) int {
	levels := 1
	for size := n; size > leafSize; size = (size + 1) / 2 {
		levels++
	}
	return 1<<levels - 1
}

// build partitions perm, calling visit on every node with its point range
// before the node is split.
func (t *pointTree) build(visit func(node, start, end int)) {
	if t.n > 0 {
		t.split(0, 0, t.n, visit)
	}
}

func (t *pointTree) split(id, start, end int, visit func(node, start, end int)) {
	visit(id, start, end)
	leaf := end-start <= t.leafSize
	t.nodes[id] = treeNode{start: start, end: end, leaf: leaf}
	if leaf {
		return
	}

	dim := t.widestDim(start, end)
	sub := t.perm[start:end]
	sort.Slice(sub, func(i, j int) bool {
		return t.data[sub[i]*t.dims+dim] < t.data[sub[j]*t.dims+dim]
	})
	mid := start + (end-start)/2
	t.split(2*id+1, start, mid, visit)
	t.split(2*id+2, mid, end, visit)
}

func (t *pointTree) widestDim(start, end int) int {
	best, bestSpread := 0, -1.0
	for d := 0; d < t.dims; d++ {
		lo, hi := t.data[t.perm[start]*t.dims+d], t.data[t.perm[start]*t.dims+d]
		for _, p := range t.perm[start+1 : end] {
			v := t.data[p*t.dims+d]
			lo, hi = min(lo, v), max(hi, v)
		}
		if hi-lo > bestSpread {
			best, bestSpread = d, hi-lo
		}
	}
	return best
}

func (t *pointTree) point(i int) []float64 { return t.data[i*t.dims : (i+1)*t.dims] }

// used reports whether node id holds points.
func (t *pointTree) used(id int) bool {
	return id < len(t.nodes) && t.nodes[id].end > t.nodes[id].start
}

func (t *pointTree) Data() []float64  { return t.data }
func (t *pointTree) NumPoints() int   { return t.n }
func (t *pointTree) NumFeatures() int { return t.dims }

// NumNodes returns the number of nodes (internal and leaf) in the tree.
func (t *pointTree) NumNodes() int {
	count := 0
	for id := range t.nodes {
		if t.used(id) {
			count++
		}
	}
	return count
}

func (t *pointTree) queryRadius(dst []int, query []float64, r float64, bound lowerBound) []int {
	if t.n == 0 {
		return dst
	}
	limit := pruneRdist(t.metric, r)
	stack := []int{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !t.used(id) || bound(id, query) > limit {
			continue
		}
		nd := t.nodes[id]
		if !nd.leaf {
			stack = append(stack, 2*id+2, 2*id+1)
			continue
		}
		for _, p := range t.perm[nd.start:nd.end] {
			if t.metric.Distance(query, t.point(p)) <= r {
				dst = append(dst, p)
			}
		}
	}
	return dst
}

func (t *pointTree) queryKNN(queryData []float64, queryRows, k int, bound lowerBound) ([][]int, [][]float64) {
	indices := make([][]int, queryRows)
	distances := make([][]float64, queryRows)
	for q := 0; q < queryRows; q++ {
		h := make(neighborHeap, 0, max(min(k, t.n), 0))
		if t.n > 0 && k > 0 {
			t.knn(0, queryData[q*t.dims:(q+1)*t.dims], k, &h, bound)
		}

		idx := make([]int, h.Len())
		dist := make([]float64, h.Len())
		for i := len(idx) - 1; i >= 0; i-- {
			nb := heap.Pop(&h).(neighbor)
			idx[i], dist[i] = nb.index, nb.dist
		}
		indices[q], distances[q] = idx, dist
	}
	return indices, distances
}

// knn descends nearer child first and skips a far child whose bound cannot
// beat the current k-th distance.
func (t *pointTree) knn(id int, query []float64, k int, h *neighborHeap, bound lowerBound) {
	nd := t.nodes[id]
	if nd.leaf {
		for _, p := range t.perm[nd.start:nd.end] {
			h.offer(neighbor{index: p, dist: t.metric.Distance(query, t.point(p))}, k)
		}
		return
	}

	near, far := 2*id+1, 2*id+2
	nearBound, farBound := bound(near, query), bound(far, query)
	if farBound < nearBound {
		near, far = far, near
		farBound = nearBound
	}
	t.knn(near, query, k, h, bound)
	if h.Len() < k || farBound < t.metric.DistToRdist((*h)[0].dist) {
		t.knn(far, query, k, h, bound)
	}
}

type neighbor struct {
	index int
	dist  float64
}

// neighborHeap keeps the k closest neighbors seen so far, farthest on top.
type neighborHeap []neighbor

func (h neighborHeap) Len() int            { return len(h) }
func (h neighborHeap) Less(i, j int) bool  { return h[i].dist > h[j].dist }
func (h neighborHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x interface{}) { *h = append(*h, x.(neighbor)) }
func (h *neighborHeap) Pop() interface{} {
	old := *h
	nb := old[len(old)-1]
	*h = old[:len(old)-1]
	return nb
}

func (h *neighborHeap) offer(nb neighbor, k int) {
	switch {
	case h.Len() < k:
		heap.Push(h, nb)
	case nb.dist < (*h)[0].dist:
		(*h)[0] = nb
		heap.Fix(h, 0)
	}
}
