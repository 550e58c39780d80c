package dbscan

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// NeighborQuerier answers "which points lie within the radius of point i"
// for a fixed point set and radius.
//
// Neighbors appends the indices to dst and returns the extended slice. The
// result always contains i itself, so a MinPts threshold counts the point
// being queried. The order of the indices is unspecified but the set must be
// the same on every call. Implementations must be safe for concurrent use.
type NeighborQuerier interface {
	NumPoints() int
	Neighbors(dst []int, i int) []int
}

// BruteForceIndex answers neighbor queries with a linear scan. It works with
// any DistanceMetric.
type BruteForceIndex struct {
	data   []float64
	n      int
	dims   int
	radius float64
	metric DistanceMetric
}

// NewBruteForceIndex indexes flat row-major data with n points of
// dimensionality dims. The data slice is borrowed, not copied.
func NewBruteForceIndex(data []float64, n, dims int, metric DistanceMetric, radius float64) *BruteForceIndex {
	return &BruteForceIndex{data: data, n: n, dims: dims, radius: radius, metric: metric}
}

func (b *BruteForceIndex) NumPoints() int { return b.n }

func (b *BruteForceIndex) Neighbors(dst []int, i int) []int {
	query := b.data[i*b.dims : (i+1)*b.dims]
	for j := 0; j < b.n; j++ {
		if j == i || b.metric.Distance(query, b.data[j*b.dims:(j+1)*b.dims]) <= b.radius {
			dst = append(dst, j)
		}
	}
	return dst
}

// TreeIndex adapts a SpatialTree into a NeighborQuerier for one radius.
type TreeIndex struct {
	tree   SpatialTree
	radius float64
}

// NewTreeIndex returns a querier that answers radius queries from tree.
func NewTreeIndex(tree SpatialTree, radius float64) *TreeIndex {
	return &TreeIndex{tree: tree, radius: radius}
}

func (t *TreeIndex) NumPoints() int { return t.tree.NumPoints() }

func (t *TreeIndex) Neighbors(dst []int, i int) []int {
	dims := t.tree.NumFeatures()
	start := len(dst)
	dst = t.tree.QueryRadius(dst, t.tree.Data()[i*dims:(i+1)*dims], t.radius)
	// A point with a NaN or Inf coordinate is NaN away from itself.
	if !slices.Contains(dst[start:], i) {
		dst = append(dst, i)
	}
	return dst
}

// MatrixIndex answers neighbor queries from a precomputed distance matrix.
type MatrixIndex struct {
	dist   []float64
	n      int
	radius float64
}

// NewMatrixIndex wraps a flat n*n row-major distance matrix, where
// dist[i*n+j] is the distance between points i and j.
func NewMatrixIndex(dist []float64, n int, radius float64) (*MatrixIndex, error) {
	if len(dist) != n*n {
		return nil, errors.Mark(
			errors.Newf("dbscan: distMatrix length %d does not match n*n = %d (n=%d)", len(dist), n*n, n),
			ErrInvalidConfig)
	}
	return &MatrixIndex{dist: dist, n: n, radius: radius}, nil
}

func (m *MatrixIndex) NumPoints() int { return m.n }

func (m *MatrixIndex) Neighbors(dst []int, i int) []int {
	row := m.dist[i*m.n : (i+1)*m.n]
	for j, d := range row {
		if j == i || d <= m.radius {
			dst = append(dst, j)
		}
	}
	return dst
}

// NewIndex builds the querier selected by cfg.Algorithm over flat row-major
// data. cfg must already have defaults applied and be valid. When
// cfg.Precompute is set the querier is materialized into a NeighborTable,
// and when cfg.CacheSize is positive it is wrapped in a CachedQuerier.
func NewIndex(data []float64, n, dims int, cfg Config) (NeighborQuerier, Algorithm, error) {
	algo, err := selectAlgorithm(cfg, n, dims)
	if err != nil {
		return nil, "", err
	}

	var q NeighborQuerier
	switch algo {
	case AlgorithmKDTree:
		q = NewTreeIndex(NewKDTree(data, n, dims, cfg.Metric, cfg.LeafSize), cfg.Radius)
	case AlgorithmBallTree:
		q = NewTreeIndex(NewBallTree(data, n, dims, cfg.Metric, cfg.LeafSize), cfg.Radius)
	case AlgorithmGonumKDTree:
		q = NewTreeIndex(NewGonumKDTree(data, n, dims), cfg.Radius)
	case AlgorithmGrid:
		q = NewGridIndex(data, n, dims, cfg.Metric, cfg.Radius)
	default:
		q = NewBruteForceIndex(data, n, dims, cfg.Metric, cfg.Radius)
	}

	if cfg.Precompute {
		q = BuildNeighborTable(q, cfg.Workers)
	} else if cfg.CacheSize > 0 {
		q, err = NewCachedQuerier(q, cfg.CacheSize)
		if err != nil {
			return nil, "", err
		}
	}
	return q, algo, nil
}
