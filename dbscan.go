package dbscan

import (
	"math"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Algorithm selects the neighbor index used to answer radius queries.
type Algorithm string

const (
	AlgorithmAuto        Algorithm = "auto"
	AlgorithmBrute       Algorithm = "brute"
	AlgorithmKDTree      Algorithm = "kdtree"
	AlgorithmBallTree    Algorithm = "balltree"
	AlgorithmGonumKDTree Algorithm = "gonum_kdtree"
	AlgorithmGrid        Algorithm = "grid"
)

// ErrInvalidConfig marks every configuration error returned by this package.
// Test for it with errors.Is.
var ErrInvalidConfig = errors.New("dbscan: invalid configuration")

func invalidf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidConfig)
}

// Config controls DBSCAN clustering behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Radius is the neighborhood radius (eps). Two points are neighbors when
	// their distance is <= Radius. Must be >= 0 and not NaN. Default: 0.5.
	Radius float64

	// MinPts is the neighbor count a point needs to be a core point. The
	// count includes the point itself, so MinPts = 1 makes every point a
	// core point. Must be >= 1. Default: 5.
	MinPts int

	// Metric is the distance function used to measure point similarity.
	// Built-in: EuclideanMetric, ManhattanMetric, CosineMetric, ChebyshevMetric,
	// MinkowskiMetric. Use DistanceFunc to wrap a custom function.
	// Default: EuclideanMetric.
	Metric DistanceMetric

	// Algorithm selects the neighbor index.
	// "auto" picks a tree for Lp metrics and brute force otherwise.
	// "brute" scans every point per query and supports any metric.
	// "kdtree"/"balltree" use the package's spatial trees.
	// "gonum_kdtree" uses gonum's KD-tree (Euclidean only).
	// "grid" hashes points into cells of side Radius (low dimensions only).
	// Default: "auto".
	Algorithm Algorithm

	// LeafSize controls the maximum number of points in a spatial tree leaf node.
	// Only used with tree-based algorithms. Default: 40.
	LeafSize int

	// Precompute materializes every neighbor list with a worker pool before
	// labeling. Costs memory proportional to the total neighbor count.
	// Default: false.
	Precompute bool

	// Workers controls the number of goroutines used by Precompute.
	// 0 means use runtime.NumCPU(). Default: 0 (auto).
	Workers int

	// CacheSize, when positive and Precompute is off, keeps the neighbor
	// lists of the most recently queried points in an LRU cache.
	// Default: 0 (no cache).
	CacheSize int

	// Logger receives debug output for each discovered cluster and an info
	// summary per run. Default: a no-op logger.
	Logger *zap.Logger
}

// Result contains the output of DBSCAN clustering.
type Result struct {
	// NumClusters is the number of clusters found. Cluster IDs are
	// 0..NumClusters-1 in discovery order.
	NumClusters int

	// Labels holds one label per point. Clustered labels carry the index of
	// the point that discovered them; following those links from any member
	// reaches the cluster's seed, whose prev is its own index.
	Labels []Label

	// Core reports whether each point had at least MinPts neighbors.
	Core []bool

	// ClusterSizes[id] is the number of points in cluster id.
	ClusterSizes []int

	// NoiseCount is the number of points labeled Noise.
	NoiseCount int

	// Algorithm is the neighbor index that answered the queries.
	Algorithm Algorithm
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Radius:    0.5,
		MinPts:    5,
		Metric:    EuclideanMetric{},
		Algorithm: AlgorithmAuto,
		LeafSize:  40,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if math.IsNaN(cfg.Radius) || math.IsInf(cfg.Radius, 0) || cfg.Radius < 0 {
		return invalidf("dbscan: Radius must be a finite value >= 0, got %f", cfg.Radius)
	}
	if cfg.MinPts < 1 {
		return invalidf("dbscan: MinPts must be >= 1 (the count includes the point itself), got %d", cfg.MinPts)
	}
	switch cfg.Algorithm {
	case AlgorithmAuto, AlgorithmBrute, AlgorithmKDTree, AlgorithmBallTree,
		AlgorithmGonumKDTree, AlgorithmGrid:
		// valid
	default:
		return invalidf("dbscan: invalid Algorithm %q", cfg.Algorithm)
	}
	if cfg.LeafSize < 1 {
		return invalidf("dbscan: LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	if cfg.Workers < 0 {
		return invalidf("dbscan: Workers must be >= 0, got %d", cfg.Workers)
	}
	if cfg.CacheSize < 0 {
		return invalidf("dbscan: CacheSize must be >= 0, got %d", cfg.CacheSize)
	}
	if m, ok := cfg.Metric.(MinkowskiMetric); ok && m.P < 1 {
		return invalidf("dbscan: MinkowskiMetric.P must be >= 1, got %f", m.P)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
// Radius and MinPts have no zero-value default: 0 is a meaningful radius
// and MinPts = 0 is rejected by validateConfig.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 40
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// flatten copies data into a row-major slice and checks that every point has
// the same dimensionality and only finite coordinates.
func flatten(data [][]float64) ([]float64, int, error) {
	if len(data) == 0 {
		return nil, 0, nil
	}
	dims := len(data[0])
	if dims == 0 {
		return nil, 0, invalidf("dbscan: points must have at least one coordinate")
	}
	flat := make([]float64, len(data)*dims)
	for i, row := range data {
		if len(row) != dims {
			return nil, 0, invalidf("dbscan: point %d has %d coordinates, want %d", i, len(row), dims)
		}
		for d, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, 0, errors.WithHint(
					invalidf("dbscan: point %d has non-finite coordinate %d (%g)", i, d, v),
					"drop or impute NaN and Inf values before clustering")
			}
		}
		copy(flat[i*dims:], row)
	}
	return flat, dims, nil
}

// Cluster performs DBSCAN clustering on the given data.
// Each element is a point (float64 slice); all points must have the same
// dimensionality. Returns an error if the config is invalid.
func Cluster(data [][]float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	q, algo, err := indexPoints(data, cfg)
	if err != nil {
		return nil, err
	}
	return runLabeling(q, algo, cfg), nil
}

// IndexPoints builds the neighbor index Cluster would use for data, so that
// it can be shared with Sweep or Verify.
func IndexPoints(data [][]float64, cfg Config) (NeighborQuerier, Algorithm, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, "", err
	}
	return indexPoints(data, cfg)
}

func indexPoints(data [][]float64, cfg Config) (NeighborQuerier, Algorithm, error) {
	flat, dims, err := flatten(data)
	if err != nil {
		return nil, "", err
	}
	return NewIndex(flat, len(data), dims, cfg)
}

// ClusterPrecomputed performs DBSCAN on a precomputed distance matrix.
// distMatrix is a flat []float64 of length n*n in row-major order, where
// distMatrix[i*n+j] is the distance between points i and j. The Metric,
// Algorithm and LeafSize fields are ignored.
func ClusterPrecomputed(distMatrix []float64, n int, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	cfg.Algorithm = AlgorithmBrute
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	q, err := NewMatrixIndex(distMatrix, n, cfg.Radius)
	if err != nil {
		return nil, err
	}
	return runLabeling(q, AlgorithmBrute, cfg), nil
}

// ClusterIndex performs DBSCAN using a caller-supplied neighbor index, which
// fixes the radius. Only MinPts and Logger are read from cfg; Radius is
// reported in the run summary but not validated.
func ClusterIndex(q NeighborQuerier, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	check := cfg
	check.Radius = 0
	if err := validateConfig(&check); err != nil {
		return nil, err
	}
	return runLabeling(q, "", cfg), nil
}

// LabelClusters runs the labeling pass over q and returns the number of
// clusters and one label per point.
func LabelClusters(q NeighborQuerier, minPts int) (int, []Label, error) {
	if minPts < 1 {
		return 0, nil, invalidf("dbscan: MinPts must be >= 1 (the count includes the point itself), got %d", minPts)
	}
	l := newLabeler(q, minPts, zap.NewNop())
	l.run()
	return l.clusters, l.labels, nil
}

// runLabeling labels q and assembles the Result. cfg must be valid.
func runLabeling(q NeighborQuerier, algo Algorithm, cfg Config) *Result {
	start := time.Now()
	l := newLabeler(q, cfg.MinPts, cfg.Logger)
	l.run()

	res := &Result{
		NumClusters:  l.clusters,
		Labels:       l.labels,
		Core:         make([]bool, len(l.labels)),
		ClusterSizes: make([]int, l.clusters),
		Algorithm:    algo,
	}
	for i, lbl := range l.labels {
		res.Core[i] = l.counts[i] >= cfg.MinPts
		if id, _, ok := lbl.Cluster(); ok {
			res.ClusterSizes[id]++
		} else {
			res.NoiseCount++
		}
	}

	fields := []zap.Field{
		zap.Int("points", len(res.Labels)),
		zap.Int("clusters", res.NumClusters),
		zap.Int("noise", res.NoiseCount),
		zap.Float64("radius", cfg.Radius),
		zap.Int("min_pts", cfg.MinPts),
		zap.Duration("duration", time.Since(start)),
	}
	if algo != "" {
		fields = append(fields, zap.String("algorithm", string(algo)), zap.String("metric", metricName(cfg.Metric)))
	}
	cfg.Logger.Info("dbscan run complete", fields...)
	return res
}
