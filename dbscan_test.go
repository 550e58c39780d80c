package dbscan

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Radius != 0.5 {
		t.Errorf("Radius: got %f, want 0.5", cfg.Radius)
	}
	if cfg.MinPts != 5 {
		t.Errorf("MinPts: got %d, want 5", cfg.MinPts)
	}
	if _, ok := cfg.Metric.(EuclideanMetric); !ok {
		t.Errorf("Metric: got %T, want EuclideanMetric", cfg.Metric)
	}
	if cfg.Algorithm != AlgorithmAuto {
		t.Errorf("Algorithm: got %q, want %q", cfg.Algorithm, AlgorithmAuto)
	}
	if cfg.LeafSize != 40 {
		t.Errorf("LeafSize: got %d, want 40", cfg.LeafSize)
	}
	if cfg.Precompute || cfg.CacheSize != 0 || cfg.Workers != 0 {
		t.Errorf("Precompute/CacheSize/Workers: got %v/%d/%d, want false/0/0",
			cfg.Precompute, cfg.CacheSize, cfg.Workers)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative Radius", func(c *Config) { c.Radius = -0.1 }},
		{"NaN Radius", func(c *Config) { c.Radius = math.NaN() }},
		{"infinite Radius", func(c *Config) { c.Radius = math.Inf(1) }},
		{"zero MinPts", func(c *Config) { c.MinPts = 0 }},
		{"negative MinPts", func(c *Config) { c.MinPts = -3 }},
		{"invalid algorithm", func(c *Config) { c.Algorithm = "octree" }},
		{"negative LeafSize", func(c *Config) { c.LeafSize = -1 }},
		{"negative Workers", func(c *Config) { c.Workers = -2 }},
		{"negative CacheSize", func(c *Config) { c.CacheSize = -1 }},
		{"Minkowski P < 1", func(c *Config) { c.Metric = MinkowskiMetric{P: 0.5} }},
		{"kdtree with cosine", func(c *Config) { c.Algorithm = AlgorithmKDTree; c.Metric = CosineMetric{} }},
	}

	data := [][]float64{{1, 2}, {3, 4}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := Cluster(data, cfg)
			if err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestClusterZeroRadius(t *testing.T) {
	data := [][]float64{{1, 1}, {1, 1}, {1, 1}, {2, 2}}
	cfg := DefaultConfig()
	cfg.Radius = 0
	cfg.MinPts = 3

	result, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NumClusters != 1 {
		t.Errorf("NumClusters = %d, want 1", result.NumClusters)
	}
	if !result.Labels[3].IsNoise() {
		t.Errorf("labels[3] = %v, want noise", result.Labels[3])
	}
}

func TestClusterEmptyData(t *testing.T) {
	result, err := Cluster([][]float64{}, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NumClusters != 0 || len(result.Labels) != 0 {
		t.Errorf("got %d clusters and %d labels, want 0 and 0", result.NumClusters, len(result.Labels))
	}
}

func TestClusterMismatchedDims(t *testing.T) {
	_, err := Cluster([][]float64{{0, 0}, {1}}, DefaultConfig())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for ragged data, got %v", err)
	}
	_, err = Cluster([][]float64{{}, {}}, DefaultConfig())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero-dimensional data, got %v", err)
	}
}

func TestClusterBasicResult(t *testing.T) {
	data := [][]float64{
		{0, 0}, {0.1, 0}, {0.2, 0}, {0, 0.1}, {0.1, 0.1},
		{10, 10}, {10.1, 10}, {10.2, 10}, {10, 10.1}, {10.1, 10.1},
		{50, 50},
	}
	cfg := DefaultConfig()
	cfg.MinPts = 3

	result, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NumClusters != 2 {
		t.Fatalf("NumClusters = %d, want 2", result.NumClusters)
	}
	if result.Algorithm != AlgorithmKDTree {
		t.Errorf("Algorithm = %q, want %q", result.Algorithm, AlgorithmKDTree)
	}
	want := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, -1}
	if got := IntLabels(result.Labels); !equalInts(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
	if !equalInts(result.ClusterSizes, []int{5, 5}) {
		t.Errorf("ClusterSizes = %v, want [5 5]", result.ClusterSizes)
	}
	if result.NoiseCount != 1 {
		t.Errorf("NoiseCount = %d, want 1", result.NoiseCount)
	}
	for i := 0; i < 10; i++ {
		if !result.Core[i] {
			t.Errorf("Core[%d] = false, want true", i)
		}
	}
	if result.Core[10] {
		t.Error("Core[10] = true, want false")
	}
	if err := ValidateForest(result.Labels); err != nil {
		t.Errorf("ValidateForest: %v", err)
	}
}

func TestClusterDoesNotMutateInput(t *testing.T) {
	data := [][]float64{{0, 0}, {0.1, 0}, {0.2, 0}}
	cfg := DefaultConfig()
	cfg.MinPts = 2
	if _, err := Cluster(data, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data[1][0] != 0.1 || len(data) != 3 {
		t.Errorf("input modified: %v", data)
	}
}

func TestClusterAndClusterPrecomputedSameResult(t *testing.T) {
	data := [][]float64{
		{0, 0}, {0.1, 0}, {0.2, 0}, {0, 0.1}, {0.1, 0.1},
		{10, 10}, {10.1, 10}, {10.2, 10}, {10, 10.1}, {10.1, 10.1},
	}

	cfg := DefaultConfig()
	cfg.MinPts = 3
	cfg.Algorithm = AlgorithmBrute

	result1, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("Cluster error: %v", err)
	}

	n := len(data)
	metric := EuclideanMetric{}
	distMatrix := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := metric.Distance(data[i], data[j])
			distMatrix[i*n+j] = d
			distMatrix[j*n+i] = d
		}
	}

	result2, err := ClusterPrecomputed(distMatrix, n, cfg)
	if err != nil {
		t.Fatalf("ClusterPrecomputed error: %v", err)
	}

	// Both scan neighbors in index order, so even prev links agree.
	if len(result1.Labels) != len(result2.Labels) {
		t.Fatalf("label lengths differ: %d vs %d", len(result1.Labels), len(result2.Labels))
	}
	for i := range result1.Labels {
		if result1.Labels[i] != result2.Labels[i] {
			t.Errorf("labels[%d]: %v vs %v", i, result1.Labels[i], result2.Labels[i])
		}
	}
}

// TestAlgorithmEquivalence runs Cluster() through every index on two
// well-separated groups of 25 points and checks that cluster membership
// matches the brute-force path. prev links may differ because each index
// returns neighbors in its own order.
func TestAlgorithmEquivalence(t *testing.T) {
	rng := newTestRNG(42)
	data := make([][]float64, 50)
	for i := 0; i < 25; i++ {
		data[i] = []float64{rng.Float64(), rng.Float64()}
	}
	for i := 25; i < 50; i++ {
		data[i] = []float64{20 + rng.Float64(), 20 + rng.Float64()}
	}

	base := DefaultConfig()
	base.MinPts = 4
	base.Algorithm = AlgorithmBrute
	want, err := Cluster(data, base)
	if err != nil {
		t.Fatalf("brute: unexpected error: %v", err)
	}
	if want.NumClusters != 2 {
		t.Fatalf("brute: NumClusters = %d, want 2", want.NumClusters)
	}

	for _, algo := range []Algorithm{
		AlgorithmKDTree, AlgorithmBallTree, AlgorithmGonumKDTree, AlgorithmGrid,
	} {
		for _, leaf := range []int{1, 5, 40} {
			cfg := base
			cfg.Algorithm = algo
			cfg.LeafSize = leaf

			got, err := Cluster(data, cfg)
			if err != nil {
				t.Fatalf("%s/leaf=%d: unexpected error: %v", algo, leaf, err)
			}
			if got.NumClusters != want.NumClusters {
				t.Errorf("%s/leaf=%d: NumClusters = %d, want %d", algo, leaf, got.NumClusters, want.NumClusters)
			}
			if g, w := IntLabels(got.Labels), IntLabels(want.Labels); !equalInts(g, w) {
				t.Errorf("%s/leaf=%d: labels = %v, want %v", algo, leaf, g, w)
			}
			if err := ValidateForest(got.Labels); err != nil {
				t.Errorf("%s/leaf=%d: ValidateForest: %v", algo, leaf, err)
			}
		}
	}
}

func TestClusterPrecomputeAndCacheSameResult(t *testing.T) {
	rng := newTestRNG(7)
	data := make([][]float64, 80)
	for i := range data {
		data[i] = []float64{rng.Float64() * 10, rng.Float64() * 10}
	}

	cfg := DefaultConfig()
	cfg.Radius = 1
	cfg.MinPts = 4
	plain, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	variants := map[string]func(*Config){
		"precompute":  func(c *Config) { c.Precompute = true; c.Workers = 3 },
		"cache":       func(c *Config) { c.CacheSize = 16 },
		"tiny cache":  func(c *Config) { c.CacheSize = 1 },
		"one worker":  func(c *Config) { c.Precompute = true; c.Workers = 1 },
		"all workers": func(c *Config) { c.Precompute = true },
	}
	for name, mutate := range variants {
		c := cfg
		mutate(&c)
		got, err := Cluster(data, c)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		for i := range plain.Labels {
			if got.Labels[i] != plain.Labels[i] {
				t.Errorf("%s: labels[%d] = %v, want %v", name, i, got.Labels[i], plain.Labels[i])
			}
		}
	}
}

// newTestRNG creates a deterministic RNG for test data generation.
func newTestRNG(seed int64) *testRNG {
	// Simple LCG for test points.
	return &testRNG{state: uint64(seed)}
}

type testRNG struct {
	state uint64
}

func (r *testRNG) Float64() float64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return float64(r.state>>11) / float64(1<<53)
}

func TestClusterPrecomputed_NonSquareError(t *testing.T) {
	_, err := ClusterPrecomputed([]float64{1, 2, 3}, 2, DefaultConfig())
	if err == nil {
		t.Error("expected error for non-square matrix")
	}
}

func TestClusterPrecomputed_EmptyData(t *testing.T) {
	result, err := ClusterPrecomputed(nil, 0, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Labels) != 0 {
		t.Errorf("expected 0 labels, got %d", len(result.Labels))
	}
	if result.Algorithm != AlgorithmBrute {
		t.Errorf("Algorithm = %q, want %q", result.Algorithm, AlgorithmBrute)
	}
}

func TestClusterPrecomputed_IgnoresMetricAndAlgorithm(t *testing.T) {
	dist := []float64{
		0, 1,
		1, 0,
	}
	cfg := DefaultConfig()
	cfg.Radius = 1
	cfg.MinPts = 2
	cfg.Metric = CosineMetric{}
	cfg.Algorithm = AlgorithmKDTree

	result, err := ClusterPrecomputed(dist, 2, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NumClusters != 1 {
		t.Errorf("NumClusters = %d, want 1", result.NumClusters)
	}
}

func TestClusterIndex(t *testing.T) {
	q := lineIndex(1, 0, 0.5, 1, 10)
	cfg := DefaultConfig()
	cfg.MinPts = 3
	cfg.Radius = -1 // fixed by the index, not validated

	result, err := ClusterIndex(q, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NumClusters != 1 || result.NoiseCount != 1 {
		t.Errorf("got %d clusters and %d noise, want 1 and 1", result.NumClusters, result.NoiseCount)
	}

	cfg.MinPts = 0
	if _, err := ClusterIndex(q, cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for MinPts = 0, got %v", err)
	}
}

func TestIndexPoints(t *testing.T) {
	data := threeClusterData()
	cfg := DefaultConfig()
	cfg.Radius = 1
	cfg.MinPts = 3
	cfg.Algorithm = AlgorithmGrid

	q, algo, err := IndexPoints(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if algo != AlgorithmGrid {
		t.Errorf("algorithm = %q, want grid", algo)
	}

	direct, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	viaIndex, err := ClusterIndex(q, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range direct.Labels {
		if direct.Labels[i] != viaIndex.Labels[i] {
			t.Fatalf("label %d: Cluster %v, ClusterIndex %v", i, direct.Labels[i], viaIndex.Labels[i])
		}
	}

	cfg.Radius = math.NaN()
	if _, _, err := IndexPoints(data, cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for NaN radius, got %v", err)
	}
}

func TestClusterRejectsNonFiniteCoordinates(t *testing.T) {
	data := [][]float64{{0, 0}, {math.NaN(), 0}, {math.Inf(1), 1}}
	for _, algo := range []Algorithm{AlgorithmAuto, AlgorithmBrute, AlgorithmKDTree, AlgorithmBallTree, AlgorithmGonumKDTree, AlgorithmGrid} {
		cfg := DefaultConfig()
		cfg.Radius = 1
		cfg.MinPts = 1
		cfg.Algorithm = algo

		_, err := Cluster(data, cfg)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: Cluster err = %v, want ErrInvalidConfig", algo, err)
		}
		if len(errors.GetAllHints(err)) == 0 {
			t.Errorf("%s: expected a hint on %v", algo, err)
		}
		if _, _, err := IndexPoints(data, cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: IndexPoints err = %v, want ErrInvalidConfig", algo, err)
		}
	}

	cfg := DefaultConfig()
	if _, err := Cluster([][]float64{{0, math.Inf(-1)}}, cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("-Inf: err = %v, want ErrInvalidConfig", err)
	}
}

func TestClusterWithMetricNilDefault(t *testing.T) {
	data := [][]float64{{0, 0}, {0.1, 0}, {0.2, 0}, {5, 5}}
	cfg := Config{Radius: 0.5, MinPts: 2}

	result, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NumClusters != 1 {
		t.Errorf("NumClusters = %d, want 1", result.NumClusters)
	}
}

func TestClusterLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cfg := DefaultConfig()
	cfg.MinPts = 2
	cfg.Logger = zap.New(core)

	data := [][]float64{{0, 0}, {0.1, 0}, {5, 5}, {5.1, 5}}
	if _, err := Cluster(data, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := logs.FilterMessage("cluster discovered").Len(); got != 2 {
		t.Errorf("cluster discovered entries = %d, want 2", got)
	}
	summary := logs.FilterMessage("dbscan run complete").All()
	if len(summary) != 1 {
		t.Fatalf("run summary entries = %d, want 1", len(summary))
	}
	fields := summary[0].ContextMap()
	if fields["clusters"] != int64(2) {
		t.Errorf("clusters field = %v, want 2", fields["clusters"])
	}
	if fields["algorithm"] != string(AlgorithmKDTree) {
		t.Errorf("algorithm field = %v, want %q", fields["algorithm"], AlgorithmKDTree)
	}
}
