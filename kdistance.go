package dbscan

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// KDistancesPrecomputed computes k-distances from a distance matrix.
// distMatrix is flat n*n row-major. k counts the point itself and is clamped
// to [1, n]. Returns []float64 of length n where kd[i] is the distance from
// point i to its k-th nearest point (itself being the first).
//
// With k = MinPts, point i is a core point exactly when kd[i] <= Radius.
func KDistancesPrecomputed(distMatrix []float64, n, k int) []float64 {
	k = min(k, n)
	k = max(k, 1)

	kd := make([]float64, n)
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		copy(row, distMatrix[i*n:(i+1)*n])
		row[i] = 0
		sort.Float64s(row)
		kd[i] = row[k-1]
	}
	return kd
}

// KDistancesTree computes k-distances using a spatial tree's KNN queries
// instead of a full distance matrix. k counts the point itself, matching
// KDistancesPrecomputed.
func KDistancesTree(tree SpatialTree, k int) []float64 {
	n := tree.NumPoints()
	if n == 0 {
		return nil
	}

	k = min(k, n)
	k = max(k, 1)

	_, distances := tree.QueryKNN(tree.Data(), n, k)

	kd := make([]float64, n)
	for i := 0; i < n; i++ {
		// Duplicates of point i may displace it from the result, but they
		// are at distance 0 too, so the k-th distance is unaffected.
		if len(distances[i]) > 0 {
			kd[i] = distances[i][len(distances[i])-1]
		}
	}
	return kd
}

// KDistances computes k-distances for data, using a tree when the
// configured metric and algorithm allow it and a parallel distance matrix
// otherwise.
func KDistances(data [][]float64, k int, cfg Config) ([]float64, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, invalidf("dbscan: k must be >= 1, got %d", k)
	}

	flat, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}
	n := len(data)
	if n == 0 {
		return []float64{}, nil
	}

	algo, err := selectAlgorithm(cfg, n, dims)
	if err != nil {
		return nil, err
	}
	switch algo {
	case AlgorithmKDTree:
		return KDistancesTree(NewKDTree(flat, n, dims, cfg.Metric, cfg.LeafSize), k), nil
	case AlgorithmBallTree:
		return KDistancesTree(NewBallTree(flat, n, dims, cfg.Metric, cfg.LeafSize), k), nil
	case AlgorithmGonumKDTree:
		return KDistancesTree(NewGonumKDTree(flat, n, dims), k), nil
	default:
		dist := ComputePairwiseDistancesParallel(flat, n, dims, cfg.Metric, cfg.Workers)
		return KDistancesPrecomputed(dist, n, k), nil
	}
}

// SuggestRadius proposes a Radius from a k-distance curve: the empirical
// quantile p of the k-distances. Points at or below the returned radius are
// core points, so p is roughly the fraction of points expected to be core.
func SuggestRadius(kd []float64, p float64) (float64, error) {
	if len(kd) == 0 {
		return 0, invalidf("dbscan: cannot suggest a radius for an empty k-distance curve")
	}
	if !(p >= 0 && p <= 1) {
		return 0, invalidf("dbscan: quantile must be in [0, 1], got %f", p)
	}
	return stat.Quantile(p, stat.Empirical, sortedCopy(kd), nil), nil
}

// KDistanceQuantiles returns the empirical quantiles ps of kd. Every p must
// be in [0, 1].
func KDistanceQuantiles(kd []float64, ps []float64) ([]float64, error) {
	if len(kd) == 0 {
		return nil, invalidf("dbscan: empty k-distance curve")
	}
	sorted := sortedCopy(kd)
	out := make([]float64, len(ps))
	for i, p := range ps {
		if !(p >= 0 && p <= 1) {
			return nil, invalidf("dbscan: quantile must be in [0, 1], got %f", p)
		}
		out[i] = stat.Quantile(p, stat.Empirical, sorted, nil)
	}
	return out, nil
}

func sortedCopy(x []float64) []float64 {
	s := make([]float64, len(x))
	copy(s, x)
	sort.Float64s(s)
	return s
}
