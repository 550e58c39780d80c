package dbscan

import "github.com/cockroachdb/errors"

// maxGridDims bounds the 3^dims cell scan of the grid index.
const maxGridDims = 8

// autoKDTreeMaxDims is the dimensionality above which auto prefers the
// ball tree; KD-tree boxes stop pruning well in high dimensions.
const autoKDTreeMaxDims = 60

// isLpMetric reports whether m is one of the coordinate-wise Lp metrics.
// Those are the metrics whose tree bounds and grid cells are exact.
func isLpMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	}
	return false
}

// KDTreeValidMetric reports whether a KD-tree can index points under m.
func KDTreeValidMetric(m DistanceMetric) bool { return isLpMetric(m) }

// BallTreeValidMetric reports whether a ball tree can index points under m.
// Any metric obeying the triangle inequality would do; only the Lp family
// is recognized today.
func BallTreeValidMetric(m DistanceMetric) bool { return isLpMetric(m) }

// GridValidMetric reports whether the uniform grid finds every neighbor
// under m. That needs distance <= r to imply |a[j]-b[j]| <= r per axis.
func GridValidMetric(m DistanceMetric) bool { return isLpMetric(m) }

// selectAlgorithm resolves AlgorithmAuto into a concrete index and checks
// that an explicit choice supports the metric.
func selectAlgorithm(cfg Config, n, dims int) (Algorithm, error) {
	m := cfg.Metric
	var ok bool
	switch cfg.Algorithm {
	case AlgorithmAuto:
		switch {
		case n == 0 || !isLpMetric(m):
			return AlgorithmBrute, nil
		case dims <= autoKDTreeMaxDims:
			return AlgorithmKDTree, nil
		default:
			return AlgorithmBallTree, nil
		}
	case AlgorithmKDTree:
		ok = KDTreeValidMetric(m)
	case AlgorithmBallTree:
		ok = BallTreeValidMetric(m)
	case AlgorithmGonumKDTree:
		_, ok = m.(EuclideanMetric)
	case AlgorithmGrid:
		ok = GridValidMetric(m)
		if ok && dims > maxGridDims {
			return "", errors.WithHint(
				invalidf("dbscan: grid index supports at most %d dimensions, got %d", maxGridDims, dims),
				"use the kdtree or balltree algorithm for high-dimensional data")
		}
	default:
		ok = true
	}
	if !ok {
		return "", invalidf("dbscan: metric %s is not supported by the %s index", metricName(m), cfg.Algorithm)
	}
	return cfg.Algorithm, nil
}
