package dbscan

import (
	"fmt"
	"math"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/floats"
)

// DistanceMetric measures point dissimilarity. ReducedDistance is any
// monotone transform of Distance that is cheaper to compute (squared
// Euclidean skips the sqrt); trees prune in that space.
//
// DistToRdist and RdistToDist convert between the two spaces and must be
// monotone so that radius bounds survive the conversion.
type DistanceMetric interface {
	Distance(a, b []float64) float64
	ReducedDistance(a, b []float64) float64
	DistToRdist(d float64) float64
	RdistToDist(rd float64) float64
}

// identityReduced supplies the conversions for metrics whose reduced
// distance is the distance itself.
type identityReduced struct{}

func (identityReduced) DistToRdist(d float64) float64  { return d }
func (identityReduced) RdistToDist(rd float64) float64 { return rd }

// DistanceFunc adapts a plain function into a DistanceMetric. Only the
// brute-force index accepts it.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64        { return f(a, b) }
func (f DistanceFunc) ReducedDistance(a, b []float64) float64 { return f(a, b) }
func (DistanceFunc) DistToRdist(d float64) float64            { return d }
func (DistanceFunc) RdistToDist(rd float64) float64           { return rd }
func (DistanceFunc) String() string                           { return "custom" }

// EuclideanMetric is the L2 distance. Its reduced distance is the squared
// distance.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64        { return vek.Distance(a, b) }
func (EuclideanMetric) ReducedDistance(a, b []float64) float64 { return euclideanSumOfSquares(a, b) }
func (EuclideanMetric) DistToRdist(d float64) float64          { return d * d }
func (EuclideanMetric) RdistToDist(rd float64) float64         { return math.Sqrt(rd) }
func (EuclideanMetric) String() string                         { return "euclidean" }

func euclideanSumOfSquares(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// ManhattanMetric is the L1 (city-block) distance.
type ManhattanMetric struct{ identityReduced }

func (ManhattanMetric) Distance(a, b []float64) float64        { return vek.ManhattanDistance(a, b) }
func (ManhattanMetric) ReducedDistance(a, b []float64) float64 { return vek.ManhattanDistance(a, b) }
func (ManhattanMetric) String() string                         { return "manhattan" }

// ChebyshevMetric is the L-infinity distance.
type ChebyshevMetric struct{ identityReduced }

func (ChebyshevMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }
func (m ChebyshevMetric) ReducedDistance(a, b []float64) float64 {
	return m.Distance(a, b)
}
func (ChebyshevMetric) String() string { return "chebyshev" }

// CosineMetric is 1 - cosine similarity. It is not a true metric, so only
// the brute-force index accepts it. Two zero vectors are NaN apart, which
// makes them never neighbors.
type CosineMetric struct{ identityReduced }

func (CosineMetric) Distance(a, b []float64) float64 {
	return 1 - floats.Dot(a, b)/math.Sqrt(floats.Dot(a, a)*floats.Dot(b, b))
}
func (m CosineMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }
func (CosineMetric) String() string                           { return "cosine" }

// MinkowskiMetric is the Lp distance for P >= 1. The methods panic for
// P < 1; configs are validated before a metric is used. The reduced
// distance omits the final root.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 {
	m.mustBeValid()
	return floats.Distance(a, b, m.P)
}

func (m MinkowskiMetric) ReducedDistance(a, b []float64) float64 {
	m.mustBeValid()
	var sum float64
	for i := range a {
		sum += math.Pow(math.Abs(a[i]-b[i]), m.P)
	}
	return sum
}

func (m MinkowskiMetric) DistToRdist(d float64) float64  { return math.Pow(d, m.P) }
func (m MinkowskiMetric) RdistToDist(rd float64) float64 { return math.Pow(rd, 1/m.P) }
func (m MinkowskiMetric) String() string                 { return fmt.Sprintf("minkowski(p=%g)", m.P) }

func (m MinkowskiMetric) mustBeValid() {
	if m.P < 1 {
		panic("dbscan: MinkowskiMetric.P must be >= 1")
	}
}

// metricName is used in log fields.
func metricName(m DistanceMetric) string {
	if s, ok := m.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", m)
}
