package dbscan

import "sync"

// splitRows runs fn over [0, n) split into at most workers contiguous
// ranges, one goroutine per range, and waits for all of them. With one
// worker or fewer it runs fn(0, n) on the calling goroutine. It returns
// the number of ranges.
func splitRows(n, workers int, fn func(part, start, end int)) int {
	if workers <= 1 || n <= 1 {
		fn(0, 0, n)
		return 1
	}
	rows := (n + workers - 1) / workers
	parts := (n + rows - 1) / rows

	var wg sync.WaitGroup
	wg.Add(parts)
	for p := 0; p < parts; p++ {
		go func(p int) {
			defer wg.Done()
			fn(p, p*rows, min((p+1)*rows, n))
		}(p)
	}
	wg.Wait()
	return parts
}

// NeighborTable is a NeighborQuerier whose neighbor lists were all computed
// up front. Lists are stored back to back in one slice.
type NeighborTable struct {
	offsets []int // lists[offsets[i]:offsets[i+1]] are point i's neighbors
	lists   []int
}

// BuildNeighborTable queries every point of q once and stores the results,
// using up to numWorkers goroutines. The table does not depend on
// numWorkers: each worker owns a contiguous range of points and the ranges
// are joined in order.
func BuildNeighborTable(q NeighborQuerier, numWorkers int) *NeighborTable {
	n := q.NumPoints()
	parts := make([]*NeighborTable, max(numWorkers, 1))
	used := splitRows(n, numWorkers, func(part, start, end int) {
		parts[part] = buildNeighborRange(q, start, end)
	})
	parts = parts[:used]
	if used == 1 {
		return parts[0]
	}

	total := 0
	for _, p := range parts {
		total += len(p.lists)
	}
	t := &NeighborTable{
		offsets: make([]int, 0, n+1),
		lists:   make([]int, 0, total),
	}
	for _, p := range parts {
		base := len(t.lists)
		for _, off := range p.offsets[:len(p.offsets)-1] {
			t.offsets = append(t.offsets, base+off)
		}
		t.lists = append(t.lists, p.lists...)
	}
	t.offsets = append(t.offsets, len(t.lists))
	return t
}

// buildNeighborRange builds the table fragment for points [start, end).
func buildNeighborRange(q NeighborQuerier, start, end int) *NeighborTable {
	t := &NeighborTable{offsets: make([]int, 0, end-start+1)}
	for i := start; i < end; i++ {
		t.offsets = append(t.offsets, len(t.lists))
		t.lists = q.Neighbors(t.lists, i)
	}
	t.offsets = append(t.offsets, len(t.lists))
	return t
}

func (t *NeighborTable) NumPoints() int { return len(t.offsets) - 1 }

func (t *NeighborTable) Neighbors(dst []int, i int) []int {
	return append(dst, t.lists[t.offsets[i]:t.offsets[i+1]]...)
}

// Len returns the total number of stored neighbor entries.
func (t *NeighborTable) Len() int { return len(t.lists) }

// ComputePairwiseDistances computes the full n*n distance matrix of flat
// row-major data with n rows and dims columns.
func ComputePairwiseDistances(data []float64, n, dims int, metric DistanceMetric) []float64 {
	return ComputePairwiseDistancesParallel(data, n, dims, metric, 1)
}

// ComputePairwiseDistancesParallel is ComputePairwiseDistances on up to
// numWorkers goroutines. Worker w computes dist(i, j) for j > i over its
// own rows and mirrors it, so every cell has exactly one writer and the
// result is bitwise identical to the sequential one.
func ComputePairwiseDistancesParallel(data []float64, n, dims int, metric DistanceMetric, numWorkers int) []float64 {
	result := make([]float64, n*n)
	splitRows(n, numWorkers, func(_, start, end int) {
		for i := start; i < end; i++ {
			a := data[i*dims : (i+1)*dims]
			for j := i + 1; j < n; j++ {
				d := metric.Distance(a, data[j*dims:(j+1)*dims])
				result[i*n+j] = d
				result[j*n+i] = d
			}
		}
	})
	return result
}
