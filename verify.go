package dbscan

import (
	"runtime"

	"github.com/cockroachdb/errors"
)

// ErrInvalidLabeling marks labelings rejected by Verify.
var ErrInvalidLabeling = errors.New("dbscan: labeling does not satisfy DBSCAN")

func invalidLabelingf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidLabeling)
}

// Verify checks that labels is a correct DBSCAN labeling of q for minPts
// with clusters clusters. It reruns every neighbor query, so it costs as
// much as the labeling itself.
//
// The checks are: every point is labeled and cluster IDs are dense; prev
// links form one tree per cluster rooted at a core seed, and every link
// runs from a core point to one of its neighbors; Noise points are neither
// core nor within reach of one; and the core points of each cluster are
// exactly one connected component of the core-neighbor graph.
func Verify(q NeighborQuerier, minPts int, labels []Label, clusters int) error {
	n := q.NumPoints()
	if len(labels) != n {
		return invalidLabelingf("dbscan: %d labels for %d points", len(labels), n)
	}
	if minPts < 1 {
		return invalidf("dbscan: MinPts must be >= 1 (the count includes the point itself), got %d", minPts)
	}

	if clusters < 0 {
		return invalidLabelingf("dbscan: negative cluster count %d", clusters)
	}

	sizes := make([]int, clusters)
	for i, l := range labels {
		switch l.Kind() {
		case Undefined:
			return invalidLabelingf("dbscan: point %d is undefined", i)
		case Clustered:
			if l.id < 0 || l.id >= clusters {
				return invalidLabelingf("dbscan: point %d has cluster %d outside [0, %d)", i, l.id, clusters)
			}
			sizes[l.id]++
		}
	}
	for id, size := range sizes {
		if size == 0 {
			return invalidLabelingf("dbscan: cluster %d has no members", id)
		}
	}
	if err := ValidateForest(labels); err != nil {
		return errors.Mark(err, ErrInvalidLabeling)
	}

	table, ok := q.(*NeighborTable)
	if !ok {
		table = BuildNeighborTable(q, runtime.NumCPU())
	}
	core := make([]bool, n)
	var nbrs []int
	for i := range core {
		nbrs = table.Neighbors(nbrs[:0], i)
		core[i] = len(nbrs) >= minPts
	}

	uf := NewUnionFind(n)
	for i, l := range labels {
		nbrs = table.Neighbors(nbrs[:0], i)
		switch {
		case l.IsNoise():
			if core[i] {
				return invalidLabelingf("dbscan: point %d is noise but has %d neighbors", i, len(nbrs))
			}
			for _, j := range nbrs {
				if core[j] {
					return invalidLabelingf("dbscan: noise point %d is a neighbor of core point %d", i, j)
				}
			}
		case l.IsRoot(i):
			if !core[i] {
				return invalidLabelingf("dbscan: seed %d of cluster %d is not a core point", i, l.id)
			}
		default:
			if !core[l.prev] {
				return invalidLabelingf("dbscan: point %d was discovered by non-core point %d", i, l.prev)
			}
			if !contains(nbrs, l.prev) {
				return invalidLabelingf("dbscan: point %d is not a neighbor of its discoverer %d", i, l.prev)
			}
		}
		if core[i] {
			for _, j := range nbrs {
				if core[j] {
					uf.Union(i, j)
				}
			}
		}
	}

	// Each cluster's core points form one component and no component spans
	// two clusters.
	compCluster := make(map[int]int)
	clusterComp := make([]int, clusters)
	for id := range clusterComp {
		clusterComp[id] = -1
	}
	for i, l := range labels {
		if !core[i] {
			continue
		}
		root := uf.Find(i)
		if id, seen := compCluster[root]; seen && id != l.id {
			return invalidLabelingf("dbscan: core points of clusters %d and %d are density-connected", id, l.id)
		}
		compCluster[root] = l.id
		if c := clusterComp[l.id]; c != -1 && c != root {
			return invalidLabelingf("dbscan: cluster %d holds core points that are not density-connected", l.id)
		}
		clusterComp[l.id] = root
	}
	return nil
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
