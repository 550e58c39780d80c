package dbscan

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// discovery is a worklist entry: a candidate point and the point whose
// neighborhood produced it.
type discovery struct {
	point, prev int
}

// labeler holds the state of one labeling run. It is not safe for
// concurrent use; labels are read and written without synchronization.
type labeler struct {
	q      NeighborQuerier
	minPts int
	log    *zap.Logger

	labels   []Label
	counts   []int // neighbor count of each point, recorded when it is queried
	clusters int

	stack   []discovery
	scratch []int
}

func newLabeler(q NeighborQuerier, minPts int, log *zap.Logger) *labeler {
	n := q.NumPoints()
	return &labeler{
		q:      q,
		minPts: minPts,
		log:    log,
		labels: make([]Label, n),
		counts: make([]int, n),
	}
}

// run visits seeds in index order. Each unlabeled seed is either marked
// Noise or starts a new cluster that is grown by expand.
func (l *labeler) run() {
	for seed := range l.labels {
		if l.labels[seed].Kind() != Undefined {
			continue
		}

		nbrs := l.query(seed)
		if len(nbrs) < l.minPts {
			l.labels[seed] = NoiseLabel()
			continue
		}

		id := l.clusters
		l.labels[seed] = ClusterLabel(id, seed)
		l.push(nbrs, seed)
		size := 1 + l.expand(id)

		l.log.Debug("cluster discovered",
			zap.Int("cluster", id),
			zap.Int("seed", seed),
			zap.Int("size", size),
		)
		l.clusters++
	}
}

// expand drains the worklist depth-first, labeling every point reached into
// cluster id, and returns how many points it labeled.
//
// A point reachable from several core points records whichever discoverer is
// popped first. That choice shapes the prev tree but never membership.
func (l *labeler) expand(id int) int {
	added := 0
	for len(l.stack) > 0 {
		d := l.stack[len(l.stack)-1]
		l.stack = l.stack[:len(l.stack)-1]

		switch l.labels[d.point].Kind() {
		case Noise:
			// Border point rejected as a seed earlier. It was already
			// queried and is not a core point, so it does not expand.
			l.labels[d.point] = ClusterLabel(id, d.prev)
			added++
		case Undefined:
			l.labels[d.point] = ClusterLabel(id, d.prev)
			added++
			if nbrs := l.query(d.point); len(nbrs) >= l.minPts {
				l.push(nbrs, d.point)
			}
		}
	}
	return added
}

// push adds every neighbor that is not yet in a cluster to the worklist with
// prev as its discoverer.
func (l *labeler) push(nbrs []int, prev int) {
	for _, j := range nbrs {
		if !l.labels[j].IsCluster() {
			l.stack = append(l.stack, discovery{point: j, prev: prev})
		}
	}
}

// query returns the neighbors of point i. The slice is reused by the next
// call. Every point is queried exactly once per run: it happens when the
// point leaves Undefined.
func (l *labeler) query(i int) []int {
	l.scratch = l.q.Neighbors(l.scratch[:0], i)
	n := len(l.labels)
	for _, j := range l.scratch {
		if j < 0 || j >= n {
			panic(errors.AssertionFailedf(
				"dbscan: neighbor query for point %d returned index %d outside [0, %d)", i, j, n))
		}
	}
	l.counts[i] = len(l.scratch)
	return l.scratch
}
