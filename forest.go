package dbscan

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrInvalidForest marks labelings whose prev links do not form one rooted
// tree per cluster.
var ErrInvalidForest = errors.New("dbscan: invalid discovery forest")

// Edge is a discovery link from a clustered point to the point that
// discovered it.
type Edge struct {
	Point, Prev int
}

// Edges returns one Edge per clustered point that is not a cluster seed,
// in point order.
func Edges(labels []Label) []Edge {
	var edges []Edge
	for i, l := range labels {
		if _, prev, ok := l.Cluster(); ok && prev != i {
			edges = append(edges, Edge{Point: i, Prev: prev})
		}
	}
	return edges
}

// Roots returns the seed of every cluster, indexed by cluster ID. A cluster
// with no self-referencing member gets -1.
func Roots(labels []Label) []int {
	numClusters := 0
	for _, l := range labels {
		numClusters = max(numClusters, l.ClusterID()+1)
	}
	roots := make([]int, numClusters)
	for i := range roots {
		roots[i] = -1
	}
	for i, l := range labels {
		if l.IsRoot(i) && l.id >= 0 && roots[l.id] == -1 {
			roots[l.id] = i
		}
	}
	return roots
}

// PathToRoot follows prev links from point i and returns the visited points,
// starting with i and ending with its cluster's seed. It fails if i is not
// clustered or the links leave the cluster or loop.
func PathToRoot(labels []Label, i int) ([]int, error) {
	if i < 0 || i >= len(labels) {
		return nil, errors.Newf("dbscan: point %d out of range [0, %d)", i, len(labels))
	}
	if !labels[i].IsCluster() {
		return nil, errors.Newf("dbscan: point %d is %s, not clustered", i, labels[i].Kind())
	}
	id := labels[i].id
	path := []int{i}
	for cur := i; !labels[cur].IsRoot(cur); {
		next := labels[cur].prev
		if err := checkPrev(labels, cur, next, id); err != nil {
			return nil, err
		}
		if len(path) > len(labels) {
			return nil, errors.Mark(errors.Newf("dbscan: prev links from point %d loop", i), ErrInvalidForest)
		}
		path = append(path, next)
		cur = next
	}
	return path, nil
}

// Depths returns each clustered point's distance in prev links from its
// cluster's seed, or -1 for points that are not clustered.
func Depths(labels []Label) ([]int, error) {
	depth := make([]int, len(labels))
	for i := range depth {
		depth[i] = -1
	}
	var chain []int
	for i, l := range labels {
		if !l.IsCluster() || depth[i] >= 0 {
			continue
		}
		// Walk up to a point of known depth, then unwind.
		chain = chain[:0]
		cur := i
		for depth[cur] < 0 && !labels[cur].IsRoot(cur) {
			chain = append(chain, cur)
			if len(chain) > len(labels) {
				return nil, errors.Mark(errors.Newf("dbscan: prev links from point %d loop", i), ErrInvalidForest)
			}
			next := labels[cur].prev
			if err := checkPrev(labels, cur, next, l.id); err != nil {
				return nil, err
			}
			cur = next
		}
		if depth[cur] < 0 {
			depth[cur] = 0
		}
		for k := len(chain) - 1; k >= 0; k-- {
			depth[chain[k]] = depth[cur] + len(chain) - k
		}
	}
	return depth, nil
}

func checkPrev(labels []Label, i, prev, id int) error {
	if prev < 0 || prev >= len(labels) {
		return errors.Mark(
			errors.Newf("dbscan: point %d has prev %d outside [0, %d)", i, prev, len(labels)),
			ErrInvalidForest)
	}
	if labels[prev].ClusterID() != id {
		return errors.Mark(
			errors.Newf("dbscan: point %d in cluster %d has prev %d labeled %s", i, id, prev, labels[prev]),
			ErrInvalidForest)
	}
	return nil
}

// ForestGraph builds a directed graph with one node per clustered point and
// an edge from each non-seed point to its prev.
func ForestGraph(labels []Label) *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for i, l := range labels {
		if l.IsCluster() {
			g.AddNode(simple.Node(i))
		}
	}
	for _, e := range Edges(labels) {
		if g.Node(int64(e.Prev)) == nil {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(e.Point), simple.Node(e.Prev)))
	}
	return g
}

// ValidateForest checks that the prev links of every cluster form a single
// tree: every link stays inside the cluster, the graph has no cycles, and
// each cluster has exactly one self-referencing seed.
func ValidateForest(labels []Label) error {
	roots := make(map[int]int)
	for i, l := range labels {
		id, prev, ok := l.Cluster()
		if !ok {
			continue
		}
		if err := checkPrev(labels, i, prev, id); err != nil {
			return err
		}
		if prev == i {
			if r, dup := roots[id]; dup {
				return errors.Mark(
					errors.Newf("dbscan: cluster %d has two seeds, %d and %d", id, r, i),
					ErrInvalidForest)
			}
			roots[id] = i
		}
	}
	for _, l := range labels {
		if l.IsCluster() {
			if _, ok := roots[l.id]; !ok {
				return errors.Mark(errors.Newf("dbscan: cluster %d has no seed", l.id), ErrInvalidForest)
			}
		}
	}
	if _, err := topo.Sort(ForestGraph(labels)); err != nil {
		return errors.Mark(errors.Wrap(err, "dbscan: prev links contain a cycle"), ErrInvalidForest)
	}
	return nil
}
