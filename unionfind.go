package dbscan

// UnionFind is a disjoint-set forest over 0..n-1 with union by size and
// path halving. Verify uses it to group core points into density-connected
// components.
type UnionFind struct {
	parent []int // parent[x] == x for a root
	size   []int // valid for roots only
	sets   int
}

// NewUnionFind returns n singleton sets.
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{parent: make([]int, n), size: make([]int, n), sets: n}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

// Find returns the root of x's set.
func (uf *UnionFind) Find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets of x and y and returns the root of the result.
func (uf *UnionFind) Union(x, y int) int {
	x, y = uf.Find(x), uf.Find(y)
	if x == y {
		return x
	}
	if uf.size[x] < uf.size[y] {
		x, y = y, x
	}
	uf.parent[y] = x
	uf.size[x] += uf.size[y]
	uf.sets--
	return x
}

func (uf *UnionFind) Connected(x, y int) bool { return uf.Find(x) == uf.Find(y) }

// SetSize returns the number of elements in x's set.
func (uf *UnionFind) SetSize(x int) int { return uf.size[uf.Find(x)] }

// Sets returns the number of disjoint sets.
func (uf *UnionFind) Sets() int { return uf.sets }
