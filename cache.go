package dbscan

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedQuerier memoizes the neighbor lists of recently queried points.
// Useful when the same index serves several passes (Verify, Sweep) and the
// full NeighborTable would not fit in memory.
type CachedQuerier struct {
	q      NeighborQuerier
	cache  *lru.Cache[int, []int]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedQuerier wraps q with an LRU cache holding up to size lists.
func NewCachedQuerier(q NeighborQuerier, size int) (*CachedQuerier, error) {
	if size < 1 {
		return nil, invalidf("dbscan: cache size must be >= 1, got %d", size)
	}
	cache, err := lru.New[int, []int](size)
	if err != nil {
		return nil, err
	}
	return &CachedQuerier{q: q, cache: cache}, nil
}

func (c *CachedQuerier) NumPoints() int { return c.q.NumPoints() }

func (c *CachedQuerier) Neighbors(dst []int, i int) []int {
	if nbrs, ok := c.cache.Get(i); ok {
		c.hits.Add(1)
		return append(dst, nbrs...)
	}
	c.misses.Add(1)
	nbrs := c.q.Neighbors(nil, i)
	c.cache.Add(i, nbrs)
	return append(dst, nbrs...)
}

// Stats returns the cache hit and miss counts so far.
func (c *CachedQuerier) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
