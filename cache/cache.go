// Package cache implements an in-memory, size-bounded memoization cache
// for recomputed hash-tree nodes: a bounded map of already-public hash
// values, evicted oldest-first via a min-heap of sequence numbers, so that
// signing many messages in sequence from the same tree doesn't repeatedly
// pay for recomputing the same subtree from scratch.
package cache

import (
	"container/heap"
	"sync"

	"github.com/lassemoldrup/hashsig/u256"
)

// Key identifies a memoized node: typically the 32-byte serialization of
// an internal/addr.Address.
type Key [32]byte

type seqEntry struct {
	key Key
	seq uint64
}

// seqHeap is a min-heap of seqEntry ordered by seq, giving O(log n)
// access to the least-recently-touched cache entry.
type seqHeap []seqEntry

func (h seqHeap) Len() int            { return len(h) }
func (h seqHeap) Less(i, j int) bool  { return h[i].seq < h[j].seq }
func (h seqHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *seqHeap) Push(x interface{}) { *h = append(*h, x.(seqEntry)) }
func (h *seqHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TreeCache is a bounded, concurrency-safe memoization table from Key to
// U256: a shared Cache is the intended way to reuse one cache across many
// goroutines signing from the same tree in parallel (merkle.Params.Threads),
// so every access is guarded by mu. It is not part of any scheme's public
// contract: it holds only already-public hash values, never key material.
type TreeCache struct {
	mu       sync.Mutex
	capacity int
	values   map[Key]u256.U256
	seq      uint64
	touched  map[Key]uint64
	order    seqHeap
}

// New creates a TreeCache holding at most capacity entries. A capacity of
// 0 means unbounded.
func New(capacity int) *TreeCache {
	return &TreeCache{
		capacity: capacity,
		values:   make(map[Key]u256.U256),
		touched:  make(map[Key]uint64),
	}
}

// Get returns the memoized value for key, if present.
func (c *TreeCache) Get(key Key) (u256.U256, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// Put memoizes val under key, evicting the least-recently-put entry first
// if the cache is at capacity.
func (c *TreeCache) Put(key Key, val u256.U256) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.values[key]; !exists && c.capacity > 0 && len(c.values) >= c.capacity {
		c.evictOne()
	}
	c.values[key] = val
	c.seq++
	c.touched[key] = c.seq
	heap.Push(&c.order, seqEntry{key: key, seq: c.seq})
}

func (c *TreeCache) evictOne() {
	for c.order.Len() > 0 {
		oldest := heap.Pop(&c.order).(seqEntry)
		if c.touched[oldest.key] != oldest.seq {
			// Stale heap entry: this key was touched again since this
			// entry was pushed. Skip it.
			continue
		}
		delete(c.values, oldest.key)
		delete(c.touched, oldest.key)
		return
	}
}

// Len reports the number of memoized entries.
func (c *TreeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}
