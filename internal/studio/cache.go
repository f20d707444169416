package studio

import (
	"encoding/json"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/ironsheep/logoforge-mcp/internal/vectorize"
)

type cacheKey [blake2b.Size256]byte

// resultCache stores vectorization results by content. Since Vectorize is a
// pure function of payload and options, a hit is always valid.
//
// The cache is safe for concurrent use. When full, the oldest entry is
// evicted first.
type resultCache struct {
	mu      sync.RWMutex
	max     int
	entries map[cacheKey]*vectorize.Result
	order   []cacheKey
}

// newResultCache returns a cache holding at most max results. A cache with
// max <= 0 stores nothing.
func newResultCache(max int) *resultCache {
	return &resultCache{
		max:     max,
		entries: make(map[cacheKey]*vectorize.Result),
	}
}

// keyFor hashes the encoded image and the options that produced a result.
func keyFor(payload []byte, opts vectorize.Options) cacheKey {
	h, _ := blake2b.New256(nil)
	h.Write(payload)
	// Options holds only scalar fields, so its JSON form is stable.
	optBytes, _ := json.Marshal(opts)
	h.Write([]byte{0})
	h.Write(optBytes)

	var k cacheKey
	copy(k[:], h.Sum(nil))
	return k
}

func (c *resultCache) get(k cacheKey) (*vectorize.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.entries[k]
	return res, ok
}

func (c *resultCache) put(k cacheKey, res *vectorize.Result) {
	if c.max <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[k]; ok {
		c.entries[k] = res
		return
	}
	for len(c.order) >= c.max {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[k] = res
	c.order = append(c.order, k)
}

// Len returns the number of cached results.
func (c *resultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes every cached result.
func (c *resultCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[cacheKey]*vectorize.Result)
	c.order = nil
	c.mu.Unlock()
}
