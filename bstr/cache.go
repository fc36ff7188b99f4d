package bstr

import (
	"sync"

	"github.com/signadot/ncnf/debug"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// sizes are rounded up to a multiple of sizeQuantum
	sizeQuantum = 16
	// buffers above maxCachedSize bytes are left to the garbage collector
	maxCachedSize = 1024 * sizeQuantum
	// at most maxBuckets distinct sizes are cached at once
	maxBuckets = 256
	// each bucket keeps at most maxChain buffers
	maxChain = 256
)

type freeCache struct {
	mu      sync.Mutex
	buckets *lru.Cache[int, *chain]
	hits    int
	misses  int
}

type chain struct {
	bufs [][]byte
}

var cache = newFreeCache()

func newFreeCache() *freeCache {
	buckets, err := lru.New[int, *chain](maxBuckets)
	if err != nil {
		panic(err)
	}
	return &freeCache{buckets: buckets}
}

func roundSize(n int) int {
	return (n + sizeQuantum - 1) / sizeQuantum * sizeQuantum
}

func alloc(n int) []byte {
	sz := roundSize(n)
	if sz == 0 || sz > maxCachedSize {
		return make([]byte, n)
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	c, ok := cache.buckets.Get(sz)
	if !ok || len(c.bufs) == 0 {
		cache.misses++
		return make([]byte, n, sz)
	}
	last := len(c.bufs) - 1
	b := c.bufs[last]
	c.bufs[last] = nil
	c.bufs = c.bufs[:last]
	cache.hits++
	return b[:n]
}

func recycle(b []byte) {
	sz := cap(b)
	if sz == 0 || sz > maxCachedSize || sz%sizeQuantum != 0 {
		return
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	c, ok := cache.buckets.Get(sz)
	if !ok {
		c = &chain{}
		cache.buckets.Add(sz, c)
	}
	if len(c.bufs) >= maxChain {
		return
	}
	c.bufs = append(c.bufs, b[:0])
}

// FlushCache drops every cached buffer.
func FlushCache() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if debug.Bstr() {
		debug.Logf("bstr: flush %d buckets (hits=%d misses=%d)\n",
			cache.buckets.Len(), cache.hits, cache.misses)
	}
	cache.buckets.Purge()
	cache.hits, cache.misses = 0, 0
}

// CacheStats reports the number of cached buckets and buffers.
func CacheStats() (buckets, bufs int) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	for _, sz := range cache.buckets.Keys() {
		c, ok := cache.buckets.Peek(sz)
		if !ok {
			continue
		}
		buckets++
		bufs += len(c.bufs)
	}
	return buckets, bufs
}
