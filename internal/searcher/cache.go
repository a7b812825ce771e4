package searcher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultCacheSize bounds the number of cached query responses
	DefaultCacheSize = 256
	// DefaultCacheTTL is how long a cached response stays fresh
	DefaultCacheTTL = 5 * time.Minute
)

type cacheEntry struct {
	response *SearchResponse
	expires  time.Time
}

// queryCache memoizes search responses keyed by the full request. Entries
// expire on TTL and the whole cache is purged after an indexing run.
type queryCache struct {
	lru *lru.Cache[string, cacheEntry]
	ttl time.Duration
}

func newQueryCache(size int, ttl time.Duration) *queryCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		cache, _ = lru.New[string, cacheEntry](DefaultCacheSize)
	}
	return &queryCache{lru: cache, ttl: ttl}
}

func (c *queryCache) get(req SearchRequest, limit int) (*SearchResponse, bool) {
	entry, ok := c.lru.Get(cacheKey(req, limit))
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		c.lru.Remove(cacheKey(req, limit))
		return nil, false
	}
	return entry.response, true
}

func (c *queryCache) put(req SearchRequest, limit int, resp *SearchResponse) {
	c.lru.Add(cacheKey(req, limit), cacheEntry{
		response: resp,
		expires:  time.Now().Add(c.ttl),
	})
}

func (c *queryCache) purge() {
	c.lru.Purge()
}

// cacheKey hashes the textual request fields. Requests carrying a
// caller-supplied vector never reach the cache.
func cacheKey(req SearchRequest, limit int) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%d|%s|%s|%d",
		req.ProjectID, req.Mode, req.Query, limit))
	return hex.EncodeToString(h[:])
}
