// Package cache provides the in-process resolution cache.
//
// The cache is a bounded cache-aside accelerator in front of the store,
// keyed by code. It is never authoritative: the store is the source of
// truth, and the resolution service rewrites or deletes entries
// immediately after every store mutation.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/botlink/botlink/internal/model"
)

// Defaults used when configuration supplies non-positive values.
const (
	DefaultSize = 1024
	DefaultTTL  = 15 * time.Minute
)

// Resolution caches full CodeMapping values. Entries are evicted
// least-recently-used at capacity and expire independently after the TTL,
// whichever triggers first.
type Resolution struct {
	lru *expirable.LRU[string, *model.CodeMapping]
}

// NewResolution creates a cache with the given capacity and per-entry TTL.
func NewResolution(size int, ttl time.Duration) *Resolution {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Resolution{
		lru: expirable.NewLRU[string, *model.CodeMapping](size, nil, ttl),
	}
}

// Get returns a deep copy of the cached mapping, if present.
func (c *Resolution) Get(code string) (*model.CodeMapping, bool) {
	m, ok := c.lru.Get(code)
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// Set stores a deep copy of the mapping.
func (c *Resolution) Set(code string, m *model.CodeMapping) {
	c.lru.Add(code, m.Clone())
}

// Delete removes the entry for a code.
func (c *Resolution) Delete(code string) {
	c.lru.Remove(code)
}

// Len returns the number of live entries.
func (c *Resolution) Len() int {
	return c.lru.Len()
}
