// Package cache provides the per-run resolved-work cache shared by the
// fetch paths.
//
// The same identifier routinely appears twice in one analysis: once as a
// primary-corpus item and once as an impact-factor seed. The cache keeps
// the second lookup off the network. It is owned by the orchestrator and
// injected into the resolve path, so tests can substitute None.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jourq/jourq/internal/catalog"
)

const (
	// DefaultSize bounds the number of cached works.
	DefaultSize = 4096

	// DefaultTTL bounds how long a cached work stays valid.
	DefaultTTL = 15 * time.Minute
)

// Works caches resolved works by bare DOI.
type Works interface {
	Get(doi string) (catalog.Work, bool)
	Add(doi string, w catalog.Work)
	Len() int
}

// LRU is a size- and TTL-bounded Works implementation.
type LRU struct {
	lru *expirable.LRU[string, catalog.Work]
}

// NewLRU builds a cache holding up to size entries for at most ttl.
// Non-positive arguments fall back to the defaults.
func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LRU{lru: expirable.NewLRU[string, catalog.Work](size, nil, ttl)}
}

func (c *LRU) Get(doi string) (catalog.Work, bool) { return c.lru.Get(doi) }

func (c *LRU) Add(doi string, w catalog.Work) { c.lru.Add(doi, w) }

func (c *LRU) Len() int { return c.lru.Len() }

// None is the no-op cache used when caching is disabled.
type None struct{}

func (None) Get(string) (catalog.Work, bool) { return catalog.Work{}, false }

func (None) Add(string, catalog.Work) {}

func (None) Len() int { return 0 }
