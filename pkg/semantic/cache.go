package semantic

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	lru "github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/shapestone/yamlref/pkg/ast"
)

// anchorKey scopes an anchor name to its document.
type anchorKey struct {
	doc  int
	name string
}

// cacheEntry is a fully expanded anchor. Expansions is the number of alias
// expansions it took to build node; a hit charges them again.
type cacheEntry struct {
	node       ast.Node
	expansions int
	hits       int
	added      time.Time
	lastAccess time.Time
	tick       uint64
}

// CacheStats is a snapshot of the resolution cache counters.
type CacheStats struct {
	Entries   int
	Hits      int
	Misses    int
	Evictions int
}

// resolutionCache keeps expanded anchors between alias uses.
type resolutionCache struct {
	store cacheStore
	now   func() time.Time
	tick  uint64

	hits, misses int
	evictions    *atomic.Int64
}

type cacheStore interface {
	Get(key anchorKey) (*cacheEntry, bool)
	Add(key anchorKey, e *cacheEntry) bool
	Len() int
	Purge()
}

func newResolutionCache(cfg Config) (*resolutionCache, error) {
	c := &resolutionCache{now: time.Now, evictions: atomic.NewInt64(0)}
	onEvict := func(anchorKey, *cacheEntry) { c.evictions.Inc() }

	switch cfg.CachePolicy {
	case LFU:
		c.store = newLFU(cfg.CacheSize, cfg.CacheMaxAge, c.clock, onEvict)
	case LRU, "":
		if cfg.CacheMaxAge > 0 {
			c.store = expirable.NewLRU[anchorKey, *cacheEntry](cfg.CacheSize, onEvict, cfg.CacheMaxAge)
			break
		}
		store, err := lru.NewLRU[anchorKey, *cacheEntry](cfg.CacheSize, onEvict)
		if err != nil {
			return nil, errors.Wrap(err, "create resolution cache")
		}
		c.store = store
	default:
		return nil, errors.Wrapf(errInvalidCachePolicy, "%q", cfg.CachePolicy)
	}
	return c, nil
}

func (c *resolutionCache) clock() time.Time { return c.now() }

// Get returns the entry for key and records the access.
func (c *resolutionCache) Get(key anchorKey) (*cacheEntry, bool) {
	e, ok := c.store.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.tick++
	e.hits++
	e.tick = c.tick
	e.lastAccess = c.now()
	return e, true
}

// Add stores an expanded anchor.
func (c *resolutionCache) Add(key anchorKey, node ast.Node, expansions int) {
	c.tick++
	now := c.now()
	c.store.Add(key, &cacheEntry{
		node:       node,
		expansions: expansions,
		added:      now,
		lastAccess: now,
		tick:       c.tick,
	})
}

func (c *resolutionCache) Purge() {
	c.store.Purge()
}

func (c *resolutionCache) Stats() CacheStats {
	return CacheStats{
		Entries:   c.store.Len(),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: int(c.evictions.Load()),
	}
}

// lfuStore evicts the entry with the fewest hits, the least recently used
// one among equals. Entries older than maxAge are dropped on access.
type lfuStore struct {
	size    int
	maxAge  time.Duration
	now     func() time.Time
	entries map[anchorKey]*cacheEntry
	onEvict func(anchorKey, *cacheEntry)
}

func newLFU(size int, maxAge time.Duration, now func() time.Time, onEvict func(anchorKey, *cacheEntry)) *lfuStore {
	return &lfuStore{
		size:    size,
		maxAge:  maxAge,
		now:     now,
		entries: make(map[anchorKey]*cacheEntry, size),
		onEvict: onEvict,
	}
}

func (s *lfuStore) Get(key anchorKey) (*cacheEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.maxAge > 0 && s.now().Sub(e.added) > s.maxAge {
		s.remove(key, e)
		return nil, false
	}
	return e, true
}

func (s *lfuStore) Add(key anchorKey, e *cacheEntry) bool {
	if _, ok := s.entries[key]; ok {
		s.entries[key] = e
		return false
	}
	evicted := false
	if len(s.entries) >= s.size {
		var (
			victimKey anchorKey
			victim    *cacheEntry
		)
		for k, cand := range s.entries {
			if victim == nil || cand.hits < victim.hits || (cand.hits == victim.hits && cand.tick < victim.tick) {
				victimKey, victim = k, cand
			}
		}
		s.remove(victimKey, victim)
		evicted = true
	}
	s.entries[key] = e
	return evicted
}

func (s *lfuStore) remove(key anchorKey, e *cacheEntry) {
	delete(s.entries, key)
	if s.onEvict != nil {
		s.onEvict(key, e)
	}
}

func (s *lfuStore) Len() int { return len(s.entries) }

func (s *lfuStore) Purge() {
	clear(s.entries)
}
