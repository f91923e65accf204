package semantic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/yamlref/pkg/ast"
)

func newTestCache(t *testing.T, policy CachePolicy, size int, maxAge time.Duration) *resolutionCache {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CachePolicy = policy
	cfg.CacheSize = size
	cfg.CacheMaxAge = maxAge
	c, err := newResolutionCache(cfg)
	require.NoError(t, err)
	return c
}

func key(name string) anchorKey { return anchorKey{name: name} }

func str(s string) ast.Node { return ast.NewString(s, ast.Plain, ast.Position{}) }

func TestCacheLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := newTestCache(t, LRU, 2, 0)
	c.Add(key("a"), str("a"), 0)
	c.Add(key("b"), str("b"), 0)
	_, ok := c.Get(key("a"))
	require.True(t, ok)

	c.Add(key("c"), str("c"), 0)

	_, ok = c.Get(key("b"))
	assert.False(t, ok)
	_, ok = c.Get(key("a"))
	assert.True(t, ok)
	assert.Equal(t, CacheStats{Entries: 2, Hits: 2, Misses: 1, Evictions: 1}, c.Stats())
}

func TestCacheLFUEvictsLeastFrequentlyUsed(t *testing.T) {
	c := newTestCache(t, LFU, 2, 0)
	c.Add(key("a"), str("a"), 0)
	c.Add(key("b"), str("b"), 0)
	for range 3 {
		c.Get(key("b"))
	}
	c.Get(key("a"))

	c.Add(key("c"), str("c"), 0)

	_, ok := c.Get(key("a"))
	assert.False(t, ok, "a has fewer hits than b")
	_, ok = c.Get(key("b"))
	assert.True(t, ok)
	assert.Equal(t, 1, c.Stats().Evictions)
}

func TestCacheLFUBreaksTiesByRecency(t *testing.T) {
	c := newTestCache(t, LFU, 2, 0)
	c.Add(key("a"), str("a"), 0)
	c.Add(key("b"), str("b"), 0)
	c.Get(key("b"))
	c.Get(key("a"))

	c.Add(key("c"), str("c"), 0)

	_, ok := c.Get(key("b"))
	assert.False(t, ok)
	_, ok = c.Get(key("a"))
	assert.True(t, ok)
}

func TestCacheLFUMaxAge(t *testing.T) {
	c := newTestCache(t, LFU, 4, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Add(key("a"), str("a"), 3)
	e, ok := c.Get(key("a"))
	require.True(t, ok)
	assert.Equal(t, 3, e.expansions)
	assert.Equal(t, 1, e.hits)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(key("a"))
	assert.False(t, ok)
	assert.Equal(t, CacheStats{Entries: 0, Hits: 1, Misses: 1, Evictions: 1}, c.Stats())
}

func TestCacheKeysAreScopedByDocument(t *testing.T) {
	c := newTestCache(t, LRU, 4, 0)
	c.Add(anchorKey{doc: 0, name: "a"}, str("first"), 0)

	_, ok := c.Get(anchorKey{doc: 1, name: "a"})
	assert.False(t, ok)
	e, ok := c.Get(anchorKey{doc: 0, name: "a"})
	require.True(t, ok)
	assert.Equal(t, "first", e.node.(*ast.Scalar).Text)
}

func TestCachePurge(t *testing.T) {
	for _, policy := range []CachePolicy{LRU, LFU} {
		t.Run(string(policy), func(t *testing.T) {
			c := newTestCache(t, policy, 4, 0)
			c.Add(key("a"), str("a"), 0)
			c.Purge()
			assert.Zero(t, c.Stats().Entries)
		})
	}
}

func TestResolveWithLFUCache(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CachePolicy = LFU
	res, err := resolveWith(t, cfg, "a: &a [1, 2]\nb: *a\nc: *a\n")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Statistics.Cache.Hits)
	assert.Equal(t, []any{int64(1), int64(2)}, value(get(t, res.Documents[0].Root, "c")))
}
