package semantic

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		err    error
	}{
		{"defaults", func(*Config) {}, nil},
		{"zero depth", func(c *Config) { c.MaxExpansionDepth = 0 }, errInvalidLimit},
		{"negative expansions", func(c *Config) { c.MaxTotalExpansions = -1 }, errInvalidLimit},
		{"zero recursion depth", func(c *Config) { c.MaxRecursionDepth = 0 }, errInvalidLimit},
		{"zero cache", func(c *Config) { c.CacheSize = 0 }, errInvalidLimit},
		{"unknown policy", func(c *Config) { c.CachePolicy = "fifo" }, errInvalidCachePolicy},
		{"empty policy", func(c *Config) { c.CachePolicy = "" }, errInvalidCachePolicy},
		{"zero threshold", func(c *Config) { c.CompactionThreshold = 0 }, errInvalidThreshold},
		{"threshold above one", func(c *Config) { c.CompactionThreshold = 1.5 }, errInvalidThreshold},
		{"threshold of one", func(c *Config) { c.CompactionThreshold = 1 }, nil},
		{"named handle", func(c *Config) { c.TagHandles = map[string]string{"!e!": "tag:e,2024:"} }, nil},
		{"bad handle", func(c *Config) { c.TagHandles = map[string]string{"e": "tag:e,2024:"} }, errInvalidTagHandle},
		{"handle with a dot", func(c *Config) { c.TagHandles = map[string]string{"!e.x!": "tag:e,2024:"} }, errInvalidTagHandle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.err, errors.Cause(err))
		})
	}

	cfg := DefaultConfig()
	cfg.CacheMaxAge = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
max_total_expansions: 50
cache_policy: lfu
cache_max_age: 30s
merge_keys: false
tag_handles:
  "!e!": "tag:example.com,2000:"
`))
	require.NoError(t, err)

	want := DefaultConfig()
	want.MaxTotalExpansions = 50
	want.CachePolicy = LFU
	want.CacheMaxAge = 30 * time.Second
	want.MergeKeys = false
	want.TagHandles = map[string]string{"!e!": "tag:example.com,2000:"}
	assert.Equal(t, want, cfg)
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigErrors(t *testing.T) {
	_, err := ParseConfig([]byte("max_depth: 3\n"))
	assert.ErrorContains(t, err, "decode config")

	_, err = ParseConfig([]byte("cache_size: 0\n"))
	assert.ErrorContains(t, err, "invalid config")
	assert.Equal(t, errInvalidLimit, errors.Cause(err))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolve.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_recursion_depth: 8\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxRecursionDepth)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestConfigRegisterFlags(t *testing.T) {
	var cfg Config
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)

	require.NoError(t, fs.Parse([]string{
		"--resolve.max-expansion-depth=3",
		"--resolve.cache-policy=lfu",
		"--resolve.merge-keys=false",
		"--resolve.tag-handle=!e!=tag:example.com/",
	}))

	assert.Equal(t, 3, cfg.MaxExpansionDepth)
	assert.Equal(t, DefaultMaxTotalExpansions, cfg.MaxTotalExpansions)
	assert.Equal(t, LFU, cfg.CachePolicy)
	assert.False(t, cfg.MergeKeys)
	assert.Equal(t, map[string]string{"!e!": "tag:example.com/"}, cfg.TagHandles)
	assert.NoError(t, cfg.Validate())
}
