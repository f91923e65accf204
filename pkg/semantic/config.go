package semantic

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// CachePolicy selects how the resolution cache picks entries to evict.
type CachePolicy string

const (
	// LRU evicts the entry that was used longest ago.
	LRU CachePolicy = "lru"
	// LFU evicts the entry with the fewest hits, oldest first on ties.
	LFU CachePolicy = "lfu"
)

const (
	DefaultMaxExpansionDepth   = 64
	DefaultMaxTotalExpansions  = 10000
	DefaultMaxRecursionDepth   = 512
	DefaultCacheSize           = 256
	DefaultCompactionThreshold = 0.5
)

var (
	errInvalidLimit       = errors.New("limit must be greater than zero")
	errInvalidCachePolicy = errors.New("unsupported cache policy")
	errInvalidThreshold   = errors.New("compaction threshold must be within (0, 1]")
	errInvalidTagHandle   = errors.New("tag handle must be \"!\", \"!!\" or \"!name!\"")
)

// Config bounds and tunes one analysis run.
type Config struct {
	// MaxExpansionDepth bounds how deeply aliases may nest inside the subtrees
	// they expand to.
	MaxExpansionDepth int `yaml:"max_expansion_depth"`
	// MaxTotalExpansions bounds the number of alias expansions in one document,
	// counting the expansions hidden inside cached subtrees.
	MaxTotalExpansions int `yaml:"max_total_expansions"`
	// MaxRecursionDepth bounds the nesting of the resolved tree.
	MaxRecursionDepth int `yaml:"max_recursion_depth"`

	CacheSize   int           `yaml:"cache_size"`
	CacheMaxAge time.Duration `yaml:"cache_max_age"`
	CachePolicy CachePolicy   `yaml:"cache_policy"`

	// PermissiveTags reports unknown tags and handles as warnings.
	PermissiveTags bool `yaml:"permissive_tags"`
	// MergeKeys expands "<<" entries into the enclosing mapping.
	MergeKeys bool `yaml:"merge_keys"`
	// CompactionThreshold is the free slot ratio above which the reference
	// pool is compacted at the end of a run.
	CompactionThreshold float64 `yaml:"compaction_threshold"`

	// TagHandles adds global %TAG handles. Document directives override them.
	TagHandles map[string]string `yaml:"tag_handles"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MaxExpansionDepth:   DefaultMaxExpansionDepth,
		MaxTotalExpansions:  DefaultMaxTotalExpansions,
		MaxRecursionDepth:   DefaultMaxRecursionDepth,
		CacheSize:           DefaultCacheSize,
		CachePolicy:         LRU,
		MergeKeys:           true,
		CompactionThreshold: DefaultCompactionThreshold,
	}
}

// RegisterFlags registers the analyzer flags under the "resolve." prefix.
func (cfg *Config) RegisterFlags(f *pflag.FlagSet) {
	cfg.RegisterFlagsWithPrefix(f, "resolve.")
}

func (cfg *Config) RegisterFlagsWithPrefix(f *pflag.FlagSet, prefix string) {
	def := DefaultConfig()
	f.IntVar(&cfg.MaxExpansionDepth, prefix+"max-expansion-depth", def.MaxExpansionDepth, "Maximum nesting of aliases inside expanded subtrees.")
	f.IntVar(&cfg.MaxTotalExpansions, prefix+"max-total-expansions", def.MaxTotalExpansions, "Maximum number of alias expansions per document.")
	f.IntVar(&cfg.MaxRecursionDepth, prefix+"max-recursion-depth", def.MaxRecursionDepth, "Maximum nesting depth of a resolved document.")
	f.IntVar(&cfg.CacheSize, prefix+"cache-size", def.CacheSize, "Number of resolved anchors kept in the resolution cache.")
	f.DurationVar(&cfg.CacheMaxAge, prefix+"cache-max-age", def.CacheMaxAge, "Maximum age of a resolution cache entry. 0 keeps entries until evicted.")
	f.StringVar((*string)(&cfg.CachePolicy), prefix+"cache-policy", string(def.CachePolicy), fmt.Sprintf("Resolution cache eviction policy. Supported values: %s, %s.", LRU, LFU))
	f.BoolVar(&cfg.PermissiveTags, prefix+"permissive-tags", def.PermissiveTags, "Report unknown tags and tag handles as warnings instead of errors.")
	f.BoolVar(&cfg.MergeKeys, prefix+"merge-keys", def.MergeKeys, "Expand \"<<\" merge keys.")
	f.Float64Var(&cfg.CompactionThreshold, prefix+"compaction-threshold", def.CompactionThreshold, "Free slot ratio above which the reference pool is compacted.")
	f.StringToStringVar(&cfg.TagHandles, prefix+"tag-handle", nil, "Global tag handle, as handle=prefix. May be repeated.")
}

// Validate checks the configuration.
func (cfg *Config) Validate() error {
	limits := []struct {
		name  string
		value int
	}{
		{"max expansion depth", cfg.MaxExpansionDepth},
		{"max total expansions", cfg.MaxTotalExpansions},
		{"max recursion depth", cfg.MaxRecursionDepth},
		{"cache size", cfg.CacheSize},
	}
	for _, l := range limits {
		if l.value <= 0 {
			return errors.Wrapf(errInvalidLimit, "%s: %d", l.name, l.value)
		}
	}
	if cfg.CacheMaxAge < 0 {
		return errors.Errorf("cache max age must not be negative: %s", cfg.CacheMaxAge)
	}
	switch cfg.CachePolicy {
	case LRU, LFU:
	default:
		return errors.Wrapf(errInvalidCachePolicy, "%q, supported values: %s, %s", cfg.CachePolicy, LRU, LFU)
	}
	if cfg.CompactionThreshold <= 0 || cfg.CompactionThreshold > 1 {
		return errors.Wrapf(errInvalidThreshold, "%v", cfg.CompactionThreshold)
	}
	for handle := range cfg.TagHandles {
		if !validHandle(handle) {
			return errors.Wrapf(errInvalidTagHandle, "%q", handle)
		}
	}
	return nil
}

func validHandle(h string) bool {
	if h == "!" || h == "!!" {
		return true
	}
	if len(h) < 3 || h[0] != '!' || h[len(h)-1] != '!' {
		return false
	}
	for _, r := range h[1 : len(h)-1] {
		if !(r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// ParseConfig decodes a YAML configuration on top of the defaults and
// validates it.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return ParseConfig(data)
}
