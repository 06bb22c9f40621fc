// Package config loads and validates docscout configuration.
//
// Configuration is applied in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/docscout/config.yaml)
//  3. Project config (.docscout.yaml in the project root)
//  4. Environment variables (DOCSCOUT_*)
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	scouterr "github.com/docscout/docscout/internal/errors"
)

// Config is the complete docscout configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Paths      PathsConfig      `yaml:"paths" json:"paths"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Chunking   ChunkingConfig   `yaml:"chunking" json:"chunking"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	LogLevel   string           `yaml:"log_level" json:"log_level"`
}

// PathsConfig selects which documents are indexed.
type PathsConfig struct {
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// SearchConfig configures hybrid search.
// Weights are configurable via:
//  1. User config (~/.config/docscout/config.yaml)
//  2. Project config (.docscout.yaml)
//  3. Env vars (DOCSCOUT_KEYWORD_WEIGHT, DOCSCOUT_SEMANTIC_WEIGHT)
type SearchConfig struct {
	// KeywordWeight is the weight for keyword matching (0.0-1.0).
	// Must sum to 1.0 with SemanticWeight.
	KeywordWeight float64 `yaml:"keyword_weight" json:"keyword_weight"`

	// SemanticWeight is the weight for semantic similarity (0.0-1.0).
	// Must sum to 1.0 with KeywordWeight.
	SemanticWeight float64 `yaml:"semantic_weight" json:"semantic_weight"`

	// Limit caps the number of results per query.
	Limit int `yaml:"limit" json:"limit"`

	// MinSimilarity drops results scoring below this floor (0.0-1.0).
	MinSimilarity float64 `yaml:"min_similarity" json:"min_similarity"`

	// IncludeContext attaches neighboring chunks to each result.
	IncludeContext bool `yaml:"include_context" json:"include_context"`
}

// ChunkingConfig configures document splitting.
type ChunkingConfig struct {
	MaxChunkWords   int  `yaml:"max_chunk_words" json:"max_chunk_words"`
	OverlapWords    int  `yaml:"overlap_words" json:"overlap_words"`
	SplitOnHeadings bool `yaml:"split_on_headings" json:"split_on_headings"`
}

// CacheConfig configures the query result cache.
type CacheConfig struct {
	// Enabled enables query result caching.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// MaxSize is the maximum number of cached queries.
	MaxSize int `yaml:"max_size" json:"max_size"`
	// TTL is how long a cached result stays valid.
	TTL time.Duration `yaml:"ttl" json:"ttl"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedder: "ollama", "static", or "" for
	// auto-detection (Ollama when reachable, static otherwise).
	Provider string `yaml:"provider" json:"provider"`
	Model    string `yaml:"model" json:"model"`
	// OllamaHost is the Ollama API endpoint. Empty uses the default
	// http://localhost:11434.
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`
	// CacheSize is the embedding cache capacity (entries).
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// weightTolerance is the allowed deviation of the weight sum from 1.0.
const weightTolerance = 1e-9

// defaultExcludePatterns are always excluded.
var defaultExcludePatterns = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			Include: []string{"**/*.md", "**/*.txt"},
			Exclude: defaultExcludePatterns,
		},
		Search: SearchConfig{
			KeywordWeight:  0.35,
			SemanticWeight: 0.65,
			Limit:          10,
			MinSimilarity:  0,
			IncludeContext: false,
		},
		Chunking: ChunkingConfig{
			MaxChunkWords:   200,
			OverlapWords:    20,
			SplitOnHeadings: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			MaxSize: 256,
			TTL:     5 * time.Minute,
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "", // Empty triggers auto-detection: Ollama, then static
			Model:     "nomic-embed-text",
			CacheSize: 1024,
		},
		LogLevel: "info",
	}
}

// GetUserConfigPath returns the path to the user configuration file,
// following the XDG Base Directory layout.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "docscout", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "docscout", "config.yaml")
	}
	return filepath.Join(home, ".config", "docscout", "config.yaml")
}

// Load loads configuration for the given project directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userPath := GetUserConfigPath(); fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadFromDir(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromDir attempts to load .docscout.yaml or .docscout.yml.
func (c *Config) loadFromDir(dir string) error {
	for _, name := range []string{".docscout.yaml", ".docscout.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	// No project config is fine.
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return scouterr.Wrap(err, scouterr.ErrCodeConfigInvalid,
			fmt.Sprintf("cannot read config file %s", path))
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return scouterr.Wrap(err, scouterr.ErrCodeConfigInvalid,
			fmt.Sprintf("cannot parse config file %s", path))
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if len(other.Paths.Include) > 0 {
		c.Paths.Include = other.Paths.Include
	}
	if len(other.Paths.Exclude) > 0 {
		// Merge with defaults rather than replace.
		c.Paths.Exclude = append(c.Paths.Exclude, other.Paths.Exclude...)
	}

	// Zero is not a practical weight, so only non-zero values merge.
	if other.Search.KeywordWeight != 0 {
		c.Search.KeywordWeight = other.Search.KeywordWeight
	}
	if other.Search.SemanticWeight != 0 {
		c.Search.SemanticWeight = other.Search.SemanticWeight
	}
	if other.Search.Limit != 0 {
		c.Search.Limit = other.Search.Limit
	}
	if other.Search.MinSimilarity != 0 {
		c.Search.MinSimilarity = other.Search.MinSimilarity
	}
	if other.Search.IncludeContext {
		c.Search.IncludeContext = true
	}

	if other.Chunking.MaxChunkWords != 0 {
		c.Chunking.MaxChunkWords = other.Chunking.MaxChunkWords
	}
	if other.Chunking.OverlapWords != 0 {
		c.Chunking.OverlapWords = other.Chunking.OverlapWords
	}

	if other.Cache.MaxSize != 0 {
		c.Cache.MaxSize = other.Cache.MaxSize
	}
	if other.Cache.TTL != 0 {
		c.Cache.TTL = other.Cache.TTL
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}
	if other.Embeddings.CacheSize != 0 {
		c.Embeddings.CacheSize = other.Embeddings.CacheSize
	}

	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// applyEnvOverrides applies DOCSCOUT_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DOCSCOUT_KEYWORD_WEIGHT"); v != "" {
		if w, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && w >= 0 && w <= 1 {
			c.Search.KeywordWeight = w
		}
	}
	if v := os.Getenv("DOCSCOUT_SEMANTIC_WEIGHT"); v != "" {
		if w, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && w >= 0 && w <= 1 {
			c.Search.SemanticWeight = w
		}
	}
	if v := os.Getenv("DOCSCOUT_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.Limit = n
		}
	}
	if v := os.Getenv("DOCSCOUT_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("DOCSCOUT_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("DOCSCOUT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the loaded configuration. Invalid configs are
// rejected, never silently corrected.
func (c *Config) Validate() error {
	s := c.Search
	if s.KeywordWeight < 0 || s.KeywordWeight > 1 || s.SemanticWeight < 0 || s.SemanticWeight > 1 {
		return scouterr.WeightsError(s.KeywordWeight, s.SemanticWeight)
	}
	if math.Abs(s.KeywordWeight+s.SemanticWeight-1.0) > weightTolerance {
		return scouterr.WeightsError(s.KeywordWeight, s.SemanticWeight)
	}
	if s.MinSimilarity < 0 || s.MinSimilarity > 1 {
		return scouterr.ConfigError("search.min_similarity must be within [0,1]")
	}
	if s.Limit < 0 {
		return scouterr.ConfigError("search.limit must not be negative")
	}
	if c.Chunking.MaxChunkWords < 0 || c.Chunking.OverlapWords < 0 {
		return scouterr.ConfigError("chunking sizes must not be negative")
	}
	if c.Cache.Enabled {
		if c.Cache.MaxSize <= 0 {
			return scouterr.CacheConfigError("cache.max_size must be positive")
		}
		if c.Cache.TTL <= 0 {
			return scouterr.CacheConfigError("cache.ttl must be positive")
		}
	}
	switch c.Embeddings.Provider {
	case "", "ollama", "static":
	default:
		return scouterr.ConfigError(
			fmt.Sprintf("unknown embeddings provider %q", c.Embeddings.Provider))
	}
	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return scouterr.Wrap(err, scouterr.ErrCodeInternal, "cannot marshal config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return scouterr.Wrap(err, scouterr.ErrCodeFileNotFound, "cannot create config directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return scouterr.Wrap(err, scouterr.ErrCodeFileNotFound, "cannot write config file")
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
