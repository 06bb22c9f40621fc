package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scouterr "github.com/docscout/docscout/internal/errors"
)

// isolateUserConfig points XDG_CONFIG_HOME at an empty directory so the
// developer's real user config cannot leak into tests.
func isolateUserConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolateUserConfig(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 0.35, cfg.Search.KeywordWeight)
	assert.Equal(t, 0.65, cfg.Search.SemanticWeight)
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.Equal(t, 200, cfg.Chunking.MaxChunkWords)
	assert.Equal(t, 20, cfg.Chunking.OverlapWords)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Contains(t, cfg.Paths.Exclude, "**/.git/**")
}

func TestLoad_ProjectConfigOverridesDefaults(t *testing.T) {
	isolateUserConfig(t)
	dir := t.TempDir()

	yaml := `
search:
  keyword_weight: 0.5
  semantic_weight: 0.5
  limit: 25
chunking:
  max_chunk_words: 120
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docscout.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Search.KeywordWeight)
	assert.Equal(t, 25, cfg.Search.Limit)
	assert.Equal(t, 120, cfg.Chunking.MaxChunkWords)
	// Untouched sections keep their defaults.
	assert.Equal(t, 20, cfg.Chunking.OverlapWords)
}

func TestLoad_UserConfigAppliesBeforeProject(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	userDir := filepath.Join(xdg, "docscout")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.yaml"),
		[]byte("search:\n  limit: 50\nlog_level: debug\n"), 0o644))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docscout.yaml"),
		[]byte("search:\n  limit: 7\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	// Project config wins over user config; user config wins over defaults.
	assert.Equal(t, 7, cfg.Search.Limit)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	isolateUserConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docscout.yaml"),
		[]byte("search:\n  keyword_weight: 0.5\n  semantic_weight: 0.5\n"), 0o644))

	t.Setenv("DOCSCOUT_KEYWORD_WEIGHT", "0.3")
	t.Setenv("DOCSCOUT_SEMANTIC_WEIGHT", "0.7")
	t.Setenv("DOCSCOUT_LOG_LEVEL", "warn")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.Search.KeywordWeight)
	assert.Equal(t, 0.7, cfg.Search.SemanticWeight)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_RejectsInvalidWeights(t *testing.T) {
	isolateUserConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docscout.yaml"),
		[]byte("search:\n  keyword_weight: 0.4\n  semantic_weight: 0.7\n"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, scouterr.IsConfig(err))
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	isolateUserConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docscout.yaml"),
		[]byte("search: [not: a: mapping"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"explicit weights", func(c *Config) {
			c.Search.KeywordWeight = 0.3
			c.Search.SemanticWeight = 0.7
		}, false},
		{"weights above one", func(c *Config) { c.Search.KeywordWeight = 0.6 }, true},
		{"negative weight", func(c *Config) {
			c.Search.KeywordWeight = -0.1
			c.Search.SemanticWeight = 1.1
		}, true},
		{"min similarity out of range", func(c *Config) { c.Search.MinSimilarity = 2 }, true},
		{"zero cache size", func(c *Config) { c.Cache.MaxSize = 0 }, true},
		{"zero cache ttl", func(c *Config) { c.Cache.TTL = 0 }, true},
		{"cache disabled skips cache checks", func(c *Config) {
			c.Cache.Enabled = false
			c.Cache.MaxSize = 0
			c.Cache.TTL = 0
		}, false},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "quantum" }, true},
		{"static provider", func(c *Config) { c.Embeddings.Provider = "static" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	isolateUserConfig(t)
	dir := t.TempDir()

	cfg := NewConfig()
	cfg.Search.Limit = 42
	path := filepath.Join(dir, ".docscout.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Search.Limit)
}
