package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/docscout/docscout/internal/cache"
	"github.com/docscout/docscout/internal/config"
	"github.com/docscout/docscout/internal/embed"
	"github.com/docscout/docscout/internal/search"
	"github.com/docscout/docscout/internal/store"
)

// dataDirName is the per-project state directory.
const dataDirName = ".docscout"

// app bundles the stores and engine a command needs. Close releases
// everything and persists the vector index.
type app struct {
	root    string
	dataDir string
	cfg     *config.Config

	metadata *store.SQLiteStore
	keyword  *store.BleveIndex
	vector   *store.HNSWStore
	embedder embed.Embedder
	engine   *search.Engine

	queryCache *cache.BoundedCache[string, []*search.RankedResult]
}

// openApp loads configuration and opens the project's stores.
func openApp(root string) (*app, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, err
	}

	dataDir := filepath.Join(absRoot, dataDirName)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	metadata, err := store.NewSQLiteStore(filepath.Join(dataDir, "metadata.db"))
	if err != nil {
		return nil, err
	}

	keyword, err := store.NewBleveIndex(filepath.Join(dataDir, "keyword.bleve"))
	if err != nil {
		_ = metadata.Close()
		return nil, err
	}

	embedder := chooseEmbedder(cfg)
	vector, err := store.NewHNSWStore(store.DefaultVectorStoreConfig(embedder.Dimensions()))
	if err != nil {
		_ = keyword.Close()
		_ = metadata.Close()
		return nil, err
	}

	vectorPath := filepath.Join(dataDir, "vectors.hnsw")
	if _, err := os.Stat(vectorPath); err == nil {
		if err := vector.Load(vectorPath); err != nil {
			// A corrupt vector index is rebuilt on the next index run.
			slog.Warn("cannot load vector index, starting empty", "error", err)
		}
	}

	a := &app{
		root:     absRoot,
		dataDir:  dataDir,
		cfg:      cfg,
		metadata: metadata,
		keyword:  keyword,
		vector:   vector,
		embedder: embedder,
	}

	fusionCfg := search.FusionConfig{
		SemanticWeight: cfg.Search.SemanticWeight,
		KeywordWeight:  cfg.Search.KeywordWeight,
		Limit:          cfg.Search.Limit,
		MinSimilarity:  cfg.Search.MinSimilarity,
		IncludeContext: cfg.Search.IncludeContext,
	}

	opts := []search.EngineOption{search.WithMetadataStore(metadata)}
	if cfg.Cache.Enabled {
		qc, err := cache.New[string, []*search.RankedResult](cache.Config{
			MaxSize: cfg.Cache.MaxSize,
			TTL:     cfg.Cache.TTL,
		})
		if err != nil {
			a.close()
			return nil, err
		}
		a.queryCache = qc
		opts = append(opts, search.WithQueryCache(qc))
	}

	engine, err := search.NewEngine(
		search.NewBM25Ranker(keyword),
		search.NewEmbeddingRanker(vector, embedder),
		fusionCfg,
		opts...,
	)
	if err != nil {
		a.close()
		return nil, err
	}
	a.engine = engine
	return a, nil
}

// saveVectors persists the vector index to the data directory.
func (a *app) saveVectors() error {
	return a.vector.Save(filepath.Join(a.dataDir, "vectors.hnsw"))
}

func (a *app) close() {
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	if a.vector != nil {
		_ = a.vector.Close()
	}
	if a.keyword != nil {
		_ = a.keyword.Close()
	}
	if a.metadata != nil {
		_ = a.metadata.Close()
	}
}

// chooseEmbedder picks the embedding backend. Auto-detection prefers a
// reachable Ollama server and falls back to static embeddings.
func chooseEmbedder(cfg *config.Config) embed.Embedder {
	var inner embed.Embedder
	switch cfg.Embeddings.Provider {
	case "static":
		inner = embed.NewStaticEmbedder()
	case "ollama":
		inner = newOllama(cfg)
	default:
		ollama := newOllama(cfg)
		probe, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if ollama.Available(probe) {
			inner = ollama
		} else {
			slog.Info("ollama not reachable, using static embeddings")
			inner = embed.NewStaticEmbedder()
		}
	}
	return embed.NewCachedEmbedder(inner, cfg.Embeddings.CacheSize)
}

func newOllama(cfg *config.Config) *embed.OllamaEmbedder {
	return embed.NewOllamaEmbedder(embed.OllamaOptions{
		BaseURL: cfg.Embeddings.OllamaHost,
		Model:   cfg.Embeddings.Model,
	})
}
