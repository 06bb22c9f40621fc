package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docscout/docscout/internal/cache"
	scouterr "github.com/docscout/docscout/internal/errors"
	"github.com/docscout/docscout/internal/store"
)

// contextRadius is the number of neighboring chunks fetched on each side
// when IncludeContext is set.
const contextRadius = 1

// Engine coordinates keyword and semantic retrieval and fuses the two
// rankings. When the vector ranker's backend is unavailable the engine
// degrades to keyword-only results instead of failing.
type Engine struct {
	keyword KeywordRanker
	vector  VectorRanker
	fusion  *ScoreFusion

	metadata   store.MetadataStore
	queryCache *cache.BoundedCache[string, []*RankedResult]

	mu     sync.RWMutex
	config FusionConfig
}

// EngineOption customizes engine construction.
type EngineOption func(*Engine)

// WithMetadataStore attaches a metadata store so results carry full
// chunk content and optional context snippets.
func WithMetadataStore(ms store.MetadataStore) EngineOption {
	return func(e *Engine) { e.metadata = ms }
}

// WithQueryCache attaches a bounded cache for fused result lists.
func WithQueryCache(c *cache.BoundedCache[string, []*RankedResult]) EngineOption {
	return func(e *Engine) { e.queryCache = c }
}

// NewEngine creates a fusion engine. The config is validated up front;
// weights that do not sum to 1.0 are a construction error.
func NewEngine(keyword KeywordRanker, vector VectorRanker, cfg FusionConfig, opts ...EngineOption) (*Engine, error) {
	if keyword == nil {
		return nil, scouterr.ConfigError("keyword ranker is required")
	}
	if vector == nil {
		return nil, scouterr.ConfigError("vector ranker is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		keyword: keyword,
		vector:  vector,
		fusion:  NewScoreFusion(),
		config:  cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the current fusion configuration.
func (e *Engine) Config() FusionConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

// UpdateConfig swaps the fusion configuration. Invalid configs are
// rejected and the previous config stays in effect.
func (e *Engine) UpdateConfig(cfg FusionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.config = cfg
	e.mu.Unlock()
	if e.queryCache != nil {
		e.queryCache.Clear()
	}
	return nil
}

// Available reports whether semantic retrieval is currently usable.
func (e *Engine) Available(ctx context.Context) bool {
	return e.vector.Available(ctx)
}

// Search runs a hybrid query. An empty or whitespace-only query returns
// no results. A failing ranker aborts the search; partial fusion over a
// broken source would silently skew the ranking.
func (e *Engine) Search(ctx context.Context, query string) ([]*RankedResult, error) {
	cfg := e.Config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	cacheKey := e.cacheKey(query, cfg)
	if e.queryCache != nil {
		if cached, ok := e.queryCache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	// Overfetch so post-fusion filtering still fills the limit.
	fetchLimit := cfg.Limit * 2
	if fetchLimit < 20 {
		fetchLimit = 20
	}

	var keywordHits, semanticHits []Hit
	start := time.Now()

	if e.vector.Available(ctx) {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			hits, err := e.keyword.Search(gctx, query, fetchLimit)
			if err != nil {
				return err
			}
			keywordHits = hits
			return nil
		})
		g.Go(func() error {
			hits, err := e.vector.Search(gctx, query, fetchLimit)
			if err != nil {
				return err
			}
			semanticHits = hits
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		slog.Debug("vector backend unavailable, keyword-only search", "query_len", len(query))
		hits, err := e.keyword.Search(ctx, query, fetchLimit)
		if err != nil {
			return nil, err
		}
		keywordHits = hits
	}

	results := e.fusion.Fuse(keywordHits, semanticHits, cfg.KeywordWeight, cfg.SemanticWeight)

	if cfg.MinSimilarity > 0 {
		filtered := results[:0]
		for _, r := range results {
			if r.Score >= cfg.MinSimilarity {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if cfg.Limit > 0 && len(results) > cfg.Limit {
		results = results[:cfg.Limit]
	}

	if e.metadata != nil {
		if err := e.enrich(ctx, results, cfg.IncludeContext); err != nil {
			return nil, err
		}
	}

	slog.Debug("search complete",
		"keyword_hits", len(keywordHits),
		"semantic_hits", len(semanticHits),
		"results", len(results),
		"duration", time.Since(start))

	if e.queryCache != nil {
		e.queryCache.Set(cacheKey, results)
	}
	return results, nil
}

// enrich populates chunk content, document IDs, and context snippets
// from the metadata store.
func (e *Engine) enrich(ctx context.Context, results []*RankedResult, includeContext bool) error {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ChunkID)
	}
	chunks, err := e.metadata.GetChunks(ctx, ids)
	if err != nil {
		return scouterr.Wrap(err, scouterr.ErrCodeInternal, "result enrichment failed")
	}

	byID := make(map[string]*store.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	for _, r := range results {
		c, ok := byID[r.ChunkID]
		if !ok {
			continue
		}
		r.Chunk = c
		r.DocID = c.DocID
		if !includeContext {
			continue
		}
		adjacent, err := e.metadata.GetAdjacentChunks(ctx, c.DocID, c.Seq, contextRadius)
		if err != nil {
			return scouterr.Wrap(err, scouterr.ErrCodeInternal, "context lookup failed")
		}
		parts := make([]string, 0, len(adjacent))
		for _, a := range adjacent {
			parts = append(parts, a.Content)
		}
		r.Context = strings.Join(parts, "\n")
	}
	return nil
}

// cacheKey fingerprints the query together with every config field that
// changes the result set.
func (e *Engine) cacheKey(query string, cfg FusionConfig) string {
	return fmt.Sprintf("%s|%g|%g|%d|%g|%t",
		query, cfg.SemanticWeight, cfg.KeywordWeight, cfg.Limit, cfg.MinSimilarity, cfg.IncludeContext)
}

// Stats reports engine and index state.
func (e *Engine) Stats(ctx context.Context) (EngineStats, error) {
	kwCount, err := e.keyword.Count()
	if err != nil {
		return EngineStats{}, err
	}
	return EngineStats{
		VectorAvailable: e.vector.Available(ctx),
		KeywordCount:    kwCount,
		VectorCount:     e.vector.Count(),
	}, nil
}

// ClearIndex removes all indexed data from both rankers and drops any
// cached results. Clearing an empty engine is a no-op.
func (e *Engine) ClearIndex(ctx context.Context) error {
	if err := e.keyword.Clear(ctx); err != nil {
		return err
	}
	if err := e.vector.Clear(ctx); err != nil {
		return err
	}
	if e.queryCache != nil {
		e.queryCache.Clear()
	}
	return nil
}
