package search

import (
	"context"

	"github.com/docscout/docscout/internal/embed"
	scouterr "github.com/docscout/docscout/internal/errors"
	"github.com/docscout/docscout/internal/store"
)

// BM25Ranker adapts a keyword index to the ranker contract. Raw BM25
// scores are unbounded, so they are normalized into [0,1] by dividing by
// the top score of the result set.
type BM25Ranker struct {
	index store.KeywordIndex
}

// NewBM25Ranker wraps a keyword index.
func NewBM25Ranker(index store.KeywordIndex) *BM25Ranker {
	return &BM25Ranker{index: index}
}

// Search runs a keyword query and returns normalized hits.
func (r *BM25Ranker) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	results, err := r.index.Search(ctx, query, limit)
	if err != nil {
		return nil, scouterr.Wrap(err, scouterr.ErrCodeSearchFailed, "keyword search failed")
	}
	if len(results) == 0 {
		return nil, nil
	}

	top := results[0].Score
	for _, kr := range results {
		if kr.Score > top {
			top = kr.Score
		}
	}

	hits := make([]Hit, 0, len(results))
	for _, kr := range results {
		score := kr.Score
		if top > 0 {
			score = kr.Score / top
		}
		hits = append(hits, Hit{ChunkID: kr.ChunkID, Score: score})
	}
	return hits, nil
}

// Count returns the number of indexed chunks.
func (r *BM25Ranker) Count() (int, error) {
	return r.index.Count()
}

// Clear removes all indexed chunks.
func (r *BM25Ranker) Clear(ctx context.Context) error {
	return r.index.Clear(ctx)
}

// EmbeddingRanker adapts a vector store plus an embedder to the ranker
// contract. The query is embedded, then matched against stored chunk
// vectors.
type EmbeddingRanker struct {
	store    store.VectorStore
	embedder embed.Embedder
}

// NewEmbeddingRanker wraps a vector store and the embedder used for
// queries.
func NewEmbeddingRanker(vs store.VectorStore, embedder embed.Embedder) *EmbeddingRanker {
	return &EmbeddingRanker{store: vs, embedder: embedder}
}

// Search embeds the query and returns the nearest chunks with cosine
// similarity scores.
func (r *EmbeddingRanker) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, scouterr.Wrap(err, scouterr.ErrCodeEmbeddingFailed, "query embedding failed")
	}

	results, err := r.store.Search(ctx, vec, limit)
	if err != nil {
		return nil, scouterr.Wrap(err, scouterr.ErrCodeSearchFailed, "vector search failed")
	}

	hits := make([]Hit, 0, len(results))
	for _, vr := range results {
		hits = append(hits, Hit{ChunkID: vr.ID, Score: float64(vr.Score)})
	}
	return hits, nil
}

// Available reports whether the embedding backend can serve queries.
func (r *EmbeddingRanker) Available(ctx context.Context) bool {
	return r.embedder.Available(ctx)
}

// Count returns the number of stored vectors.
func (r *EmbeddingRanker) Count() int {
	return r.store.Count()
}

// Clear removes all stored vectors.
func (r *EmbeddingRanker) Clear(ctx context.Context) error {
	return r.store.Clear(ctx)
}
