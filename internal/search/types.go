// Package search provides hybrid retrieval combining keyword and semantic
// ranking. Results are fused by weighted score combination under a
// validated weighting contract.
package search

import (
	"context"
	"math"

	scouterr "github.com/docscout/docscout/internal/errors"
	"github.com/docscout/docscout/internal/store"
)

// weightTolerance is the allowed deviation of the weight sum from 1.0.
// Float64 arithmetic makes bitwise equality useless (0.7+0.3 != 1.0).
const weightTolerance = 1e-9

// Default fusion parameters.
const (
	DefaultSemanticWeight = 0.65
	DefaultKeywordWeight  = 0.35
	DefaultLimit          = 10
	MaxLimit              = 100
)

// FusionConfig configures the fusion engine. Weights must sum to 1.0;
// violating configs are rejected, never silently normalized.
type FusionConfig struct {
	// SemanticWeight scales vector-similarity scores (0-1).
	SemanticWeight float64

	// KeywordWeight scales keyword scores (0-1). Must sum to 1.0 with
	// SemanticWeight.
	KeywordWeight float64

	// Limit caps the number of returned results.
	Limit int

	// MinSimilarity drops results whose combined score falls below this
	// floor.
	MinSimilarity float64

	// IncludeContext attaches a surrounding-context snippet to each
	// result, fetched from the metadata store.
	IncludeContext bool
}

// DefaultFusionConfig returns the default fusion configuration.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		SemanticWeight: DefaultSemanticWeight,
		KeywordWeight:  DefaultKeywordWeight,
		Limit:          DefaultLimit,
	}
}

// Validate checks the weighting contract. It is called at construction,
// on every search, and on every config update.
func (c FusionConfig) Validate() error {
	if c.SemanticWeight < 0 || c.SemanticWeight > 1 || c.KeywordWeight < 0 || c.KeywordWeight > 1 {
		return scouterr.WeightsError(c.KeywordWeight, c.SemanticWeight)
	}
	if math.Abs(c.SemanticWeight+c.KeywordWeight-1.0) > weightTolerance {
		return scouterr.WeightsError(c.KeywordWeight, c.SemanticWeight)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return scouterr.ConfigError("min_similarity must be within [0,1]")
	}
	return nil
}

// Hit is a single ranked hit from one retrieval modality. Score is a
// similarity in [0,1].
type Hit struct {
	ChunkID string
	DocID   string
	Score   float64
}

// KeywordRanker ranks chunks by keyword relevance. It has no
// unavailability concept; it is always queried.
type KeywordRanker interface {
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
	Count() (int, error)
	Clear(ctx context.Context) error
}

// VectorRanker ranks chunks by vector similarity and reports whether its
// backend is usable.
type VectorRanker interface {
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
	Available(ctx context.Context) bool
	Count() int
	Clear(ctx context.Context) error
}

// RankedResult is a single fused search result. Produced transiently per
// query; never persisted.
type RankedResult struct {
	// ChunkID and DocID identify the chunk.
	ChunkID string
	DocID   string

	// Chunk is the full chunk, populated from the metadata store when one
	// is attached to the engine.
	Chunk *store.Chunk

	// Score is the combined similarity in [0,1].
	Score float64

	// KeywordScore and SemanticScore preserve the per-source similarities
	// (0 if the source did not return this chunk).
	KeywordScore  float64
	SemanticScore float64

	// InBothLists indicates the chunk was found by both modalities.
	InBothLists bool

	// Context is the surrounding-context snippet, populated when
	// IncludeContext is set.
	Context string
}

// EngineStats reports fusion engine state.
type EngineStats struct {
	// VectorAvailable mirrors the vector ranker's availability flag.
	VectorAvailable bool

	// KeywordCount and VectorCount are the underlying index sizes.
	KeywordCount int
	VectorCount  int
}
