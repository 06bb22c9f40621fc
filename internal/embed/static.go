package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"sync"
)

// StaticEmbedder generates embeddings using a hash-based approach.
// Works without external dependencies (no network, no model download).
// Deterministic and fast, with reduced semantic quality; used as the
// fallback when no embedding server is running.
type StaticEmbedder struct {
	mu     sync.RWMutex
	closed bool
}

// proseStopWords contains common English function words to filter out.
var proseStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"of": true, "to": true, "in": true, "on": true, "for": true,
	"is": true, "are": true, "was": true, "be": true, "with": true,
	"as": true, "at": true, "by": true, "it": true, "this": true,
	"that": true, "from": true, "not": true,
}

// Weights for vector generation.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// tokenRegex matches alphanumeric sequences.
var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// NewStaticEmbedder creates a new static embedder.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{}
}

// Embed generates an embedding for a single text.
func (e *StaticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	e.mu.RUnlock()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, StaticDimensions), nil
	}

	vec := make([]float32, StaticDimensions)

	tokens := tokenize(trimmed)
	for _, tok := range tokens {
		addHashed(vec, tok, tokenWeight)
	}

	// Character n-grams capture morphology that whole-token hashing misses.
	lowered := strings.ToLower(trimmed)
	for i := 0; i+ngramSize <= len(lowered); i++ {
		addHashed(vec, lowered[i:i+ngramSize], ngramWeight)
	}

	return normalizeVector(vec), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		results[i] = vec
	}
	return results, nil
}

// Dimensions returns the embedding dimension.
func (e *StaticEmbedder) Dimensions() int {
	return StaticDimensions
}

// ModelName returns the model identifier.
func (e *StaticEmbedder) ModelName() string {
	return "static-fnv-256"
}

// Available always returns true; the static embedder has no external
// dependencies.
func (e *StaticEmbedder) Available(ctx context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed
}

// Close releases resources.
func (e *StaticEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// tokenize lowercases and splits text into alphanumeric tokens,
// filtering stop words and single characters.
func tokenize(text string) []string {
	raw := tokenRegex.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) < 2 || proseStopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// addHashed adds weight to the dimension selected by hashing s.
func addHashed(vec []float32, s string, weight float32) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	vec[h.Sum32()%uint32(len(vec))] += weight
}
