package embed

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder wraps StaticEmbedder and counts inner calls.
type countingEmbedder struct {
	*StaticEmbedder
	mu         sync.Mutex
	embedCalls int
	batchCalls int
	batchTexts int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	c.embedCalls++
	c.mu.Unlock()
	return c.StaticEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	c.batchCalls++
	c.batchTexts += len(texts)
	c.mu.Unlock()
	return c.StaticEmbedder.EmbedBatch(ctx, texts)
}

func TestCachedEmbedder_AvoidsRecomputation(t *testing.T) {
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder()}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	first, err := cached.Embed(ctx, "repeated query")
	require.NoError(t, err)
	second, err := cached.Embed(ctx, "repeated query")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.embedCalls)
}

func TestCachedEmbedder_BatchOnlyComputesUncached(t *testing.T) {
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder()}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	_, err := cached.Embed(ctx, "alpha")
	require.NoError(t, err)

	vecs, err := cached.EmbedBatch(ctx, []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	// Only beta and gamma reach the inner embedder.
	assert.Equal(t, 1, inner.batchCalls)
	assert.Equal(t, 2, inner.batchTexts)
}

func TestCachedEmbedder_EmptyBatch(t *testing.T) {
	cached := NewCachedEmbedder(NewStaticEmbedder(), 10)
	vecs, err := cached.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestCachedEmbedder_Passthrough(t *testing.T) {
	inner := NewStaticEmbedder()
	cached := NewCachedEmbedder(inner, 0) // 0 falls back to default size

	assert.Equal(t, inner.Dimensions(), cached.Dimensions())
	assert.Equal(t, inner.ModelName(), cached.ModelName())
	assert.True(t, cached.Available(context.Background()))
}
