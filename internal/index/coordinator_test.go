package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docscout/docscout/internal/chunk"
	"github.com/docscout/docscout/internal/embed"
	"github.com/docscout/docscout/internal/scanner"
	"github.com/docscout/docscout/internal/store"
)

type testPipeline struct {
	root     string
	metadata *store.SQLiteStore
	keyword  *store.BleveIndex
	vector   *store.HNSWStore
	coord    *Coordinator
}

func newTestPipeline(t *testing.T) *testPipeline {
	t.Helper()

	metadata, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = metadata.Close() })

	keyword, err := store.NewBleveIndex("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = keyword.Close() })

	embedder := embed.NewStaticEmbedder()
	vector, err := store.NewHNSWStore(store.DefaultVectorStoreConfig(embedder.Dimensions()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = vector.Close() })

	root := t.TempDir()
	coord, err := NewCoordinator(CoordinatorConfig{
		RootDir:      root,
		ScanOptions:  scanner.Options{Include: []string{"**/*.md"}},
		ChunkOptions: chunk.DefaultOptions(),
		Metadata:     metadata,
		Keyword:      keyword,
		Vector:       vector,
		Embedder:     embedder,
		Workers:      2,
	})
	require.NoError(t, err)

	return &testPipeline{
		root:     root,
		metadata: metadata,
		keyword:  keyword,
		vector:   vector,
		coord:    coord,
	}
}

func (p *testPipeline) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(p.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewCoordinator_Validation(t *testing.T) {
	_, err := NewCoordinator(CoordinatorConfig{})
	assert.Error(t, err)

	metadata, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer metadata.Close()
	keyword, err := store.NewBleveIndex("")
	require.NoError(t, err)
	defer keyword.Close()
	vector, err := store.NewHNSWStore(store.DefaultVectorStoreConfig(4))
	require.NoError(t, err)
	defer vector.Close()

	// Vector store without an embedder cannot be populated.
	_, err = NewCoordinator(CoordinatorConfig{
		Metadata: metadata,
		Keyword:  keyword,
		Vector:   vector,
	})
	assert.Error(t, err)
}

func TestCoordinator_RunIndexesDocuments(t *testing.T) {
	p := newTestPipeline(t)
	p.write(t, "guide.md", "# Guide\n\nInstall the tool and run it.\n\n## Usage\n\nSearch with a query.\n")
	p.write(t, "notes.md", "# Notes\n\nEviction removes the oldest entry.\n")
	p.write(t, "skip.txt", "not matched by include patterns")

	stats, err := p.coord.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.DocumentsIndexed)
	assert.Zero(t, stats.Errors)
	assert.Greater(t, stats.ChunksIndexed, 0)

	docs, err := p.metadata.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	n, err := p.keyword.Count()
	require.NoError(t, err)
	assert.Equal(t, stats.ChunksIndexed, n)
	assert.Equal(t, stats.ChunksIndexed, p.vector.Count())
}

func TestCoordinator_UnchangedDocumentsAreSkipped(t *testing.T) {
	p := newTestPipeline(t)
	p.write(t, "guide.md", "# Guide\n\nSome stable content here.\n")

	_, err := p.coord.Run(context.Background())
	require.NoError(t, err)

	stats, err := p.coord.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.DocumentsIndexed)
	assert.Equal(t, 1, stats.DocumentsSkipped)
}

func TestCoordinator_ModifiedDocumentSupersedesChunks(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	p.write(t, "guide.md", "# Guide\n\nOriginal content with several words in it.\n")
	_, err := p.coord.Run(ctx)
	require.NoError(t, err)

	first, err := p.metadata.CountChunks(ctx)
	require.NoError(t, err)

	p.write(t, "guide.md", "# Guide\n\nRewritten.\n")
	stats, err := p.coord.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.DocumentsIndexed)

	// Old chunks are gone from every store, not just superseded in one.
	after, err := p.metadata.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.ChunksIndexed, after)
	assert.NotEqual(t, first, 0)

	n, err := p.keyword.Count()
	require.NoError(t, err)
	assert.Equal(t, after, n)
	assert.Equal(t, after, p.vector.Count())
}

func TestCoordinator_RemoveDocument(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	p.write(t, "guide.md", "# Guide\n\nContent to be removed later.\n")
	_, err := p.coord.Run(ctx)
	require.NoError(t, err)

	require.NoError(t, p.coord.RemoveDocument(ctx, "guide.md"))

	n, err := p.metadata.CountChunks(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	kn, err := p.keyword.Count()
	require.NoError(t, err)
	assert.Zero(t, kn)
	assert.Zero(t, p.vector.Count())

	// Unknown paths are a no-op.
	require.NoError(t, p.coord.RemoveDocument(ctx, "missing.md"))
}

func TestCoordinator_KeywordOnlyWithoutVectorStore(t *testing.T) {
	metadata, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer metadata.Close()
	keyword, err := store.NewBleveIndex("")
	require.NoError(t, err)
	defer keyword.Close()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.md"), []byte("# Doc\n\nKeyword only.\n"), 0o644))

	coord, err := NewCoordinator(CoordinatorConfig{
		RootDir:      root,
		ScanOptions:  scanner.Options{Include: []string{"**/*.md"}},
		ChunkOptions: chunk.DefaultOptions(),
		Metadata:     metadata,
		Keyword:      keyword,
	})
	require.NoError(t, err)

	stats, err := coord.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DocumentsIndexed)
}
