// Package index coordinates the document indexing pipeline: scan,
// outline, chunk, persist, embed, and index.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docscout/docscout/internal/chunk"
	"github.com/docscout/docscout/internal/embed"
	scouterr "github.com/docscout/docscout/internal/errors"
	"github.com/docscout/docscout/internal/outline"
	"github.com/docscout/docscout/internal/scanner"
	"github.com/docscout/docscout/internal/store"
)

// CoordinatorConfig wires the stores and options the pipeline needs.
type CoordinatorConfig struct {
	// RootDir is the project directory to index.
	RootDir string

	// ScanOptions selects which files are indexed.
	ScanOptions scanner.Options

	// ChunkOptions controls document splitting.
	ChunkOptions chunk.Options

	// Metadata persists documents and chunks.
	Metadata store.MetadataStore

	// Keyword receives chunk text for keyword search.
	Keyword store.KeywordIndex

	// Vector receives chunk embeddings. Optional; indexing proceeds
	// keyword-only without it.
	Vector store.VectorStore

	// Embedder produces chunk embeddings. Required when Vector is set.
	Embedder embed.Embedder

	// Workers bounds concurrent file processing. Zero means NumCPU.
	Workers int
}

// Stats summarizes one indexing run.
type Stats struct {
	DocumentsIndexed int
	DocumentsSkipped int
	ChunksIndexed    int
	Errors           int
	Duration         time.Duration
}

// Coordinator runs the indexing pipeline.
type Coordinator struct {
	config  CoordinatorConfig
	scanner *scanner.Scanner

	mu sync.Mutex
}

// NewCoordinator creates a pipeline coordinator.
func NewCoordinator(config CoordinatorConfig) (*Coordinator, error) {
	if config.Metadata == nil {
		return nil, scouterr.ConfigError("metadata store is required")
	}
	if config.Keyword == nil {
		return nil, scouterr.ConfigError("keyword index is required")
	}
	if config.Vector != nil && config.Embedder == nil {
		return nil, scouterr.ConfigError("vector store requires an embedder")
	}
	return &Coordinator{
		config:  config,
		scanner: scanner.New(),
	}, nil
}

// Run scans the root directory and indexes every discovered document.
// Documents whose content hash is unchanged since the last run are
// skipped. Per-file failures are counted, logged, and do not abort the
// run.
func (c *Coordinator) Run(ctx context.Context) (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	opts := c.config.ScanOptions
	if opts.RootDir == "" {
		opts.RootDir = c.config.RootDir
	}

	results, err := c.scanner.Scan(ctx, opts)
	if err != nil {
		return Stats{}, err
	}

	workers := c.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var stats Stats
	var statsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for result := range results {
		if result.Error != nil {
			statsMu.Lock()
			stats.Errors++
			statsMu.Unlock()
			slog.Warn("scan error", "error", result.Error)
			continue
		}

		file := result.File
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			indexed, chunks, err := c.indexFile(gctx, file)
			statsMu.Lock()
			defer statsMu.Unlock()
			switch {
			case err != nil:
				stats.Errors++
				slog.Warn("failed to index document", "path", file.Path, "error", err)
			case indexed:
				stats.DocumentsIndexed++
				stats.ChunksIndexed += chunks
			default:
				stats.DocumentsSkipped++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	slog.Info("index run complete",
		"indexed", stats.DocumentsIndexed,
		"skipped", stats.DocumentsSkipped,
		"chunks", stats.ChunksIndexed,
		"errors", stats.Errors,
		"duration", stats.Duration)
	return stats, nil
}

// indexFile indexes one document. Returns whether the document was
// (re)indexed and how many chunks it produced.
func (c *Coordinator) indexFile(ctx context.Context, file *scanner.FileInfo) (bool, int, error) {
	content, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return false, 0, scouterr.Wrap(err, scouterr.ErrCodeFileNotFound, "cannot read document")
	}

	hash := scanner.HashContent(content)
	docID := documentID(file.Path)

	if existing, err := c.config.Metadata.GetDocumentByPath(ctx, file.Path); err == nil {
		if existing.ContentHash == hash {
			return false, 0, nil
		}
		// Content changed; the old chunks are superseded below.
	}

	doc := outline.Parse(string(content))
	chunks := chunk.Split(docID, string(content), doc.Headings, c.config.ChunkOptions)

	if err := c.persist(ctx, file, docID, hash, doc.Title(), chunks); err != nil {
		return false, 0, err
	}
	return true, len(chunks), nil
}

// persist replaces the document's chunks in every store.
func (c *Coordinator) persist(ctx context.Context, file *scanner.FileInfo, docID, hash, title string, chunks []chunk.Chunk) error {
	old, err := c.config.Metadata.GetChunksByDoc(ctx, docID)
	if err != nil {
		return err
	}
	oldIDs := make([]string, 0, len(old))
	for _, oc := range old {
		oldIDs = append(oldIDs, oc.ID)
	}

	now := time.Now()
	stored := make([]*store.Chunk, 0, len(chunks))
	indexDocs := make([]*store.IndexDoc, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	ids := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		id := chunkID(docID, ch.Index)
		stored = append(stored, &store.Chunk{
			ID:          id,
			DocID:       docID,
			DocPath:     file.Path,
			Seq:         ch.Index,
			Breadcrumb:  ch.Breadcrumb,
			Content:     ch.Content,
			StartOffset: ch.StartOffset,
			EndOffset:   ch.EndOffset,
			WordCount:   ch.WordCount,
			TokenCount:  ch.TokenCount,
			CreatedAt:   now,
		})
		indexDocs = append(indexDocs, &store.IndexDoc{
			ID:         id,
			Content:    ch.Content,
			Breadcrumb: ch.Breadcrumb,
		})
		texts = append(texts, ch.Content)
		ids = append(ids, id)
	}

	if title == "" {
		title = file.Path
	}
	if err := c.config.Metadata.SaveDocument(ctx, &store.Document{
		ID:          docID,
		Path:        file.Path,
		Title:       title,
		Size:        file.Size,
		ModTime:     file.ModTime,
		ContentHash: hash,
		IndexedAt:   now,
	}); err != nil {
		return err
	}
	if err := c.config.Metadata.DeleteChunksByDoc(ctx, docID); err != nil {
		return err
	}
	if err := c.config.Metadata.SaveChunks(ctx, stored); err != nil {
		return err
	}

	if len(oldIDs) > 0 {
		if err := c.config.Keyword.Delete(ctx, oldIDs); err != nil {
			return err
		}
	}
	if err := c.config.Keyword.Index(ctx, indexDocs); err != nil {
		return err
	}

	if c.config.Vector == nil {
		return nil
	}
	if len(oldIDs) > 0 {
		if err := c.config.Vector.Delete(ctx, oldIDs); err != nil {
			return err
		}
	}
	if len(texts) == 0 {
		return nil
	}
	vectors, err := c.config.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return scouterr.Wrap(err, scouterr.ErrCodeEmbeddingFailed, "chunk embedding failed")
	}
	return c.config.Vector.Add(ctx, ids, vectors)
}

// RemoveDocument deletes a document and its chunks from every store.
// Removing an unknown path is a no-op.
func (c *Coordinator) RemoveDocument(ctx context.Context, relPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.config.Metadata.GetDocumentByPath(ctx, relPath)
	if err != nil {
		return nil
	}

	chunks, err := c.config.Metadata.GetChunksByDoc(ctx, doc.ID)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		ids = append(ids, ch.ID)
	}

	if len(ids) > 0 {
		if err := c.config.Keyword.Delete(ctx, ids); err != nil {
			return err
		}
		if c.config.Vector != nil {
			if err := c.config.Vector.Delete(ctx, ids); err != nil {
				return err
			}
		}
	}
	return c.config.Metadata.DeleteDocument(ctx, doc.ID)
}

// documentID derives a stable document ID from the relative path.
func documentID(relPath string) string {
	return "doc:" + scanner.HashContent([]byte(relPath))[:16]
}

// chunkID derives a chunk ID from its document and sequence number.
func chunkID(docID string, seq int) string {
	return fmt.Sprintf("%s:%d", docID, seq)
}
