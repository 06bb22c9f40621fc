// Package store provides the persistence layer for indexed documents:
// keyword search (Bleve), vector search (HNSW), and metadata (SQLite).
package store

import (
	"context"
	"fmt"
	"time"
)

// Document represents a tracked document in the index.
type Document struct {
	ID          string    // SHA256(path)[:16]
	Path        string    // Relative to the indexed root
	Title       string    // First top-level heading, or the file name
	Size        int64     // File size in bytes
	ModTime     time.Time // Last modification time
	ContentHash string    // SHA256 of content
	IndexedAt   time.Time // When indexed
}

// Chunk is the persisted form of a chunker output unit.
type Chunk struct {
	ID          string    // SHA256(doc path + content)[:16]
	DocID       string    // Owning document id
	DocPath     string    // Denormalized for display
	Seq         int       // Zero-based position within the document
	Breadcrumb  string    // Heading ancestry, empty for preamble chunks
	Content     string    // Raw chunk text
	StartOffset int       // Byte offset into the original document
	EndOffset   int       // Byte offset into the original document
	WordCount   int
	TokenCount  int
	CreatedAt   time.Time
}

// IndexDoc is a unit of content submitted to the keyword index.
type IndexDoc struct {
	ID         string // Chunk ID
	Content    string // Chunk text
	Breadcrumb string // Heading ancestry, searchable
}

// KeywordResult is a single keyword search hit. Score is the raw BM25
// score from the underlying engine, unbounded above.
type KeywordResult struct {
	ChunkID string
	Score   float64
}

// KeywordIndex provides keyword search over chunk content.
type KeywordIndex interface {
	// Index adds documents to the index, replacing existing IDs.
	Index(ctx context.Context, docs []*IndexDoc) error

	// Search returns up to limit hits ranked by BM25 score.
	Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error)

	// Delete removes documents by ID.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of indexed documents.
	Count() (int, error)

	// Clear removes all documents. Idempotent.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VectorResult is a single vector search hit.
type VectorResult struct {
	ID       string  // Chunk ID
	Distance float32 // Lower is more similar (0-2 for cosine)
	Score    float32 // Normalized similarity in [0,1]
}

// VectorStoreConfig configures the vector store.
type VectorStoreConfig struct {
	// Dimensions is the vector dimension.
	Dimensions int

	// Metric is the distance metric: "cos" (cosine) or "l2" (euclidean).
	Metric string

	// M is the HNSW max connections per layer.
	M int

	// EfSearch is the HNSW query-time search width.
	EfSearch int
}

// DefaultVectorStoreConfig returns sensible defaults for the given
// dimension.
func DefaultVectorStoreConfig(dimensions int) VectorStoreConfig {
	return VectorStoreConfig{
		Dimensions: dimensions,
		Metric:     "cos",
		M:          16,
		EfSearch:   20,
	}
}

// VectorStore provides approximate nearest-neighbor search.
type VectorStore interface {
	// Add inserts vectors with their IDs. Existing IDs are replaced.
	Add(ctx context.Context, ids []string, vectors [][]float32) error

	// Search finds the k nearest neighbors to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)

	// Delete removes vectors by ID.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of live vectors.
	Count() int

	// Clear removes all vectors. Idempotent.
	Clear(ctx context.Context) error

	// Persistence.
	Save(path string) error
	Load(path string) error
	Close() error
}

// MetadataStore persists documents and chunks.
type MetadataStore interface {
	// Document operations.
	SaveDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id string) (*Document, error)
	GetDocumentByPath(ctx context.Context, path string) (*Document, error)
	ListDocuments(ctx context.Context) ([]*Document, error)
	DeleteDocument(ctx context.Context, id string) error

	// Chunk operations. Re-indexing supersedes chunks: delete by doc,
	// insert fresh.
	SaveChunks(ctx context.Context, chunks []*Chunk) error
	GetChunk(ctx context.Context, id string) (*Chunk, error)
	GetChunks(ctx context.Context, ids []string) ([]*Chunk, error)
	GetChunksByDoc(ctx context.Context, docID string) ([]*Chunk, error)
	GetAdjacentChunks(ctx context.Context, docID string, seq, radius int) ([]*Chunk, error)
	DeleteChunksByDoc(ctx context.Context, docID string) error
	CountChunks(ctx context.Context) (int, error)

	Close() error
}

// ErrDimensionMismatch indicates a vector dimension mismatch between the
// query or inserted vector and the configured index dimension.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d (reindex with the current embedder)", e.Expected, e.Got)
}
