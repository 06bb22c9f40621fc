package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// ProseAnalyzerName is the name of the custom prose analyzer: unicode
// tokenization, lowercasing, English stop word removal.
const ProseAnalyzerName = "prose"

// BleveIndex implements KeywordIndex over Bleve v2 BM25 scoring.
// An empty path creates an in-memory index.
type BleveIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

// bleveChunkDoc is the document shape submitted to Bleve.
type bleveChunkDoc struct {
	Content    string `json:"content"`
	Breadcrumb string `json:"breadcrumb"`
}

// NewBleveIndex opens or creates a keyword index at path.
func NewBleveIndex(path string) (*BleveIndex, error) {
	var (
		idx bleve.Index
		err error
	)
	if path == "" {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
	} else if _, statErr := os.Stat(path); statErr == nil {
		idx, err = bleve.Open(path)
	} else {
		idx, err = bleve.New(path, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening keyword index: %w", err)
	}
	return &BleveIndex{index: idx, path: path}, nil
}

// buildIndexMapping creates the Bleve mapping with the prose analyzer.
func buildIndexMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()
	err := m.AddCustomAnalyzer(ProseAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			lowercase.Name,
			en.StopName,
		},
	})
	if err != nil {
		// The analyzer components are all built in; failure here means a
		// programming error, surface it loudly during development.
		slog.Error("failed to register prose analyzer", "error", err)
		return m
	}

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = ProseAnalyzerName
	contentField.Store = false

	breadcrumbField := bleve.NewTextFieldMapping()
	breadcrumbField.Analyzer = ProseAnalyzerName
	breadcrumbField.Store = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("content", contentField)
	docMapping.AddFieldMappingsAt("breadcrumb", breadcrumbField)

	m.DefaultMapping = docMapping
	m.DefaultAnalyzer = ProseAnalyzerName
	return m
}

// Index adds documents to the index, replacing existing IDs.
func (b *BleveIndex) Index(ctx context.Context, docs []*IndexDoc) error {
	if len(docs) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("keyword index is closed")
	}

	batch := b.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, bleveChunkDoc{
			Content:    doc.Content,
			Breadcrumb: doc.Breadcrumb,
		}); err != nil {
			return fmt.Errorf("batching document %s: %w", doc.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("indexing batch of %d: %w", len(docs), err)
	}
	return nil
}

// Search returns up to limit hits ranked by BM25 score. Scores are raw
// Bleve scores; callers needing a [0,1] similarity normalize downstream.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, fmt.Errorf("keyword index is closed")
	}
	if limit <= 0 {
		limit = 10
	}

	mq := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(mq, limit, 0, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	results := make([]*KeywordResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, &KeywordResult{
			ChunkID: hit.ID,
			Score:   hit.Score,
		})
	}
	return results, nil
}

// Delete removes documents by ID.
func (b *BleveIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("keyword index is closed")
	}

	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return b.index.Batch(batch)
}

// Count returns the number of indexed documents.
func (b *BleveIndex) Count() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0, fmt.Errorf("keyword index is closed")
	}

	n, err := b.index.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Clear removes all documents by recreating the index. Idempotent: an
// already-empty index clears without error.
func (b *BleveIndex) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("keyword index is closed")
	}

	if err := b.index.Close(); err != nil {
		return fmt.Errorf("closing index for clear: %w", err)
	}

	var (
		idx bleve.Index
		err error
	)
	if b.path == "" {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(b.path); err != nil {
			return fmt.Errorf("removing index files: %w", err)
		}
		idx, err = bleve.New(b.path, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("recreating index: %w", err)
	}
	b.index = idx
	return nil
}

// Close releases resources. Safe to call more than once.
func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.index.Close()
}

// Verify interface implementation at compile time.
var _ KeywordIndex = (*BleveIndex)(nil)
