package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// SQLiteStore implements MetadataStore over SQLite. WAL mode allows
// concurrent readers while indexing writes.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	path         TEXT NOT NULL UNIQUE,
	title        TEXT NOT NULL DEFAULT '',
	size         INTEGER NOT NULL DEFAULT 0,
	mod_time     INTEGER NOT NULL DEFAULT 0,
	content_hash TEXT NOT NULL DEFAULT '',
	indexed_at   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS chunks (
	id           TEXT PRIMARY KEY,
	doc_id       TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	doc_path     TEXT NOT NULL DEFAULT '',
	seq          INTEGER NOT NULL,
	breadcrumb   TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL,
	start_offset INTEGER NOT NULL DEFAULT 0,
	end_offset   INTEGER NOT NULL DEFAULT 0,
	word_count   INTEGER NOT NULL DEFAULT 0,
	token_count  INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_chunks_doc_seq ON chunks(doc_id, seq);
`

// NewSQLiteStore opens or creates the metadata database at path.
// Use ":memory:" for an in-memory store (tests).
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening metadata db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveDocument upserts a document row.
func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("metadata store is closed")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, path, title, size, mod_time, content_hash, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path=excluded.path, title=excluded.title, size=excluded.size,
			mod_time=excluded.mod_time, content_hash=excluded.content_hash,
			indexed_at=excluded.indexed_at`,
		doc.ID, doc.Path, doc.Title, doc.Size,
		doc.ModTime.UnixNano(), doc.ContentHash, doc.IndexedAt.UnixNano())
	return err
}

// GetDocument returns the document with the given id, or sql.ErrNoRows.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*Document, error) {
	return s.queryDocument(ctx, "SELECT id, path, title, size, mod_time, content_hash, indexed_at FROM documents WHERE id = ?", id)
}

// GetDocumentByPath returns the document at the given path, or sql.ErrNoRows.
func (s *SQLiteStore) GetDocumentByPath(ctx context.Context, path string) (*Document, error) {
	return s.queryDocument(ctx, "SELECT id, path, title, size, mod_time, content_hash, indexed_at FROM documents WHERE path = ?", path)
}

func (s *SQLiteStore) queryDocument(ctx context.Context, query string, arg any) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("metadata store is closed")
	}

	var (
		doc       Document
		modTime   int64
		indexedAt int64
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&doc.ID, &doc.Path, &doc.Title, &doc.Size, &modTime, &doc.ContentHash, &indexedAt)
	if err != nil {
		return nil, err
	}
	doc.ModTime = time.Unix(0, modTime)
	doc.IndexedAt = time.Unix(0, indexedAt)
	return &doc, nil
}

// ListDocuments returns all documents ordered by path.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("metadata store is closed")
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, path, title, size, mod_time, content_hash, indexed_at FROM documents ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var (
			doc       Document
			modTime   int64
			indexedAt int64
		)
		if err := rows.Scan(&doc.ID, &doc.Path, &doc.Title, &doc.Size, &modTime, &doc.ContentHash, &indexedAt); err != nil {
			return nil, err
		}
		doc.ModTime = time.Unix(0, modTime)
		doc.IndexedAt = time.Unix(0, indexedAt)
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document; chunks cascade.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("metadata store is closed")
	}

	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	return err
}

// SaveChunks inserts chunks in a single transaction, replacing on id
// collision.
func (s *SQLiteStore) SaveChunks(ctx context.Context, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("metadata store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks
		(id, doc_id, doc_path, seq, breadcrumb, content, start_offset, end_offset, word_count, token_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.DocID, c.DocPath, c.Seq, c.Breadcrumb, c.Content,
			c.StartOffset, c.EndOffset, c.WordCount, c.TokenCount,
			c.CreatedAt.UnixNano()); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

const chunkColumns = "id, doc_id, doc_path, seq, breadcrumb, content, start_offset, end_offset, word_count, token_count, created_at"

// GetChunk returns the chunk with the given id, or sql.ErrNoRows.
func (s *SQLiteStore) GetChunk(ctx context.Context, id string) (*Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("metadata store is closed")
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+chunkColumns+" FROM chunks WHERE id = ?", id)
	return scanChunk(row)
}

// GetChunks batch-retrieves chunks by id. Missing ids are skipped; the
// result preserves the requested order.
func (s *SQLiteStore) GetChunks(ctx context.Context, ids []string) ([]*Chunk, error) {
	if len(ids) == 0 {
		return []*Chunk{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("metadata store is closed")
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*Chunk, len(ids))
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*Chunk, 0, len(byID))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// GetChunksByDoc returns a document's chunks ordered by sequence.
func (s *SQLiteStore) GetChunksByDoc(ctx context.Context, docID string) ([]*Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("metadata store is closed")
	}

	return s.queryChunks(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE doc_id = ? ORDER BY seq", docID)
}

// GetAdjacentChunks returns chunks within radius positions of seq in the
// same document, excluding seq itself, ordered by sequence.
func (s *SQLiteStore) GetAdjacentChunks(ctx context.Context, docID string, seq, radius int) ([]*Chunk, error) {
	if radius <= 0 {
		return []*Chunk{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("metadata store is closed")
	}

	return s.queryChunks(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE doc_id = ? AND seq BETWEEN ? AND ? AND seq != ? ORDER BY seq",
		docID, seq-radius, seq+radius, seq)
}

func (s *SQLiteStore) queryChunks(ctx context.Context, query string, args ...any) ([]*Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// DeleteChunksByDoc removes all chunks of a document.
func (s *SQLiteStore) DeleteChunksByDoc(ctx context.Context, docID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("metadata store is closed")
	}

	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE doc_id = ?", docID)
	return err
}

// CountChunks returns the total number of stored chunks.
func (s *SQLiteStore) CountChunks(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, fmt.Errorf("metadata store is closed")
	}

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

// Close closes the database. Safe to call more than once.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// scanner abstracts *sql.Row and *sql.Rows for scanChunk.
type scanner interface {
	Scan(dest ...any) error
}

func scanChunk(row scanner) (*Chunk, error) {
	var (
		c         Chunk
		createdAt int64
	)
	err := row.Scan(&c.ID, &c.DocID, &c.DocPath, &c.Seq, &c.Breadcrumb, &c.Content,
		&c.StartOffset, &c.EndOffset, &c.WordCount, &c.TokenCount, &createdAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = time.Unix(0, createdAt)
	return &c, nil
}

// Verify interface implementation at compile time.
var _ MetadataStore = (*SQLiteStore)(nil)
