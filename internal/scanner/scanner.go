package scanner

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	scouterr "github.com/docscout/docscout/internal/errors"
)

// Scanner walks a directory tree and streams matching documents.
type Scanner struct{}

// New creates a Scanner.
func New() *Scanner {
	return &Scanner{}
}

// Scan discovers documents under opts.RootDir. Results stream on the
// returned channel, which closes when the walk finishes or the context
// is cancelled.
func (s *Scanner) Scan(ctx context.Context, opts Options) (<-chan ScanResult, error) {
	rootDir := opts.RootDir
	if rootDir == "" {
		rootDir = "."
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, scouterr.Wrap(err, scouterr.ErrCodeFileNotFound, "cannot resolve scan root")
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, scouterr.Wrap(err, scouterr.ErrCodeFileNotFound, "cannot stat scan root")
	}
	if !info.IsDir() {
		return nil, scouterr.New(scouterr.ErrCodeInvalidInput, "scan root is not a directory", nil).
			WithDetail("path", absRoot)
	}

	maxFileSize := opts.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	results := make(chan ScanResult, 64)
	go func() {
		defer close(results)
		s.walk(ctx, absRoot, opts, maxFileSize, results)
	}()
	return results, nil
}

func (s *Scanner) walk(ctx context.Context, absRoot string, opts Options, maxFileSize int64, results chan<- ScanResult) {
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if s.excludeDir(relPath, opts) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinked files are never followed.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if !s.includeFile(relPath, opts) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxFileSize {
			return nil
		}
		if isBinaryFile(path) {
			return nil
		}

		file := &FileInfo{
			Path:    relPath,
			AbsPath: path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		select {
		case results <- ScanResult{File: file}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	if err != nil && err != context.Canceled {
		select {
		case results <- ScanResult{Error: err}:
		default:
		}
	}
}

// excludeDir reports whether a directory subtree should be skipped
// entirely.
func (s *Scanner) excludeDir(relPath string, opts Options) bool {
	if !opts.IncludeHidden && strings.HasPrefix(filepath.Base(relPath), ".") {
		return true
	}
	for _, pattern := range opts.Exclude {
		// A pattern like **/vendor/** excludes the vendor directory
		// itself, not only its contents.
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, relPath+"/"); ok {
			return true
		}
		trimmed := strings.TrimSuffix(pattern, "/**")
		if trimmed != pattern {
			if ok, _ := doublestar.Match(trimmed, relPath); ok {
				return true
			}
		}
	}
	return false
}

// includeFile applies exclude patterns first, then include patterns.
func (s *Scanner) includeFile(relPath string, opts Options) bool {
	if !opts.IncludeHidden && strings.HasPrefix(filepath.Base(relPath), ".") {
		return false
	}
	for _, pattern := range sensitiveFilePatterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return false
		}
		if ok, _ := doublestar.Match(pattern, filepath.Base(relPath)); ok {
			return false
		}
	}
	for _, pattern := range opts.Exclude {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return false
		}
	}
	if len(opts.Include) == 0 {
		return true
	}
	for _, pattern := range opts.Include {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// isBinaryFile sniffs the first 512 bytes for null bytes.
func isBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return false
	}
	return bytes.Contains(buf[:n], []byte{0})
}

// HashContent returns the hex SHA-256 of a document's content, used to
// detect unchanged documents across index runs.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Sensitive files are never indexed regardless of include patterns.
var sensitiveFilePatterns = []string{
	".env",
	".env.*",
	"*.pem",
	"*.key",
	"**/*credentials*",
	"**/*secrets*",
	".netrc",
	".npmrc",
	"id_rsa",
	"id_ed25519",
}
