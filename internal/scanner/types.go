// Package scanner discovers indexable documents in a project directory.
package scanner

import "time"

// DefaultMaxFileSize is the largest file the scanner will report (5MB).
const DefaultMaxFileSize = 5 * 1024 * 1024

// FileInfo describes a discovered document.
type FileInfo struct {
	// Path is relative to the scan root, with forward slashes.
	Path string
	// AbsPath is the absolute filesystem path.
	AbsPath string
	Size    int64
	ModTime time.Time
}

// ScanResult is one streamed scan event. Exactly one field is set.
type ScanResult struct {
	File  *FileInfo
	Error error
}

// Options configures a scan.
type Options struct {
	// RootDir is the directory to scan. Empty means the current directory.
	RootDir string
	// Include holds doublestar patterns a file must match. Empty matches
	// everything.
	Include []string
	// Exclude holds doublestar patterns that remove files or whole
	// directories from the scan.
	Exclude []string
	// MaxFileSize skips files larger than this many bytes.
	MaxFileSize int64
	// IncludeHidden scans dotfiles and dot-directories.
	IncludeHidden bool
}
