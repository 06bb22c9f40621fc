// Package chunk segments document text into bounded, context-preserving
// units for indexing. Chunking is a pure function of the text, its heading
// outline, and the options; it has no error states.
package chunk

// Chunking defaults (tuned for prose retrieval).
const (
	// DefaultMaxChunkWords is the maximum words per chunk.
	DefaultMaxChunkWords = 200

	// DefaultOverlapWords is the overlap between adjacent size-split chunks.
	DefaultOverlapWords = 20

	// DefaultTokensPerWord approximates tokens from words for prose.
	DefaultTokensPerWord = 1.3

	// BreadcrumbSeparator joins heading titles in a breadcrumb.
	BreadcrumbSeparator = " > "
)

// Heading is one entry of a document's heading outline, as supplied by the
// outline extractor.
type Heading struct {
	// Level is the nesting level (1 = top).
	Level int

	// Text is the heading title without markup.
	Text string

	// StartLine is the zero-based line the heading starts on.
	StartLine int
}

// Options configures chunking behavior.
type Options struct {
	// MaxChunkWords is the maximum words per chunk. Values <= 0 use
	// DefaultMaxChunkWords.
	MaxChunkWords int

	// OverlapWords is the overlap between adjacent chunks when a section
	// is size-split. Negative values are treated as 0. Values at or above
	// MaxChunkWords are safe: the window step is clamped to at least 1.
	OverlapWords int

	// SplitOnHeadings partitions the text into sections at heading line
	// boundaries before size-splitting.
	SplitOnHeadings bool

	// PreserveHeadingContext includes the full ancestor chain in each
	// chunk's breadcrumb. When false, the breadcrumb is the section's own
	// heading title only.
	PreserveHeadingContext bool

	// TokensPerWord is the token estimation multiplier. Values <= 0 use
	// DefaultTokensPerWord.
	TokensPerWord float64
}

// DefaultOptions returns the default chunking options.
func DefaultOptions() Options {
	return Options{
		MaxChunkWords:          DefaultMaxChunkWords,
		OverlapWords:           DefaultOverlapWords,
		SplitOnHeadings:        true,
		PreserveHeadingContext: true,
		TokensPerWord:          DefaultTokensPerWord,
	}
}

// Chunk is a contiguous slice of one document's text. Chunks are created
// once per indexing pass and are immutable thereafter; re-indexing
// supersedes them rather than mutating them.
type Chunk struct {
	// DocID is the owning document id.
	DocID string

	// Index is the zero-based sequential position within the document.
	// Indices are contiguous across the whole document, not per section.
	Index int

	// Breadcrumb is the ancestor-to-self heading path joined with
	// BreadcrumbSeparator, or empty if the chunk precedes the first
	// heading.
	Breadcrumb string

	// Content is the raw chunk text.
	Content string

	// StartOffset and EndOffset are byte offsets into the original
	// document text. Offsets of adjacent chunks may overlap by up to the
	// configured overlap region.
	StartOffset int
	EndOffset   int

	// WordCount is the number of words in Content.
	WordCount int

	// TokenCount approximates the token count from WordCount.
	TokenCount int
}
