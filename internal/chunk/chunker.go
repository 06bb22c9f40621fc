package chunk

import (
	"math"
	"strings"
	"unicode"
)

// section is a heading-delimited region of the document, expressed as a
// byte range. The heading is nil for the leading preamble.
type section struct {
	heading *Heading
	start   int
	end     int
}

// span is a word's byte range within the document.
type span struct {
	start int
	end   int
}

// Split segments text into an ordered chunk sequence.
//
// When opts.SplitOnHeadings is set and the outline is non-empty, the text
// is partitioned into one section per heading (from its line to the next
// heading's line, exclusive) plus a preamble section for any text before
// the first heading. Each section is then size-split with a sliding window
// of opts.MaxChunkWords words and a step of
// max(1, MaxChunkWords-OverlapWords) words. The clamp guarantees forward
// progress for any overlap configuration, so the chunk count is bounded by
// the total word count.
//
// Empty or whitespace-only text yields zero chunks.
func Split(docID, text string, outline []Heading, opts Options) []Chunk {
	opts = normalize(opts)

	if strings.TrimSpace(text) == "" {
		return nil
	}

	sections := sectionize(text, outline, opts.SplitOnHeadings)

	var (
		chunks []Chunk
		stack  []Heading
	)
	for _, sec := range sections {
		breadcrumb := ""
		if sec.heading != nil {
			stack = pushHeading(stack, *sec.heading)
			breadcrumb = breadcrumbFor(stack, opts.PreserveHeadingContext)
		}

		words := wordSpans(text, sec.start, sec.end)
		if len(words) == 0 {
			continue
		}

		chunks = appendWindows(chunks, docID, text, words, breadcrumb, opts)
	}

	return chunks
}

// normalize applies defaults to zero-value options.
func normalize(opts Options) Options {
	if opts.MaxChunkWords <= 0 {
		opts.MaxChunkWords = DefaultMaxChunkWords
	}
	if opts.OverlapWords < 0 {
		opts.OverlapWords = 0
	}
	if opts.TokensPerWord <= 0 {
		opts.TokensPerWord = DefaultTokensPerWord
	}
	return opts
}

// sectionize partitions text into heading-delimited byte ranges. With
// boundary splitting disabled or an empty outline, the whole text is one
// section with no heading.
func sectionize(text string, outline []Heading, splitOnHeadings bool) []section {
	if !splitOnHeadings || len(outline) == 0 {
		return []section{{start: 0, end: len(text)}}
	}

	lineStarts := lineStartOffsets(text)
	boundary := func(line int) int {
		if line < 0 {
			return 0
		}
		if line >= len(lineStarts) {
			return len(text)
		}
		return lineStarts[line]
	}

	var sections []section
	first := boundary(outline[0].StartLine)
	if first > 0 {
		sections = append(sections, section{start: 0, end: first})
	}
	for i := range outline {
		start := boundary(outline[i].StartLine)
		end := len(text)
		if i+1 < len(outline) {
			end = boundary(outline[i+1].StartLine)
		}
		sections = append(sections, section{heading: &outline[i], start: start, end: end})
	}
	return sections
}

// lineStartOffsets returns the byte offset of each line's first character.
func lineStartOffsets(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// pushHeading maintains the ancestor stack: entries at or below the new
// heading's level are popped, then the heading is pushed.
func pushHeading(stack []Heading, h Heading) []Heading {
	for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
		stack = stack[:len(stack)-1]
	}
	return append(stack, h)
}

// breadcrumbFor renders the root-to-self path, or just the leaf title when
// ancestor context is disabled.
func breadcrumbFor(stack []Heading, preserveContext bool) string {
	if len(stack) == 0 {
		return ""
	}
	if !preserveContext {
		return stack[len(stack)-1].Text
	}
	titles := make([]string, len(stack))
	for i, h := range stack {
		titles[i] = h.Text
	}
	return strings.Join(titles, BreadcrumbSeparator)
}

// wordSpans scans text[start:end] for maximal runs of non-space characters
// and returns their absolute byte ranges.
func wordSpans(text string, start, end int) []span {
	var spans []span
	inWord := false
	wordStart := 0
	for i, r := range text[start:end] {
		if unicode.IsSpace(r) {
			if inWord {
				spans = append(spans, span{start: start + wordStart, end: start + i})
				inWord = false
			}
			continue
		}
		if !inWord {
			wordStart = i
			inWord = true
		}
	}
	if inWord {
		spans = append(spans, span{start: start + wordStart, end: end - trailingSpaceLen(text[start:end])})
	}
	return spans
}

// trailingSpaceLen returns the byte length of trailing whitespace in s.
func trailingSpaceLen(s string) int {
	trimmed := strings.TrimRightFunc(s, unicode.IsSpace)
	return len(s) - len(trimmed)
}

// appendWindows emits one chunk per window position over words.
func appendWindows(chunks []Chunk, docID, text string, words []span, breadcrumb string, opts Options) []Chunk {
	step := opts.MaxChunkWords - opts.OverlapWords
	if step < 1 {
		step = 1
	}

	for i := 0; i < len(words); i += step {
		j := i + opts.MaxChunkWords
		if j > len(words) {
			j = len(words)
		}

		start := words[i].start
		end := words[j-1].end
		wc := j - i
		chunks = append(chunks, Chunk{
			DocID:       docID,
			Index:       len(chunks),
			Breadcrumb:  breadcrumb,
			Content:     text[start:end],
			StartOffset: start,
			EndOffset:   end,
			WordCount:   wc,
			TokenCount:  int(math.Round(float64(wc) * opts.TokensPerWord)),
		})

		if j == len(words) {
			break
		}
	}
	return chunks
}

// CountWords returns the number of whitespace-separated words in text.
// Empty input returns 0.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
