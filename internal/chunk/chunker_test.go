package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twelveWords = "one two three four five six seven eight nine ten eleven twelve"

// outlinedDoc is a small document with a three-level heading hierarchy.
const outlinedDoc = `intro text here

# Guide
alpha bravo

## Install
charlie delta

### Linux
echo foxtrot

## Usage
golf hotel

# Appendix
india juliet
`

// outlinedDocHeadings is the heading outline for outlinedDoc, as the
// outline extractor would supply it.
var outlinedDocHeadings = []Heading{
	{Level: 1, Text: "Guide", StartLine: 2},
	{Level: 2, Text: "Install", StartLine: 5},
	{Level: 3, Text: "Linux", StartLine: 8},
	{Level: 2, Text: "Usage", StartLine: 11},
	{Level: 1, Text: "Appendix", StartLine: 14},
}

func TestSplit_EmptyText(t *testing.T) {
	assert.Empty(t, Split("doc", "", nil, DefaultOptions()))
	assert.Empty(t, Split("doc", "   \n\t  ", nil, DefaultOptions()))
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	opts := Options{MaxChunkWords: 100}
	chunks := Split("doc", twelveWords, nil, opts)

	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, "doc", c.DocID)
	assert.Equal(t, 0, c.Index)
	assert.Equal(t, twelveWords, c.Content)
	assert.Equal(t, 12, c.WordCount)
	assert.Equal(t, 0, c.StartOffset)
	assert.Equal(t, len(twelveWords), c.EndOffset)
}

func TestSplit_SlidingWindowWithOverlap(t *testing.T) {
	// 12 words, window 10, overlap 3: step 7 gives windows [0,10) and [7,12).
	opts := Options{MaxChunkWords: 10, OverlapWords: 3}
	chunks := Split("doc", twelveWords, nil, opts)

	require.GreaterOrEqual(t, len(chunks), 2)
	require.Len(t, chunks, 2)

	first := strings.Fields(chunks[0].Content)
	require.Len(t, first, 10)

	// The last 3 words of chunk 0 appear within chunk 1's content.
	tail := strings.Join(first[7:], " ")
	assert.Contains(t, chunks[1].Content, tail)
	assert.Equal(t, 5, chunks[1].WordCount)
}

func TestSplit_ContentMatchesOffsets(t *testing.T) {
	opts := Options{MaxChunkWords: 4, OverlapWords: 1}
	chunks := Split("doc", twelveWords, nil, opts)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, twelveWords[c.StartOffset:c.EndOffset], c.Content)
	}
}

func TestSplit_PathologicalOverlapTerminates(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		overlap int
	}{
		{"overlap equals max", 5, 5},
		{"overlap exceeds max", 5, 10},
		{"overlap far exceeds max", 3, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{MaxChunkWords: tt.max, OverlapWords: tt.overlap}
			chunks := Split("doc", twelveWords, nil, opts)

			// Step clamps to 1: finite output bounded by total word count.
			require.NotEmpty(t, chunks)
			assert.LessOrEqual(t, len(chunks), 12)
		})
	}
}

func TestSplit_IndicesContiguousAndOffsetsMonotonic(t *testing.T) {
	opts := Options{MaxChunkWords: 5, OverlapWords: 2, SplitOnHeadings: true}
	chunks := Split("doc", outlinedDoc, outlinedDocHeadings, opts)

	require.NotEmpty(t, chunks)
	prevStart, prevEnd := -1, -1
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.GreaterOrEqual(t, c.StartOffset, prevStart)
		assert.GreaterOrEqual(t, c.EndOffset, prevEnd)
		assert.Less(t, c.StartOffset, c.EndOffset)
		prevStart, prevEnd = c.StartOffset, c.EndOffset
	}
}

func TestSplit_BreadcrumbAncestry(t *testing.T) {
	opts := Options{MaxChunkWords: 100, SplitOnHeadings: true, PreserveHeadingContext: true}
	chunks := Split("doc", outlinedDoc, outlinedDocHeadings, opts)

	byBreadcrumb := map[string]bool{}
	for _, c := range chunks {
		byBreadcrumb[c.Breadcrumb] = true
	}

	assert.True(t, byBreadcrumb[""], "preamble chunk has no breadcrumb")
	assert.True(t, byBreadcrumb["Guide"])
	assert.True(t, byBreadcrumb["Guide > Install"])
	assert.True(t, byBreadcrumb["Guide > Install > Linux"])
	assert.True(t, byBreadcrumb["Guide > Usage"], "sibling heading pops deeper ancestors")
	assert.True(t, byBreadcrumb["Appendix"], "top-level heading resets the stack")
}

func TestSplit_LeafTitlesReproduceOutlineOrder(t *testing.T) {
	opts := Options{MaxChunkWords: 3, OverlapWords: 1, SplitOnHeadings: true, PreserveHeadingContext: true}
	chunks := Split("doc", outlinedDoc, outlinedDocHeadings, opts)

	var leaves []string
	for _, c := range chunks {
		if c.Breadcrumb == "" {
			continue
		}
		parts := strings.Split(c.Breadcrumb, BreadcrumbSeparator)
		leaf := parts[len(parts)-1]
		if len(leaves) == 0 || leaves[len(leaves)-1] != leaf {
			leaves = append(leaves, leaf)
		}
	}

	want := make([]string, len(outlinedDocHeadings))
	for i, h := range outlinedDocHeadings {
		want[i] = h.Text
	}
	assert.Equal(t, want, leaves)
}

func TestSplit_NoContextUsesOwnTitleOnly(t *testing.T) {
	opts := Options{MaxChunkWords: 100, SplitOnHeadings: true, PreserveHeadingContext: false}
	chunks := Split("doc", outlinedDoc, outlinedDocHeadings, opts)

	for _, c := range chunks {
		assert.NotContains(t, c.Breadcrumb, BreadcrumbSeparator)
	}
}

func TestSplit_HeadingSplitDisabledIgnoresOutline(t *testing.T) {
	opts := Options{MaxChunkWords: 1000, SplitOnHeadings: false, PreserveHeadingContext: true}
	chunks := Split("doc", outlinedDoc, outlinedDocHeadings, opts)

	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Breadcrumb)
}

func TestSplit_TokenCountUsesMultiplier(t *testing.T) {
	opts := Options{MaxChunkWords: 100, TokensPerWord: 1.3}
	chunks := Split("doc", "a b c d e f g h i j", nil, opts)

	require.Len(t, chunks, 1)
	assert.Equal(t, 10, chunks[0].WordCount)
	assert.Equal(t, 13, chunks[0].TokenCount)
}

func TestSplit_SectionOffsetsAreDocumentRelative(t *testing.T) {
	opts := Options{MaxChunkWords: 100, SplitOnHeadings: true}
	chunks := Split("doc", outlinedDoc, outlinedDocHeadings, opts)

	for _, c := range chunks {
		assert.Equal(t, outlinedDoc[c.StartOffset:c.EndOffset], c.Content)
	}
}

func TestSplit_ManySectionsStressIndices(t *testing.T) {
	var sb strings.Builder
	var outline []Heading
	line := 0
	for i := 0; i < 50; i++ {
		outline = append(outline, Heading{Level: 1 + i%3, Text: fmt.Sprintf("H%d", i), StartLine: line})
		sb.WriteString(fmt.Sprintf("# H%d\n", i))
		line++
		for w := 0; w < 7; w++ {
			sb.WriteString("word ")
		}
		sb.WriteString("\n")
		line++
	}

	opts := Options{MaxChunkWords: 4, OverlapWords: 2, SplitOnHeadings: true}
	chunks := Split("doc", sb.String(), outline, opts)

	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("   "))
	assert.Equal(t, 3, CountWords("a  b\nc"))
}
