// Package outline extracts the heading structure of a markdown document.
// It feeds the chunker its heading outline and strips YAML frontmatter.
package outline

import (
	"regexp"
	"strings"

	"github.com/docscout/docscout/internal/chunk"
)

var (
	// headingPattern matches ATX headings: # Title, ## Title, etc.
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

	// frontmatterPattern matches leading YAML frontmatter: ---\n...\n---
	frontmatterPattern = regexp.MustCompile(`(?s)^---\n(.+?)\n---\n?`)

	// fenceDelimiter marks the start or end of a fenced code block.
	fenceDelimiter = regexp.MustCompile("^(```|~~~)")
)

// Document is the structural analysis of one markdown document.
type Document struct {
	// Headings is the ordered heading outline. StartLine values are
	// zero-based line indices into the original text, so they can be fed
	// directly to the chunker.
	Headings []chunk.Heading

	// Frontmatter is the raw YAML frontmatter body, without delimiters.
	// Empty if the document has none.
	Frontmatter string

	// FrontmatterLines is the number of lines the frontmatter block spans
	// in the original text, delimiters included.
	FrontmatterLines int
}

// Parse analyzes text and returns its heading outline. Headings inside
// fenced code blocks are ignored; headings inside frontmatter cannot occur
// because the frontmatter block is skipped as a whole.
func Parse(text string) *Document {
	doc := &Document{}

	body := text
	if m := frontmatterPattern.FindStringSubmatch(text); m != nil {
		doc.Frontmatter = m[1]
		doc.FrontmatterLines = strings.Count(m[0], "\n")
	}

	inFence := false
	for lineNum, line := range strings.Split(body, "\n") {
		if lineNum < doc.FrontmatterLines {
			continue
		}
		if fenceDelimiter.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			doc.Headings = append(doc.Headings, chunk.Heading{
				Level:     len(m[1]),
				Text:      strings.TrimSpace(m[2]),
				StartLine: lineNum,
			})
		}
	}

	return doc
}

// Title returns the first top-level heading, or "" if none exists.
func (d *Document) Title() string {
	for _, h := range d.Headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}
