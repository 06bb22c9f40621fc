package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/docscout/docscout/internal/index"
	"github.com/docscout/docscout/internal/search"
)

// snippetLength caps the preview text shown per result.
const snippetLength = 200

// Printer renders command output. Styling is disabled automatically
// when the writer is not a terminal.
type Printer struct {
	out    io.Writer
	styles Styles
}

// NewPrinter creates a printer for the writer. Pass noColor to force
// plain output regardless of terminal detection.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	if !noColor {
		f, ok := out.(*os.File)
		if !ok || !isatty.IsTerminal(f.Fd()) {
			noColor = true
		}
	}
	return &Printer{out: out, styles: GetStyles(noColor)}
}

// SearchResults renders a fused result list.
func (p *Printer) SearchResults(query string, results []*search.RankedResult) {
	if len(results) == 0 {
		fmt.Fprintf(p.out, "No results for %q.\n", query)
		return
	}

	fmt.Fprintf(p.out, "%s\n\n", p.styles.Header.Render(fmt.Sprintf("%d results for %q", len(results), query)))

	for i, r := range results {
		title := r.ChunkID
		var location string
		if r.Chunk != nil {
			location = r.Chunk.DocPath
			if r.Chunk.Breadcrumb != "" {
				title = r.Chunk.Breadcrumb
			} else {
				title = r.Chunk.DocPath
			}
		}

		fmt.Fprintf(p.out, "%s %s %s\n",
			p.styles.Score.Render(fmt.Sprintf("%2d. [%.3f]", i+1, r.Score)),
			p.styles.Title.Render(title),
			p.styles.Dim.Render(sourceTag(r)))
		if location != "" && location != title {
			fmt.Fprintf(p.out, "    %s\n", p.styles.Crumb.Render(location))
		}
		if r.Chunk != nil {
			fmt.Fprintf(p.out, "    %s\n", snippet(r.Chunk.Content))
		}
		if r.Context != "" {
			fmt.Fprintf(p.out, "    %s\n", p.styles.Dim.Render(snippet(r.Context)))
		}
		fmt.Fprintln(p.out)
	}
}

// IndexSummary renders the outcome of an index run.
func (p *Printer) IndexSummary(stats index.Stats) {
	fmt.Fprintf(p.out, "%s\n", p.styles.Header.Render("Index complete"))
	fmt.Fprintf(p.out, "  %s %d\n", p.styles.Label.Render("indexed:"), stats.DocumentsIndexed)
	fmt.Fprintf(p.out, "  %s %d\n", p.styles.Label.Render("skipped:"), stats.DocumentsSkipped)
	fmt.Fprintf(p.out, "  %s %d\n", p.styles.Label.Render("chunks: "), stats.ChunksIndexed)
	if stats.Errors > 0 {
		fmt.Fprintf(p.out, "  %s %d\n", p.styles.Error.Render("errors: "), stats.Errors)
	}
	fmt.Fprintf(p.out, "  %s %s\n", p.styles.Label.Render("took:   "), stats.Duration.Round(time.Millisecond).String())
}

// EngineStats renders index counts and backend availability.
func (p *Printer) EngineStats(stats search.EngineStats, cacheLine string) {
	fmt.Fprintf(p.out, "%s\n", p.styles.Header.Render("Index status"))
	fmt.Fprintf(p.out, "  %s %d\n", p.styles.Label.Render("keyword chunks:"), stats.KeywordCount)
	fmt.Fprintf(p.out, "  %s %d\n", p.styles.Label.Render("vectors:       "), stats.VectorCount)

	backend := p.styles.Success.Render("available")
	if !stats.VectorAvailable {
		backend = p.styles.Warning.Render("unavailable (keyword-only)")
	}
	fmt.Fprintf(p.out, "  %s %s\n", p.styles.Label.Render("semantic:      "), backend)
	if cacheLine != "" {
		fmt.Fprintf(p.out, "  %s %s\n", p.styles.Label.Render("query cache:   "), cacheLine)
	}
}

// Success prints a confirmation line.
func (p *Printer) Success(msg string) {
	fmt.Fprintf(p.out, "%s\n", p.styles.Success.Render(msg))
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintf(p.out, "%s\n", p.styles.Error.Render(fmt.Sprintf(format, args...)))
}

// sourceTag labels which retrieval modalities found a result.
func sourceTag(r *search.RankedResult) string {
	switch {
	case r.InBothLists:
		return "(keyword+semantic)"
	case r.SemanticScore > 0:
		return "(semantic)"
	default:
		return "(keyword)"
	}
}

// snippet collapses whitespace and truncates for single-line previews.
func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > snippetLength {
		return text[:snippetLength] + "..."
	}
	return text
}
