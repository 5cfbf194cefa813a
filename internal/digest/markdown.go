package digest

import (
	"fmt"
	"io"
)

// MarkdownFormatter formats a digest as Markdown.
type MarkdownFormatter struct{}

// NewMarkdown creates a Markdown formatter.
func NewMarkdown() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format writes the digest as Markdown to w.
func (f *MarkdownFormatter) Format(w io.Writer, input Input) error {
	fmt.Fprintf(w, "# rentwatch digest\n\n")
	fmt.Fprintf(w, "%s — %d new listings\n\n", input.Date.Format("02.01.2006 15:04"), input.TotalNew())

	if input.TotalNew() == 0 {
		fmt.Fprintln(w, "No new listings found.")
	}

	for _, g := range input.Groups {
		if len(g.Listings) == 0 {
			continue
		}
		fmt.Fprintf(w, "## %s (%d)\n\n", g.Source, len(g.Listings))
		for _, l := range g.Listings {
			fmt.Fprintf(w, "- [%s](%s)\n", snippet(l.Text), l.URL)
			if l.Image != "" {
				fmt.Fprintf(w, "  ![listing](%s)\n", l.Image)
			}
		}
		fmt.Fprintln(w)
	}

	if len(input.Warnings) > 0 {
		fmt.Fprintf(w, "## Warnings (%d)\n\n", len(input.Warnings))
		for _, warn := range input.Warnings {
			fmt.Fprintf(w, "- %s\n", warn)
		}
	}

	return nil
}
