package digest

import (
	"fmt"
	"io"
)

// TerminalFormatter formats a digest for terminal output, used by
// preview and dry runs.
type TerminalFormatter struct {
	color bool
}

// NewTerminal creates a terminal formatter. Set color=true for ANSI colors.
func NewTerminal(color bool) *TerminalFormatter {
	return &TerminalFormatter{color: color}
}

// Format writes the digest to w grouped by source.
func (f *TerminalFormatter) Format(w io.Writer, input Input) error {
	header := fmt.Sprintf("rentwatch — %s, %d new listings",
		input.Date.Format("02.01.2006 15:04"), input.TotalNew())
	fmt.Fprintln(w, f.bold(header))
	fmt.Fprintln(w)

	if input.TotalNew() == 0 {
		fmt.Fprintln(w, "No new listings found.")
	}

	for _, g := range input.Groups {
		if len(g.Listings) == 0 {
			continue
		}
		fmt.Fprintln(w, f.green(f.bold(fmt.Sprintf("--- %s (%d) ---", g.Source, len(g.Listings)))))
		fmt.Fprintln(w)
		for _, l := range g.Listings {
			fmt.Fprintf(w, "  %s\n", f.bold(l.URL))
			fmt.Fprintf(w, "    %s\n", snippet(l.Text))
			if l.Image != "" {
				fmt.Fprintf(w, "    %s\n", f.dim("image: "+l.Image))
			}
			fmt.Fprintln(w)
		}
	}

	if len(input.Warnings) > 0 {
		fmt.Fprintln(w, f.yellow(f.bold(fmt.Sprintf("--- Warnings (%d) ---", len(input.Warnings)))))
		for _, warn := range input.Warnings {
			fmt.Fprintf(w, "  %s\n", f.yellow(warn))
		}
	}

	return nil
}

// ANSI helpers, no-ops when color=false.

func (f *TerminalFormatter) bold(s string) string {
	if !f.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func (f *TerminalFormatter) green(s string) string {
	if !f.color {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

func (f *TerminalFormatter) yellow(s string) string {
	if !f.color {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

func (f *TerminalFormatter) dim(s string) string {
	if !f.color {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}
