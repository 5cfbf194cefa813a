// Package digest renders the per-run notification payload: new listings
// grouped by source, plus any per-source fetch warnings. It performs no
// filtering or deduplication; the input is already final.
package digest

import (
	"io"
	"time"

	"github.com/ppiankov/rentwatch/internal/extract"
)

const (
	// Snippets longer than snippetSlackRunes are cut at
	// snippetMaxRunes with an ellipsis. The slack avoids cutting a
	// snippet that barely overflows.
	snippetMaxRunes   = 300
	snippetSlackRunes = 320
)

// Group is one source's newly discovered listings, in extraction order.
type Group struct {
	Source   string
	Listings []extract.Listing
}

// Input is the full input for a digest formatter.
type Input struct {
	Date     time.Time // run timestamp, already in the display timezone
	Groups   []Group   // one per configured source, possibly empty
	Warnings []string  // per-source fetch errors
}

// TotalNew returns the number of new listings across all groups.
func (in Input) TotalNew() int {
	n := 0
	for _, g := range in.Groups {
		n += len(g.Listings)
	}
	return n
}

// Formatter writes a formatted digest to w.
type Formatter interface {
	Format(w io.Writer, input Input) error
}

// snippet truncates text for display. Text within the slack is kept
// whole.
func snippet(text string) string {
	if runeLen(text) <= snippetSlackRunes {
		return text
	}
	return firstNRunes(text, snippetMaxRunes) + "…"
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

func firstNRunes(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
