// Package source adapts configured listing pages and feeds into a
// uniform stream of candidate listings.
package source

import (
	"context"

	"github.com/ppiankov/rentwatch/internal/extract"
)

// Source yields candidate listings from one configured page or feed.
// Fetch failures are per-source: the caller records a warning and moves
// on to the next source.
type Source interface {
	// Name returns the configured source name.
	Name() string

	// Fetch retrieves the source and returns its candidate listings,
	// filtered and deduplicated within this fetch.
	Fetch(ctx context.Context) ([]extract.Listing, error)
}
