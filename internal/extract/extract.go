// Package extract turns loosely structured listing-page markup into
// candidate rental listings: it classifies anchor URLs, pulls nearby
// text and images, parses numeric features out of free-form text, and
// evaluates user filter criteria.
package extract

// Listing is one candidate rental listing found on a page. It is keyed
// by its absolute URL; Image may be empty.
type Listing struct {
	URL   string
	Text  string
	Image string
}
