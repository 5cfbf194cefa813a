package extract

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// cardSelector finds the nearest enclosing "card-like" ancestor of
	// a listing anchor.
	cardSelector = "article, li, div"

	maxCardTextRunes = 400
	minImageURLLen   = 20
)

// placeholderMarkers exclude image URLs that are obviously not listing
// photos. Substring match on the lowercased URL.
var placeholderMarkers = []string{
	"placeholder",
	"icon",
	"logo",
	"avatar",
	"data:image",
}

var backgroundImageRe = regexp.MustCompile(`url\(["']?([^"')]+)["']?\)`)

// Extractor walks a page's anchors and packages the ones that look like
// listings, deduplicated within the page.
type Extractor struct {
	classifier *Classifier
	filter     *Filter
}

// NewExtractor creates a page extractor over the given classifier and
// filter.
func NewExtractor(c *Classifier, f *Filter) *Extractor {
	return &Extractor{classifier: c, filter: f}
}

// ExtractPage parses markup and returns candidate listings in document
// order. pageURL is the page's own URL, used to resolve relative hrefs.
// Within-page duplicates are dropped; cross-run dedup is the seen
// store's job.
func (e *Extractor) ExtractPage(markup io.Reader, pageURL *url.URL) ([]Listing, error) {
	if e == nil {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(markup)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	emitted := make(map[string]bool)
	var listings []Listing

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs, ok := normalizeHref(pageURL, href)
		if !ok {
			return
		}
		key := abs.String()
		if emitted[key] {
			return
		}
		if !e.classifier.IsListing(abs) {
			return
		}

		card := cardOf(a)
		text := cardText(card)
		if !e.filter.Match(text) {
			return
		}

		emitted[key] = true
		listings = append(listings, Listing{
			URL:   key,
			Text:  text,
			Image: cardImage(card, pageURL),
		})
	})

	return listings, nil
}

// normalizeHref resolves href against base. Script pseudo-protocols and
// pure fragment anchors have no destination and are rejected.
func normalizeHref(base *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "#") {
		return nil, false
	}
	abs, err := base.Parse(href)
	if err != nil {
		return nil, false
	}
	return abs, true
}

// cardOf returns the nearest card-like ancestor of the anchor, or the
// anchor itself when the page has no such structure.
func cardOf(a *goquery.Selection) *goquery.Selection {
	card := a.Closest(cardSelector)
	if card.Length() == 0 {
		return a
	}
	return card
}

// cardText extracts the card's visible text, whitespace-normalized and
// capped so a malformed page cannot blow up memory.
func cardText(card *goquery.Selection) string {
	text := strings.Join(strings.Fields(card.Text()), " ")
	return firstNRunes(text, maxCardTextRunes)
}

// cardImage finds the best image URL inside the card. Lazy-load
// attributes are preferred over src because eager src often holds a
// low-fidelity placeholder. Falls back to inline-style background
// images. Returns "" when no image qualifies.
func cardImage(card *goquery.Selection, pageURL *url.URL) string {
	var found string

	card.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := firstAttr(img, "data-src", "data-lazy-src", "src")
		if src == "" {
			return true
		}
		src = normalizeImageURL(src, pageURL)
		if looksLikePlaceholder(src) || len(src) <= minImageURLLen {
			return true
		}
		found = src
		return false
	})
	if found != "" {
		return found
	}

	card.Find("[style]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		style, _ := el.Attr("style")
		m := backgroundImageRe.FindStringSubmatch(style)
		if m == nil {
			return true
		}
		src := normalizeImageURL(m[1], pageURL)
		if looksLikePlaceholder(src) {
			return true
		}
		found = src
		return false
	})

	return found
}

func firstAttr(s *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := s.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// normalizeImageURL makes protocol-relative and root-relative image
// URLs absolute. Anything else is returned as-is.
func normalizeImageURL(src string, pageURL *url.URL) string {
	switch {
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		abs, err := pageURL.Parse(src)
		if err != nil {
			return src
		}
		return abs.String()
	default:
		return src
	}
}

func looksLikePlaceholder(src string) bool {
	lower := strings.ToLower(src)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
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
