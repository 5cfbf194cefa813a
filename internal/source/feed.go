package source

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/rentwatch/internal/extract"
	"github.com/ppiankov/rentwatch/internal/fetch"
)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// FeedSource fetches an RSS/Atom feed (listing boards expose these for
// saved searches) and runs each item through the same classifier and
// filter as page anchors, so dedup semantics stay uniform.
type FeedSource struct {
	name       string
	feedURL    string
	client     *fetch.Client
	classifier *extract.Classifier
	filter     *extract.Filter
}

// NewFeed creates a feed source.
func NewFeed(name, feedURL string, client *fetch.Client, c *extract.Classifier, f *extract.Filter) (*FeedSource, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("feed: source name is required")
	}
	if strings.TrimSpace(feedURL) == "" {
		return nil, errors.New("feed: url is required")
	}
	if client == nil {
		return nil, errors.New("feed: fetch client is required")
	}
	return &FeedSource{name: name, feedURL: feedURL, client: client, classifier: c, filter: f}, nil
}

func (s *FeedSource) Name() string {
	return s.name
}

func (s *FeedSource) Fetch(ctx context.Context) ([]extract.Listing, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	fp := gofeed.NewParser()
	fp.Client = s.client.HTTPClient()

	feed, err := fp.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", s.feedURL, err)
	}

	emitted := make(map[string]bool)
	var listings []extract.Listing

	for _, item := range feed.Items {
		u, err := url.Parse(strings.TrimSpace(item.Link))
		if err != nil || u.Scheme == "" || u.Host == "" {
			continue
		}
		key := u.String()
		if emitted[key] {
			continue
		}
		if !s.classifier.IsListing(u) {
			continue
		}

		text := itemText(item)
		if !s.filter.Match(text) {
			continue
		}

		emitted[key] = true
		listings = append(listings, extract.Listing{
			URL:   key,
			Text:  text,
			Image: itemImage(item),
		})
	}

	return listings, nil
}

func itemText(item *gofeed.Item) string {
	raw := item.Content
	if raw == "" {
		raw = item.Description
	}
	text := stripHTML(raw)
	if item.Title != "" && !strings.Contains(text, item.Title) {
		text = strings.TrimSpace(item.Title + " " + text)
	}
	return text
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
