package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ppiankov/rentwatch/internal/extract"
	"github.com/ppiankov/rentwatch/internal/fetch"
)

// HTMLSource fetches one listing page and extracts candidate listings
// from its anchors.
type HTMLSource struct {
	name      string
	pageURL   *url.URL
	client    *fetch.Client
	extractor *extract.Extractor
}

// NewHTML creates an HTML page source.
func NewHTML(name, rawURL string, client *fetch.Client, ex *extract.Extractor) (*HTMLSource, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("html: source name is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("html: parse url %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("html: url %q is not absolute", rawURL)
	}
	if client == nil {
		return nil, errors.New("html: fetch client is required")
	}
	if ex == nil {
		return nil, errors.New("html: extractor is required")
	}
	return &HTMLSource{name: name, pageURL: u, client: client, extractor: ex}, nil
}

func (s *HTMLSource) Name() string {
	return s.name
}

func (s *HTMLSource) Fetch(ctx context.Context) ([]extract.Listing, error) {
	body, err := s.client.Get(ctx, s.pageURL.String())
	if err != nil {
		return nil, err
	}
	listings, err := s.extractor.ExtractPage(bytes.NewReader(body), s.pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", s.pageURL, err)
	}
	return listings, nil
}
