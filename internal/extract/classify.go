package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Rule is one listing-URL shape matcher, applied to the path?query part
// of a candidate URL. Rules are data, not branches: new source shapes
// are added to the list without touching classifier logic.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// defaultRules covers the listing-URL shapes sampled from the supported
// boards: numeric item IDs in a query parameter or under known path
// prefixes.
var defaultRules = []Rule{
	{Name: "item-id-param", Pattern: regexp.MustCompile(`itemId=\d+`)},
	{Name: "item-path", Pattern: regexp.MustCompile(`/item/\d+`)},
	{Name: "rent-path", Pattern: regexp.MustCompile(`/rent/\d+`)},
	{Name: "realestate-item", Pattern: regexp.MustCompile(`/realestate/item`)},
	{Name: "realestate-rent", Pattern: regexp.MustCompile(`/realestate/rent/.+/\d+`)},
	{Name: "nadlan", Pattern: regexp.MustCompile(`/nadlan/.+/\d+`)},
}

// Classifier decides whether a URL plausibly points to an individual
// listing page. It is a pure function of the URL.
type Classifier struct {
	domainHint string
	rules      []Rule
}

// NewClassifier builds a classifier. domainHint, when non-empty, is a
// substring the URL's host must contain. extra holds additional
// source-specific URL patterns from config.
func NewClassifier(domainHint string, extra []string) (*Classifier, error) {
	rules := make([]Rule, 0, len(defaultRules)+len(extra))
	rules = append(rules, defaultRules...)
	for _, pat := range extra {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("compile listing pattern %q: %w", pat, err)
		}
		rules = append(rules, Rule{Name: pat, Pattern: re})
	}
	return &Classifier{domainHint: domainHint, rules: rules}, nil
}

// IsListing reports whether u looks like an individual listing page.
// A host that does not contain the domain hint is rejected outright to
// avoid cross-site false positives from outbound links.
func (c *Classifier) IsListing(u *url.URL) bool {
	if c == nil || u == nil {
		return false
	}
	if c.domainHint != "" && !strings.Contains(u.Host, c.domainHint) {
		return false
	}

	pathQuery := u.Path + "?" + u.RawQuery
	for _, r := range c.rules {
		if r.Pattern.MatchString(pathQuery) {
			return true
		}
	}
	return false
}
