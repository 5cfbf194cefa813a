package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Patterns holds the locale-specific marker tokens used to pull numeric
// features out of listing text. The defaults target Hebrew listing
// boards; other locales can supply their own markers via config.
type Patterns struct {
	Currency  string   // currency symbol, e.g. "₪"
	RoomsWord string   // word that follows a room count, e.g. "חדר"
	AreaWords []string // words that follow a size, e.g. מ"ר
}

// DefaultPatterns returns the Hebrew rental-board patterns.
func DefaultPatterns() Patterns {
	return Patterns{
		Currency:  "₪",
		RoomsWord: "חדר",
		AreaWords: []string{`מ"ר`, "מטר"},
	}
}

// Features are the numeric attributes extracted from listing text. A
// feature that could not be extracted has its Has flag unset; callers
// must treat that as unknown, never as zero.
type Features struct {
	Price    int
	HasPrice bool
	Rooms    float64
	HasRooms bool
	Size     int
	HasSize  bool
}

// FeatureExtractor extracts price, room count and size from free-form
// text using compiled locale patterns.
type FeatureExtractor struct {
	price *regexp.Regexp
	rooms *regexp.Regexp
	size  *regexp.Regexp
}

// NewFeatureExtractor compiles the given patterns. Missing fields fall
// back to the defaults.
func NewFeatureExtractor(p Patterns) (*FeatureExtractor, error) {
	defaults := DefaultPatterns()
	if p.Currency == "" {
		p.Currency = defaults.Currency
	}
	if p.RoomsWord == "" {
		p.RoomsWord = defaults.RoomsWord
	}
	if len(p.AreaWords) == 0 {
		p.AreaWords = defaults.AreaWords
	}

	cur := regexp.QuoteMeta(p.Currency)
	price, err := regexp.Compile(`(?:` + cur + `\s*(\d{3,6})|(\d{3,6})\s*` + cur + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile price pattern: %w", err)
	}

	rooms, err := regexp.Compile(`(\d+(?:\.\d)?)\s*` + regexp.QuoteMeta(p.RoomsWord))
	if err != nil {
		return nil, fmt.Errorf("compile rooms pattern: %w", err)
	}

	areaAlts := make([]string, len(p.AreaWords))
	for i, w := range p.AreaWords {
		if strings.TrimSpace(w) == "" {
			return nil, errors.New("area word must not be empty")
		}
		areaAlts[i] = regexp.QuoteMeta(w)
	}
	size, err := regexp.Compile(`(\d{2,4})\s*(?:` + strings.Join(areaAlts, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile size pattern: %w", err)
	}

	return &FeatureExtractor{price: price, rooms: rooms, size: size}, nil
}

// Extract pulls at most one of each feature out of text. Malformed or
// missing numerics never fail; the feature is simply absent.
func (fx *FeatureExtractor) Extract(text string) Features {
	var f Features
	if fx == nil || text == "" {
		return f
	}

	// Thousands separators would split the numeric token.
	plain := strings.ReplaceAll(text, ",", "")

	if m := fx.price.FindStringSubmatch(plain); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		if v, err := strconv.Atoi(digits); err == nil {
			f.Price = v
			f.HasPrice = true
		}
	}

	if m := fx.rooms.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			f.Rooms = v
			f.HasRooms = true
		}
	}

	if m := fx.size.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			f.Size = v
			f.HasSize = true
		}
	}

	return f
}
