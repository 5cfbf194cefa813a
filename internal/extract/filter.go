package extract

import "strings"

// Criteria are the user's filter rules. Zero values mean "no
// constraint".
type Criteria struct {
	MustInclude []string // listing must contain at least one (any match)
	Exclude     []string // listing must contain none
	MinRooms    float64
	MinSize     int
	MaxPrice    int
}

// Filter evaluates listing text against Criteria. A numeric threshold
// only rejects when the corresponding feature could actually be
// extracted; an unextractable feature never causes rejection, so
// listings with unusual text formats are kept rather than lost.
type Filter struct {
	criteria Criteria
	features *FeatureExtractor
}

// NewFilter creates a filter over the given criteria and feature
// extractor.
func NewFilter(c Criteria, fx *FeatureExtractor) *Filter {
	return &Filter{criteria: c, features: fx}
}

// Match reports whether text passes every configured rule.
func (f *Filter) Match(text string) bool {
	if f == nil {
		return true
	}

	lower := strings.ToLower(text)

	if len(f.criteria.MustInclude) > 0 && !containsAny(lower, f.criteria.MustInclude) {
		return false
	}
	if len(f.criteria.Exclude) > 0 && containsAny(lower, f.criteria.Exclude) {
		return false
	}

	feats := f.features.Extract(text)

	if f.criteria.MinRooms > 0 && feats.HasRooms && feats.Rooms < f.criteria.MinRooms {
		return false
	}
	if f.criteria.MinSize > 0 && feats.HasSize && feats.Size < f.criteria.MinSize {
		return false
	}
	if f.criteria.MaxPrice > 0 && feats.HasPrice && feats.Price > f.criteria.MaxPrice {
		return false
	}

	return true
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
