package story

import (
	"strings"
	"time"
)

// Category classifies a story's origin for scoring purposes.
type Category string

const (
	CategoryNews     Category = "news"
	CategoryResearch Category = "research"
	CategoryCompany  Category = "company"
	CategoryTrending Category = "trending"
)

var categorySet = map[Category]struct{}{
	CategoryNews:     {},
	CategoryResearch: {},
	CategoryCompany:  {},
	CategoryTrending: {},
}

// ParseCategory converts a string into a known Category.
// Unknown values fall back to news, the most aggressive decay class.
func ParseCategory(value string) Category {
	normalized := Category(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := categorySet[normalized]; ok {
		return normalized
	}
	return CategoryNews
}

// Record is a normalized candidate story. The ID is a content fingerprint
// stable across re-fetches; two records with the same fingerprint never both
// survive deduplication.
type Record struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	BodyExcerpt   string    `json:"body_excerpt"`
	URL           string    `json:"url"`
	SourceName    string    `json:"source_name"`
	SourceWeight  float64   `json:"source_weight"`
	SourceOrder   int       `json:"source_order"`
	PublishedAt   time.Time `json:"published_at"`
	Category      Category  `json:"category"`
	TrendingBoost float64   `json:"trending_boost"`
	RawRef        string    `json:"raw_ref"`
}

// Scored is a Record plus its derived score and per-factor breakdown.
// The breakdown values sum to Score; it is kept for explainability and tests.
type Scored struct {
	Record
	Score     float64            `json:"score"`
	Rank      int                `json:"rank"`
	Breakdown map[string]float64 `json:"score_breakdown"`
}

// BreakdownSum returns the sum of all breakdown contributions.
func (s Scored) BreakdownSum() float64 {
	total := 0.0
	for _, v := range s.Breakdown {
		total += v
	}
	return total
}
