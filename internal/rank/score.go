package rank

import (
	"strings"
	"time"

	"newsreel/internal/config"
	"newsreel/internal/story"
)

// Breakdown factor names. The values under these keys always sum to the score.
const (
	FactorFreshness = "freshness"
	FactorPriority  = "source_priority"
	FactorTrending  = "trending"
)

// freshnessFloor keeps stale-but-selected stories from zeroing out entirely;
// an undated story scores as middling rather than fresh.
const (
	freshnessFloor   = 0.0
	undatedFreshness = 0.4
)

// Scorer computes story scores from an immutable configuration snapshot taken
// at run start. Trending tables are never mutated in place; a rotation is a
// new Scorer.
type Scorer struct {
	weights  config.Scoring
	trending map[string]float64
	now      time.Time
}

// NewScorer builds a scorer for one run. now anchors freshness decay so
// repeated scoring within a run is deterministic.
func NewScorer(weights config.Scoring, trending map[string]float64, now time.Time) *Scorer {
	return &Scorer{weights: weights, trending: trending, now: now.UTC()}
}

// Score computes the weighted sum for one record.
func (s *Scorer) Score(record story.Record) story.Scored {
	freshness := s.weights.FreshnessWeight * s.freshness(record)
	priority := s.weights.PriorityWeight * record.SourceWeight
	boost := s.trendingBoost(record)
	trending := s.weights.TrendingWeight * boost

	scored := story.Scored{
		Record: record,
		Score:  freshness + priority + trending,
		Breakdown: map[string]float64{
			FactorFreshness: freshness,
			FactorPriority:  priority,
			FactorTrending:  trending,
		},
	}
	scored.TrendingBoost = boost
	return scored
}

// freshness decays linearly with age over the category's decay window.
// News burns out in days; research keeps value for weeks.
func (s *Scorer) freshness(record story.Record) float64 {
	if record.PublishedAt.IsZero() {
		return undatedFreshness
	}
	decayDays, ok := s.weights.DecayDays[string(record.Category)]
	if !ok || decayDays <= 0 {
		decayDays = 3
	}
	ageDays := s.now.Sub(record.PublishedAt.UTC()).Hours() / 24
	if ageDays < 0 {
		// Source-reported timestamps are unreliable; clamp future dates.
		ageDays = 0
	}
	value := 1.0 - ageDays/decayDays
	if value < freshnessFloor {
		return freshnessFloor
	}
	return value
}

// trendingBoost sums keyword contributions over a case-insensitive substring
// match of the normalized text. Each matched keyword contributes once per
// story; the total is capped by configuration.
func (s *Scorer) trendingBoost(record story.Record) float64 {
	if len(s.trending) == 0 {
		return 0
	}
	text := strings.ToLower(record.Title + " " + record.BodyExcerpt)
	total := 0.0
	for keyword, weight := range s.trending {
		if strings.Contains(text, keyword) {
			total += weight
		}
	}
	if limit := s.weights.TrendingBoostCap; limit > 0 && total > limit {
		total = limit
	}
	return total
}
