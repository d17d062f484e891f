package rank_test

import (
	"math"
	"reflect"
	"testing"
	"time"

	"newsreel/internal/config"
	"newsreel/internal/rank"
	"newsreel/internal/story"
)

var now = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func weights() config.Scoring {
	return config.Scoring{
		TopK:             5,
		FreshnessWeight:  0.5,
		PriorityWeight:   0.3,
		TrendingWeight:   0.2,
		TrendingBoostCap: 1.0,
		DecayDays: map[string]float64{
			"news":     3,
			"research": 21,
		},
	}
}

func record(id, title string, category story.Category, weight float64, age time.Duration) story.Record {
	return story.Record{
		ID:           id,
		Title:        title,
		Category:     category,
		SourceWeight: weight,
		PublishedAt:  now.Add(-age),
	}
}

func TestBreakdownSumsToScore(t *testing.T) {
	scorer := rank.NewScorer(weights(), map[string]float64{"quantum": 0.5}, now)
	scored := scorer.Score(record("a", "Quantum chip breakthrough", story.CategoryNews, 1.2, 12*time.Hour))
	if diff := math.Abs(scored.BreakdownSum() - scored.Score); diff > 1e-9 {
		t.Fatalf("breakdown sum %v != score %v", scored.BreakdownSum(), scored.Score)
	}
	if len(scored.Breakdown) != 3 {
		t.Fatalf("expected 3 factors, got %v", scored.Breakdown)
	}
}

func TestFreshnessDecaysByCategory(t *testing.T) {
	scorer := rank.NewScorer(weights(), nil, now)
	age := 5 * 24 * time.Hour
	news := scorer.Score(record("n", "stale news", story.CategoryNews, 1.0, age))
	research := scorer.Score(record("r", "stale paper", story.CategoryResearch, 1.0, age))
	if news.Breakdown[rank.FactorFreshness] >= research.Breakdown[rank.FactorFreshness] {
		t.Fatalf("news must decay faster than research: news=%v research=%v",
			news.Breakdown[rank.FactorFreshness], research.Breakdown[rank.FactorFreshness])
	}
	if news.Breakdown[rank.FactorFreshness] != 0 {
		t.Fatalf("5-day-old news past its 3-day window must score zero freshness, got %v",
			news.Breakdown[rank.FactorFreshness])
	}
}

func TestFutureTimestampsClampToNow(t *testing.T) {
	scorer := rank.NewScorer(weights(), nil, now)
	future := scorer.Score(record("f", "from tomorrow", story.CategoryNews, 1.0, -24*time.Hour))
	fresh := scorer.Score(record("g", "from now", story.CategoryNews, 1.0, 0))
	if future.Breakdown[rank.FactorFreshness] != fresh.Breakdown[rank.FactorFreshness] {
		t.Fatal("future-dated stories must not outrank current ones")
	}
}

func TestTrendingBoostMatchesOncePerKeywordAndCaps(t *testing.T) {
	trending := map[string]float64{"agentic": 0.6, "robotics": 0.7}
	scorer := rank.NewScorer(weights(), trending, now)

	scored := scorer.Score(story.Record{
		ID:          "t",
		Title:       "Agentic agentic AGENTIC robotics update",
		Category:    story.CategoryNews,
		PublishedAt: now,
	})
	// 0.6 + 0.7 exceeds the 1.0 cap; repeats of "agentic" count once.
	if scored.TrendingBoost != 1.0 {
		t.Fatalf("expected capped boost 1.0, got %v", scored.TrendingBoost)
	}
	want := weights().TrendingWeight * 1.0
	if math.Abs(scored.Breakdown[rank.FactorTrending]-want) > 1e-9 {
		t.Fatalf("trending contribution = %v, want %v", scored.Breakdown[rank.FactorTrending], want)
	}
}

func TestSelectDeterministicOrdering(t *testing.T) {
	scorer := rank.NewScorer(weights(), nil, now)
	records := []story.Record{
		record("b", "tied later", story.CategoryNews, 1.0, time.Hour),
		record("c", "tied earlier", story.CategoryNews, 1.0, 2*time.Hour),
		record("a", "tied later twin", story.CategoryNews, 1.0, time.Hour),
	}

	first := rank.Select(scorer, records, 5)
	for i := 0; i < 10; i++ {
		again := rank.Select(scorer, records, 5)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("selection order must be stable across runs")
		}
	}
	// Equal scores: later published first, then id ascending.
	if first[0].ID != "a" || first[1].ID != "b" || first[2].ID != "c" {
		t.Fatalf("unexpected tie-break order: %s %s %s", first[0].ID, first[1].ID, first[2].ID)
	}
	if first[0].Rank != 1 || first[2].Rank != 3 {
		t.Fatalf("ranks not assigned: %+v", first)
	}
}

func TestSelectHandlesInsufficientInput(t *testing.T) {
	scorer := rank.NewScorer(weights(), nil, now)
	records := []story.Record{record("only", "single", story.CategoryNews, 1.0, time.Hour)}
	selected := rank.Select(scorer, records, 5)
	if len(selected) != 1 {
		t.Fatalf("expected all records when fewer than top_k, got %d", len(selected))
	}
	if got := rank.Select(scorer, nil, 5); len(got) != 0 {
		t.Fatalf("empty input must select nothing, got %d", len(got))
	}
}

func TestSelectTruncatesToTopK(t *testing.T) {
	scorer := rank.NewScorer(weights(), nil, now)
	records := make([]story.Record, 7)
	for i := range records {
		records[i] = record(string(rune('a'+i)), "story", story.CategoryNews, float64(i), time.Hour)
	}
	selected := rank.Select(scorer, records, 5)
	if len(selected) != 5 {
		t.Fatalf("expected top 5, got %d", len(selected))
	}
	if selected[0].SourceWeight != 6 {
		t.Fatal("highest weighted story must rank first")
	}
}
