package normalize_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"newsreel/internal/config"
	"newsreel/internal/ingest"
	"newsreel/internal/normalize"
	"newsreel/internal/services"
)

func result(idx int, name string, weight float64, category string, items ...ingest.RawItem) ingest.Result {
	return ingest.Result{
		Index:  idx,
		Source: config.Source{Name: name, Weight: weight, Category: category},
		Items:  items,
	}
}

func TestRunKeepsHigherWeightOnCollision(t *testing.T) {
	published := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	results := []ingest.Result{
		result(0, "light", 1.0, "news",
			ingest.RawItem{Title: "Big Launch", URL: "https://example.com/launch?utm_source=a", PublishedAt: published}),
		result(1, "heavy", 2.0, "company",
			ingest.RawItem{Title: "Big Launch", URL: "https://example.com/launch", PublishedAt: published}),
	}

	records, diag, err := normalize.Run(results)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(records))
	}
	if records[0].SourceName != "heavy" {
		t.Fatalf("expected higher weight to survive, got %q", records[0].SourceName)
	}
	if diag.DedupRemoved != 1 {
		t.Fatalf("expected 1 removal recorded, got %d", diag.DedupRemoved)
	}
}

func TestRunCollisionTieBreaks(t *testing.T) {
	early := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	late := early.Add(6 * time.Hour)

	t.Run("earliest published wins at equal weight", func(t *testing.T) {
		results := []ingest.Result{
			result(0, "a", 1.0, "news", ingest.RawItem{Title: "Same", URL: "https://example.com/x", PublishedAt: late}),
			result(1, "b", 1.0, "news", ingest.RawItem{Title: "Same", URL: "https://example.com/x", PublishedAt: early}),
		}
		records, _, err := normalize.Run(results)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if records[0].SourceName != "b" {
			t.Fatalf("expected earliest published to survive, got %q", records[0].SourceName)
		}
	})

	t.Run("first-seen order wins at full tie", func(t *testing.T) {
		results := []ingest.Result{
			result(0, "a", 1.0, "news", ingest.RawItem{Title: "Same", URL: "https://example.com/x", PublishedAt: early}),
			result(1, "b", 1.0, "news", ingest.RawItem{Title: "Same", URL: "https://example.com/x", PublishedAt: early}),
		}
		records, _, err := normalize.Run(results)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if records[0].SourceName != "a" {
			t.Fatalf("expected first-seen source to survive, got %q", records[0].SourceName)
		}
	})
}

func TestRunIsIdempotent(t *testing.T) {
	results := []ingest.Result{
		result(0, "a", 1.5, "news",
			ingest.RawItem{Title: "One", URL: "https://example.com/1"},
			ingest.RawItem{Title: "Two", URL: "https://example.com/2"}),
		result(1, "b", 1.0, "research",
			ingest.RawItem{Title: "One", URL: "https://example.com/1?utm_medium=feed"}),
	}
	first, _, err := normalize.Run(results)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	second, _, err := normalize.Run(results)
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("normalization must be deterministic across repeated runs")
	}
}

func TestRunProceedsWithPartialFailures(t *testing.T) {
	results := []ingest.Result{
		{Index: 0, Source: config.Source{Name: "down"}, Err: services.Wrap(services.ErrFetchTimeout, "fetch", "down", "", nil)},
		result(1, "up", 1.0, "news", ingest.RawItem{Title: "Alive", URL: "https://example.com/alive"}),
	}
	records, diag, err := normalize.Run(results)
	if err != nil {
		t.Fatalf("Run must absorb partial failures, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected records from surviving source, got %d", len(records))
	}
	if len(diag.FetchFailures) != 1 {
		t.Fatalf("expected 1 recorded failure, got %v", diag.FetchFailures)
	}
}

func TestRunEmptySourceSetsAreValid(t *testing.T) {
	records, _, err := normalize.Run([]ingest.Result{result(0, "quiet", 1.0, "news")})
	if err != nil {
		t.Fatalf("empty result sets must not error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestRunAllSourcesFailed(t *testing.T) {
	results := []ingest.Result{
		{Index: 0, Source: config.Source{Name: "a"}, Err: errors.New("boom")},
		{Index: 1, Source: config.Source{Name: "b"}, Err: errors.New("boom")},
	}
	_, _, err := normalize.Run(results)
	if !errors.Is(err, services.ErrAllSourcesFailed) {
		t.Fatalf("expected all-sources failure, got %v", err)
	}
}

func TestRunDropsItemsWithoutIdentity(t *testing.T) {
	records, _, err := normalize.Run([]ingest.Result{
		result(0, "a", 1.0, "news", ingest.RawItem{Summary: "no title or url"}),
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected identityless item dropped, got %d", len(records))
	}
}
