package ingest

import (
	"context"
	"testing"

	"newsreel/internal/config"
)

func TestStaticAdapterServesInlineItems(t *testing.T) {
	src := config.Source{
		Name:     "curated",
		Type:     "static",
		MaxItems: 2,
		Items: []config.StaticItem{
			{Title: "One", URL: "https://example.com/1", PublishedAt: "2026-08-24T09:00:00Z"},
			{Title: "Two", URL: "https://example.com/2", PublishedAt: "not-a-time"},
			{Title: "Three", URL: "https://example.com/3"},
		},
	}
	items, err := StaticAdapter{}.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected max_items cap, got %d", len(items))
	}
	if items[0].PublishedAt.IsZero() {
		t.Fatal("expected parsed RFC3339 timestamp")
	}
	if !items[1].PublishedAt.IsZero() {
		t.Fatal("unparseable timestamp must collapse to zero time")
	}
}
