package ingest

import (
	"context"
	"time"

	"newsreel/internal/config"
)

// StaticAdapter serves inline items declared directly in configuration.
// Used for manually curated stories and as a deterministic fixture source.
type StaticAdapter struct{}

func (StaticAdapter) Type() string { return "static" }

func (StaticAdapter) Fetch(_ context.Context, src config.Source) ([]RawItem, error) {
	limit := src.MaxItems
	if limit <= 0 || limit > len(src.Items) {
		limit = len(src.Items)
	}
	items := make([]RawItem, 0, limit)
	for _, entry := range src.Items[:limit] {
		published := time.Time{}
		if entry.PublishedAt != "" {
			if parsed, err := time.Parse(time.RFC3339, entry.PublishedAt); err == nil {
				published = parsed.UTC()
			}
		}
		items = append(items, RawItem{
			Title:       entry.Title,
			URL:         entry.URL,
			Summary:     entry.Summary,
			PublishedAt: published,
		})
	}
	return items, nil
}
