package rank

import (
	"sort"

	"newsreel/internal/story"
)

// Select scores every record and returns at most topK stories in descending
// score order. Ties break by published_at descending, then id ascending, so
// the selection is reproducible with no dependency on map iteration order.
// Fewer than topK records is not an error; all of them come back.
func Select(scorer *Scorer, records []story.Record, topK int) []story.Scored {
	scored := make([]story.Scored, 0, len(records))
	for _, record := range records {
		scored = append(scored, scorer.Score(record))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].PublishedAt.Equal(scored[j].PublishedAt) {
			return scored[i].PublishedAt.After(scored[j].PublishedAt)
		}
		return scored[i].ID < scored[j].ID
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}
