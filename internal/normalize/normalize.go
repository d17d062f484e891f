package normalize

import (
	"fmt"

	"newsreel/internal/ingest"
	"newsreel/internal/services"
	"newsreel/internal/story"
)

// Diagnostics summarizes what deduplication did to a batch.
type Diagnostics struct {
	FetchFailures []string `json:"fetch_failures"`
	ItemsFetched  int      `json:"items_fetched"`
	DedupRemoved  int      `json:"dedup_removed"`
}

// Run canonicalizes the fan-out results into story records and dedupes them.
// Adapter failures are absorbed here: the batch proceeds with records from the
// surviving sources, and the failures land in diagnostics. The only fatal case
// is every adapter failing.
func Run(results []ingest.Result) ([]story.Record, Diagnostics, error) {
	diag := Diagnostics{}
	failures := 0
	records := make([]story.Record, 0, 32)

	for _, result := range results {
		if result.Err != nil {
			failures++
			diag.FetchFailures = append(diag.FetchFailures,
				fmt.Sprintf("%s: %v", result.Source.Name, result.Err))
			continue
		}
		for _, item := range result.Items {
			record, ok := toRecord(result, item)
			if !ok {
				continue
			}
			records = append(records, record)
		}
	}
	diag.ItemsFetched = len(records)

	if len(results) > 0 && failures == len(results) {
		return nil, diag, services.Wrap(services.ErrAllSourcesFailed, "normalize", "merge",
			fmt.Sprintf("%d sources, %d failures", len(results), failures), nil)
	}

	deduped := dedupe(records)
	diag.DedupRemoved = len(records) - len(deduped)
	return deduped, diag, nil
}

func toRecord(result ingest.Result, item ingest.RawItem) (story.Record, bool) {
	title := story.NormalizeText(item.Title)
	url := story.CanonicalURL(item.URL)
	if title == "" && url == "" {
		return story.Record{}, false
	}
	return story.Record{
		ID:           story.Fingerprint(item.URL, item.Title),
		Title:        title,
		BodyExcerpt:  story.NormalizeText(item.Summary),
		URL:          url,
		SourceName:   result.Source.Name,
		SourceWeight: result.Source.Weight,
		SourceOrder:  result.Index,
		PublishedAt:  item.PublishedAt,
		Category:     story.ParseCategory(result.Source.Category),
		RawRef:       item.GUID,
	}, true
}

// dedupe keeps one record per fingerprint. On collision the survivor is the
// record with the higher source weight, tie-broken by earliest published_at,
// then by first-seen adapter order, so the merged set is deterministic
// regardless of adapter completion order.
func dedupe(records []story.Record) []story.Record {
	survivors := make(map[string]story.Record, len(records))
	order := make([]string, 0, len(records))

	for _, record := range records {
		current, exists := survivors[record.ID]
		if !exists {
			survivors[record.ID] = record
			order = append(order, record.ID)
			continue
		}
		if wins(record, current) {
			survivors[record.ID] = record
		}
	}

	result := make([]story.Record, 0, len(order))
	for _, id := range order {
		result = append(result, survivors[id])
	}
	return result
}

func wins(candidate, incumbent story.Record) bool {
	if candidate.SourceWeight != incumbent.SourceWeight {
		return candidate.SourceWeight > incumbent.SourceWeight
	}
	cZero, iZero := candidate.PublishedAt.IsZero(), incumbent.PublishedAt.IsZero()
	switch {
	case cZero && !iZero:
		return false
	case !cZero && iZero:
		return true
	case !cZero && !iZero && !candidate.PublishedAt.Equal(incumbent.PublishedAt):
		return candidate.PublishedAt.Before(incumbent.PublishedAt)
	}
	return candidate.SourceOrder < incumbent.SourceOrder
}
