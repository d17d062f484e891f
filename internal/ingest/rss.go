package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/mmcdole/gofeed"

	"newsreel/internal/config"
	"newsreel/internal/services"
)

// RSSAdapter fetches stories from RSS and Atom feeds.
type RSSAdapter struct {
	parser  *gofeed.Parser
	sleeper func(time.Duration)
}

// RSSOption customizes the adapter.
type RSSOption func(*RSSAdapter)

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) RSSOption {
	return func(a *RSSAdapter) {
		if sleeper != nil {
			a.sleeper = sleeper
		}
	}
}

// NewRSSAdapter constructs the feed adapter.
func NewRSSAdapter(opts ...RSSOption) *RSSAdapter {
	adapter := &RSSAdapter{
		parser:  gofeed.NewParser(),
		sleeper: func(d time.Duration) { time.Sleep(d) },
	}
	adapter.parser.UserAgent = "newsreel/0.1"
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter
}

func (a *RSSAdapter) Type() string { return "rss" }

// Fetch pulls the feed with the source's timeout and retry budget. Timeouts
// and transport errors come back tagged, never raised unchecked, so the
// caller can continue with partial results from other sources.
func (a *RSSAdapter) Fetch(ctx context.Context, src config.Source) ([]RawItem, error) {
	var lastErr error
	backoff := time.Duration(src.RetryBackoffSeconds) * time.Second
	attempts := src.RetryCount + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, services.Wrap(services.ErrFetchTimeout, "fetch", src.Name, "canceled while retrying", ctx.Err())
			default:
			}
			a.sleeper(backoff)
			backoff *= 2
		}

		items, err := a.fetchOnce(ctx, src)
		if err == nil {
			return items, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) {
			break
		}
	}

	marker := services.ErrFetch
	if errors.Is(lastErr, context.DeadlineExceeded) {
		marker = services.ErrFetchTimeout
	}
	return nil, services.Wrap(marker, "fetch", src.Name, "feed unavailable", lastErr)
}

func (a *RSSAdapter) fetchOnce(ctx context.Context, src config.Source) ([]RawItem, error) {
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(src.TimeoutSeconds)*time.Second)
	defer cancel()

	feed, err := a.parser.ParseURLWithContext(src.URL, callCtx)
	if err != nil {
		if callCtx.Err() != nil {
			return nil, callCtx.Err()
		}
		return nil, err
	}

	limit := src.MaxItems
	if limit <= 0 || limit > len(feed.Items) {
		limit = len(feed.Items)
	}
	items := make([]RawItem, 0, limit)
	for _, entry := range feed.Items[:limit] {
		published := time.Time{}
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}
		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}
		items = append(items, RawItem{
			Title:       CleanHTML(entry.Title),
			URL:         entry.Link,
			Summary:     CleanHTML(summary),
			PublishedAt: published,
			GUID:        entry.GUID,
		})
	}
	return items, nil
}
