package ingest

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"newsreel/internal/config"
	"newsreel/internal/logging"
)

// Result holds the outcome of one adapter call. Index is the source's
// position in the configured order; "first seen" during deduplication resolves
// against that fixed order, not wall-clock completion order.
type Result struct {
	Index  int
	Source config.Source
	Items  []RawItem
	Err    error
}

// FetchAll runs every source adapter with the configured concurrency bound and
// blocks until all have returned or timed out. It always returns one Result
// per source, in configuration order; adapter failures are captured in the
// result slot rather than aborting the fan-out.
func FetchAll(ctx context.Context, registry *Registry, sources []config.Source, concurrency int, logger *slog.Logger) []Result {
	if logger == nil {
		logger = logging.NewNop()
	}
	results := make([]Result, len(sources))

	group, groupCtx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		group.SetLimit(concurrency)
	}
	for i, src := range sources {
		i, src := i, src
		results[i] = Result{Index: i, Source: src}
		group.Go(func() error {
			adapter, err := registry.Lookup(src.Type)
			if err != nil {
				results[i].Err = err
				return nil
			}
			items, err := adapter.Fetch(groupCtx, src)
			if err != nil {
				results[i].Err = err
				logger.Warn("source fetch failed",
					logging.String(logging.FieldSource, src.Name),
					logging.Error(err),
				)
				return nil
			}
			results[i].Items = items
			logger.Debug("source fetched",
				logging.String(logging.FieldSource, src.Name),
				logging.Int("items", len(items)),
			)
			return nil
		})
	}
	// The barrier: adapter goroutines never return errors, so Wait only
	// reflects group context cancellation.
	_ = group.Wait()
	return results
}
