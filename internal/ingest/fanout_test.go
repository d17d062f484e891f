package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"newsreel/internal/config"
	"newsreel/internal/services"
)

type scriptedAdapter struct {
	adapterType string
	fetch       func(ctx context.Context, src config.Source) ([]RawItem, error)
}

func (a scriptedAdapter) Type() string { return a.adapterType }

func (a scriptedAdapter) Fetch(ctx context.Context, src config.Source) ([]RawItem, error) {
	return a.fetch(ctx, src)
}

func TestFetchAllPreservesConfiguredOrder(t *testing.T) {
	registry := NewRegistry()
	registry.Register(scriptedAdapter{adapterType: "scripted", fetch: func(_ context.Context, src config.Source) ([]RawItem, error) {
		if src.Name == "slow" {
			time.Sleep(20 * time.Millisecond)
		}
		return []RawItem{{Title: src.Name}}, nil
	}})

	sources := []config.Source{
		{Name: "slow", Type: "scripted"},
		{Name: "fast", Type: "scripted"},
	}
	results := FetchAll(context.Background(), registry, sources, 2, nil)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Source.Name != "slow" || results[1].Source.Name != "fast" {
		t.Fatal("results must follow configuration order, not completion order")
	}
	if results[0].Items[0].Title != "slow" {
		t.Fatalf("unexpected items: %+v", results[0].Items)
	}
}

func TestFetchAllCapturesFailuresWithoutAborting(t *testing.T) {
	registry := NewRegistry()
	registry.Register(scriptedAdapter{adapterType: "scripted", fetch: func(_ context.Context, src config.Source) ([]RawItem, error) {
		if src.Name == "broken" {
			return nil, services.Wrap(services.ErrFetchTimeout, "fetch", src.Name, "deadline exceeded", nil)
		}
		return []RawItem{{Title: src.Name}}, nil
	}})

	sources := []config.Source{
		{Name: "broken", Type: "scripted"},
		{Name: "healthy", Type: "scripted"},
	}
	results := FetchAll(context.Background(), registry, sources, 2, nil)
	if !errors.Is(results[0].Err, services.ErrFetchTimeout) {
		t.Fatalf("expected tagged timeout for broken source, got %v", results[0].Err)
	}
	if results[1].Err != nil || len(results[1].Items) != 1 {
		t.Fatalf("healthy source must still return items: %+v", results[1])
	}
}

func TestFetchAllUnknownAdapterType(t *testing.T) {
	results := FetchAll(context.Background(), NewRegistry(), []config.Source{{Name: "x", Type: "telegraph"}}, 1, nil)
	if results[0].Err == nil {
		t.Fatal("expected error for unregistered adapter type")
	}
}

func TestFetchAllRespectsConcurrencyBound(t *testing.T) {
	var active, peak atomic.Int32
	registry := NewRegistry()
	registry.Register(scriptedAdapter{adapterType: "scripted", fetch: func(_ context.Context, _ config.Source) ([]RawItem, error) {
		current := active.Add(1)
		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return nil, nil
	}})

	sources := make([]config.Source, 6)
	for i := range sources {
		sources[i] = config.Source{Name: string(rune('a' + i)), Type: "scripted"}
	}
	FetchAll(context.Background(), registry, sources, 2, nil)
	if got := peak.Load(); got > 2 {
		t.Fatalf("concurrency bound exceeded: peak %d", got)
	}
}
