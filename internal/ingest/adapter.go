package ingest

import (
	"context"
	"fmt"
	"time"

	"newsreel/internal/config"
)

// RawItem is one candidate story as fetched from a source, before
// normalization and deduplication.
type RawItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
	GUID        string    `json:"guid"`
}

// Adapter fetches raw items from one external source. Implementations are
// stateless per call and must bound their work by the source's timeout.
type Adapter interface {
	Type() string
	Fetch(ctx context.Context, src config.Source) ([]RawItem, error)
}

// Registry maps source types to adapters.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry constructs a registry with the built-in adapters registered.
func NewRegistry() *Registry {
	reg := &Registry{adapters: make(map[string]Adapter)}
	reg.Register(NewRSSAdapter())
	reg.Register(StaticAdapter{})
	return reg
}

// Register adds an adapter, replacing any previous adapter for its type.
func (r *Registry) Register(adapter Adapter) {
	r.adapters[adapter.Type()] = adapter
}

// Lookup resolves the adapter for a source type.
func (r *Registry) Lookup(sourceType string) (Adapter, error) {
	adapter, ok := r.adapters[sourceType]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for source type %q", sourceType)
	}
	return adapter, nil
}
