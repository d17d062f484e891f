package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// sourceListDoc is the YAML schema for an externally managed source list.
// The document is fetched once per run through the same normalization path as
// inline sources, so the pipeline never special-cases configuration origin.
type sourceListDoc struct {
	Sources []struct {
		Name                string  `yaml:"name"`
		Type                string  `yaml:"type"`
		URL                 string  `yaml:"url"`
		Category            string  `yaml:"category"`
		Weight              float64 `yaml:"weight"`
		MaxItems            int     `yaml:"max_items"`
		TimeoutSeconds      int     `yaml:"timeout_seconds"`
		RetryCount          int     `yaml:"retry_count"`
		RetryBackoffSeconds int     `yaml:"retry_backoff_seconds"`
	} `yaml:"sources"`
}

// LoadSourceList reads additional sources from the configured YAML document
// and merges them after the inline sources, preserving document order.
func (c *Config) LoadSourceList() ([]Source, error) {
	if c.Ingest.SourceListPath == "" {
		return c.Sources, nil
	}
	data, err := os.ReadFile(c.Ingest.SourceListPath)
	if err != nil {
		return nil, fmt.Errorf("read source list: %w", err)
	}
	var doc sourceListDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse source list: %w", err)
	}
	merged := append([]Source(nil), c.Sources...)
	names := make(map[string]struct{}, len(merged))
	for _, src := range merged {
		names[src.Name] = struct{}{}
	}
	for i, entry := range doc.Sources {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("source list entry %d: name must be set", i)
		}
		if _, dup := names[name]; dup {
			continue
		}
		names[name] = struct{}{}
		merged = append(merged, Source{
			Name:                name,
			Type:                entry.Type,
			URL:                 entry.URL,
			Category:            entry.Category,
			Weight:              entry.Weight,
			MaxItems:            entry.MaxItems,
			TimeoutSeconds:      entry.TimeoutSeconds,
			RetryCount:          entry.RetryCount,
			RetryBackoffSeconds: entry.RetryBackoffSeconds,
		})
	}
	snapshot := *c
	snapshot.Sources = merged
	snapshot.normalizeSources()
	if err := snapshot.validateSources(); err != nil {
		return nil, err
	}
	return snapshot.Sources, nil
}

// trendingTableDoc is the YAML schema for a versioned trending keyword table.
type trendingTableDoc struct {
	Versions []struct {
		Effective string             `yaml:"effective"`
		Keywords  map[string]float64 `yaml:"keywords"`
	} `yaml:"versions"`
}

// TrendingKeywords resolves the keyword boost table active at the given run
// start time. The table is immutable for the duration of a run; rotation is a
// new version selected here, never an in-place mutation.
func (c *Config) TrendingKeywords(at time.Time) (map[string]float64, error) {
	if c.Trending.TablePath == "" {
		return c.Trending.Keywords, nil
	}
	data, err := os.ReadFile(c.Trending.TablePath)
	if err != nil {
		return nil, fmt.Errorf("read trending table: %w", err)
	}
	var doc trendingTableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse trending table: %w", err)
	}

	type version struct {
		effective time.Time
		keywords  map[string]float64
	}
	versions := make([]version, 0, len(doc.Versions))
	for i, entry := range doc.Versions {
		effective, err := time.Parse("2006-01-02", strings.TrimSpace(entry.Effective))
		if err != nil {
			return nil, fmt.Errorf("trending table version %d: invalid effective date %q", i, entry.Effective)
		}
		versions = append(versions, version{effective: effective, keywords: entry.Keywords})
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].effective.Before(versions[j].effective) })

	selected := c.Trending.Keywords
	for _, v := range versions {
		if v.effective.After(at) {
			break
		}
		selected = v.keywords
	}

	normalized := make(map[string]float64, len(selected))
	for keyword, boost := range selected {
		key := strings.ToLower(strings.TrimSpace(keyword))
		if key == "" || boost <= 0 {
			continue
		}
		normalized[key] = boost
	}
	return normalized, nil
}
