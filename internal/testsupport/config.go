// Package testsupport provides shared fixtures for package tests: a
// temp-dir backed configuration builder, a checkpoint store opener, and
// a canned stub generator.
package testsupport

import (
	"path/filepath"
	"testing"

	"newsreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test and thresholds loose enough that a small fixture draft validates
// clean. Tests tighten individual thresholds through options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.ArtifactDir = filepath.Join(base, "artifacts")
	cfg.Paths.ReviewDir = filepath.Join(base, "review")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	cfg.Validation = config.Validation{
		MinWords:        10,
		MaxWords:        10000,
		TargetWordsLow:  10,
		TargetWordsHigh: 10000,
	}
	cfg.Regeneration.MaxAttempts = 3
	cfg.Notifications.NtfyTopic = ""
	cfg.Generation.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSources replaces the inline source list.
func WithSources(sources ...config.Source) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sources = sources
	}
}

// WithValidation replaces the validation thresholds.
func WithValidation(v config.Validation) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Validation = v
	}
}

// WithMaxAttempts sets the regeneration budget.
func WithMaxAttempts(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Regeneration.MaxAttempts = n
	}
}

// StaticSource builds an inline static source from raw items.
func StaticSource(name string, weight float64, items ...config.StaticItem) config.Source {
	return config.Source{
		Name:     name,
		Type:     "static",
		Category: "news",
		Weight:   weight,
		MaxItems: len(items),
		Items:    items,
	}
}
