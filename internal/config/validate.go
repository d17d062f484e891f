package config

import (
	"errors"
	"fmt"

	"newsreel/internal/services"
)

var knownSourceTypes = map[string]struct{}{
	"rss":    {},
	"static": {},
}

var knownAdjustments = map[string]struct{}{
	"relax_tone":      {},
	"expand_segments": {},
	"trim_segments":   {},
	"none":            {},
}

// Validate ensures the configuration is usable. It runs before any stage
// executes; a failure here must leave no side effects. Failures carry the
// configuration marker so callers classify them as fatal.
func (c *Config) Validate() error {
	checks := []func() error{
		c.validateSources,
		c.validateScoring,
		c.validateValidation,
		c.validateRegeneration,
		c.validateGeneration,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return services.Wrap(services.ErrConfiguration, "", "config", "", err)
		}
	}
	return nil
}

func (c *Config) validateSources() error {
	if len(c.Sources) == 0 && c.Ingest.SourceListPath == "" {
		return errors.New("at least one source or ingest.source_list_path must be configured")
	}
	seen := make(map[string]struct{}, len(c.Sources))
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d]: name must be set", i)
		}
		if _, dup := seen[src.Name]; dup {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, src.Name)
		}
		seen[src.Name] = struct{}{}
		if _, ok := knownSourceTypes[src.Type]; !ok {
			return fmt.Errorf("sources[%d]: unknown type %q", i, src.Type)
		}
		if src.Type == "rss" && src.URL == "" {
			return fmt.Errorf("sources[%d]: rss source requires url", i)
		}
		if src.Type == "static" && len(src.Items) == 0 {
			return fmt.Errorf("sources[%d]: static source requires items", i)
		}
	}
	return nil
}

func (c *Config) validateScoring() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"scoring.freshness_weight", c.Scoring.FreshnessWeight},
		{"scoring.source_priority_weight", c.Scoring.PriorityWeight},
		{"scoring.trending_weight", c.Scoring.TrendingWeight},
	}
	total := 0.0
	for _, w := range weights {
		if w.value < 0 {
			return fmt.Errorf("%s must not be negative", w.name)
		}
		total += w.value
	}
	if total <= 0 {
		return errors.New("scoring weights must not all be zero")
	}
	for category, days := range c.Scoring.DecayDays {
		if days <= 0 {
			return fmt.Errorf("scoring.decay_days[%s] must be positive", category)
		}
	}
	return nil
}

func (c *Config) validateValidation() error {
	v := c.Validation
	if v.MinWords <= 0 || v.MaxWords <= v.MinWords {
		return errors.New("validation word bounds require 0 < min_words < max_words")
	}
	if v.TargetWordsLow < v.MinWords || v.TargetWordsHigh > v.MaxWords || v.TargetWordsLow >= v.TargetWordsHigh {
		return errors.New("validation target word range must sit inside the hard bounds")
	}
	if v.ActiveVoiceMin < 0 || v.ActiveVoiceMin > 1 || v.ActiveVoiceGoal < v.ActiveVoiceMin || v.ActiveVoiceGoal > 1 {
		return errors.New("validation active voice thresholds require 0 <= min <= goal <= 1")
	}
	if v.WordsPerSecond <= 0 {
		return errors.New("validation.words_per_second must be positive")
	}
	return nil
}

func (c *Config) validateRegeneration() error {
	if c.Regeneration.MaxAttempts < 1 {
		return errors.New("regeneration.max_attempts must be at least 1")
	}
	for rule, adjustment := range c.Regeneration.Adjustments {
		if _, ok := knownAdjustments[adjustment]; !ok {
			return fmt.Errorf("regeneration.adjustments[%s]: unknown adjustment %q", rule, adjustment)
		}
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if !c.Generation.Enabled {
		return nil
	}
	if c.Generation.APIKey == "" {
		return errors.New("generation.api_key is required when generation is enabled (or set NEWSREEL_GENERATION_API_KEY)")
	}
	if c.Generation.Model == "" {
		return errors.New("generation.model must be set when generation is enabled")
	}
	return nil
}
