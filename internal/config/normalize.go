package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSources()
	c.normalizeScoring()
	c.normalizeScript()
	c.normalizeRegeneration()
	c.normalizeGeneration()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.ArtifactDir, err = expandPath(c.Paths.ArtifactDir); err != nil {
		return fmt.Errorf("paths.artifact_dir: %w", err)
	}
	if c.Paths.ReviewDir, err = expandPath(c.Paths.ReviewDir); err != nil {
		return fmt.Errorf("paths.review_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Ingest.SourceListPath != "" {
		if c.Ingest.SourceListPath, err = expandPath(c.Ingest.SourceListPath); err != nil {
			return fmt.Errorf("ingest.source_list_path: %w", err)
		}
	}
	if c.Trending.TablePath != "" {
		if c.Trending.TablePath, err = expandPath(c.Trending.TablePath); err != nil {
			return fmt.Errorf("trending.table_path: %w", err)
		}
	}
	return nil
}

// normalizeSources fills per-source defaults from the shared ingest settings
// so adapters never see zero budgets.
func (c *Config) normalizeSources() {
	for i := range c.Sources {
		src := &c.Sources[i]
		src.Name = strings.TrimSpace(src.Name)
		src.Type = strings.ToLower(strings.TrimSpace(src.Type))
		if src.Type == "" {
			src.Type = "rss"
		}
		src.URL = strings.TrimSpace(src.URL)
		src.Category = strings.ToLower(strings.TrimSpace(src.Category))
		if src.Category == "" {
			src.Category = "news"
		}
		if src.Weight <= 0 {
			src.Weight = 1.0
		}
		if src.MaxItems <= 0 {
			src.MaxItems = c.Ingest.MaxItems
		}
		if src.TimeoutSeconds <= 0 {
			src.TimeoutSeconds = c.Ingest.TimeoutSeconds
		}
		if src.RetryCount < 0 {
			src.RetryCount = c.Ingest.RetryCount
		}
		if src.RetryBackoffSeconds <= 0 {
			src.RetryBackoffSeconds = c.Ingest.RetryBackoffSeconds
		}
	}
	if c.Ingest.Concurrency <= 0 {
		c.Ingest.Concurrency = defaultIngestConcurrency
	}
}

func (c *Config) normalizeScoring() {
	if c.Scoring.TopK <= 0 {
		c.Scoring.TopK = defaultTopK
	}
	if c.Scoring.TrendingBoostCap <= 0 {
		c.Scoring.TrendingBoostCap = defaultTrendingBoostCap
	}
	if len(c.Scoring.DecayDays) == 0 {
		c.Scoring.DecayDays = defaultDecayDays()
	} else {
		for category, days := range defaultDecayDays() {
			if _, ok := c.Scoring.DecayDays[category]; !ok {
				c.Scoring.DecayDays[category] = days
			}
		}
	}
	normalized := make(map[string]float64, len(c.Trending.Keywords))
	for keyword, boost := range c.Trending.Keywords {
		key := strings.ToLower(strings.TrimSpace(keyword))
		if key == "" || boost <= 0 {
			continue
		}
		normalized[key] = boost
	}
	c.Trending.Keywords = normalized
}

func (c *Config) normalizeScript() {
	c.Script.TemplateID = strings.TrimSpace(c.Script.TemplateID)
	if c.Script.TemplateID == "" {
		c.Script.TemplateID = defaultTemplateID
	}
	if c.Script.MaxSegments <= 0 {
		c.Script.MaxSegments = defaultMaxSegments
	}
	if c.Script.HeadlineCount <= 0 {
		c.Script.HeadlineCount = defaultHeadlineCount
	}
	if c.Script.TargetSeconds <= 0 {
		c.Script.TargetSeconds = defaultTargetSeconds
	}
	if strings.TrimSpace(c.Script.SignOff) == "" {
		c.Script.SignOff = defaultSignOff
	}
}

func (c *Config) normalizeRegeneration() {
	if c.Regeneration.MaxAttempts <= 0 {
		c.Regeneration.MaxAttempts = defaultMaxAttempts
	}
	if len(c.Regeneration.Adjustments) == 0 {
		c.Regeneration.Adjustments = defaultAdjustments()
	}
}

func (c *Config) normalizeGeneration() {
	c.Generation.BaseURL = strings.TrimSpace(c.Generation.BaseURL)
	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = defaultGenerationBaseURL
	}
	if c.Generation.Model == "" {
		c.Generation.Model = defaultGenerationModel
	}
	if c.Generation.TimeoutSeconds <= 0 {
		c.Generation.TimeoutSeconds = defaultGenerationTimeout
	}
	if c.Generation.RetryCount <= 0 {
		c.Generation.RetryCount = defaultGenerationRetries
	}
	if c.Generation.RetryBackoffSeconds <= 0 {
		c.Generation.RetryBackoffSeconds = defaultGenerationBackoff
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
