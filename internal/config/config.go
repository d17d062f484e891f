package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	ArtifactDir string `toml:"artifact_dir"`
	ReviewDir   string `toml:"review_dir"`
	LogDir      string `toml:"log_dir"`
}

// Source describes one story source the fetch stage fans out to.
// Type selects the adapter: "rss" pulls a feed, "static" serves inline items
// (used for fixtures and manually curated stories).
type Source struct {
	Name                string       `toml:"name"`
	Type                string       `toml:"type"`
	URL                 string       `toml:"url"`
	Category            string       `toml:"category"`
	Weight              float64      `toml:"weight"`
	MaxItems            int          `toml:"max_items"`
	TimeoutSeconds      int          `toml:"timeout_seconds"`
	RetryCount          int          `toml:"retry_count"`
	RetryBackoffSeconds int          `toml:"retry_backoff_seconds"`
	Items               []StaticItem `toml:"items"`
}

// StaticItem is an inline story served by a static source.
type StaticItem struct {
	Title       string `toml:"title"`
	URL         string `toml:"url"`
	Summary     string `toml:"summary"`
	PublishedAt string `toml:"published_at"`
}

// Ingest contains fan-out behavior shared by all source adapters.
type Ingest struct {
	Concurrency         int    `toml:"concurrency"`
	SourceListPath      string `toml:"source_list_path"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	MaxItems            int    `toml:"max_items"`
	RetryCount          int    `toml:"retry_count"`
	RetryBackoffSeconds int    `toml:"retry_backoff_seconds"`
}

// Scoring contains the weighted-sum factors and selection bound.
type Scoring struct {
	TopK             int                `toml:"top_k"`
	FreshnessWeight  float64            `toml:"freshness_weight"`
	PriorityWeight   float64            `toml:"source_priority_weight"`
	TrendingWeight   float64            `toml:"trending_weight"`
	TrendingBoostCap float64            `toml:"trending_boost_cap"`
	DecayDays        map[string]float64 `toml:"decay_days"`
}

// Trending contains the keyword boost table, either inline or loaded from a
// versioned YAML document selected by run start time.
type Trending struct {
	Keywords  map[string]float64 `toml:"keywords"`
	TablePath string             `toml:"table_path"`
}

// Script contains composition settings.
type Script struct {
	TemplateID    string  `toml:"template_id"`
	MaxSegments   int     `toml:"max_segments"`
	HeadlineCount int     `toml:"headline_count"`
	TargetSeconds float64 `toml:"target_seconds"`
	SignOff       string  `toml:"sign_off"`
}

// Validation contains the structural quality thresholds.
type Validation struct {
	Strict           bool    `toml:"strict"`
	MinWords         int     `toml:"min_words"`
	MaxWords         int     `toml:"max_words"`
	TargetWordsLow   int     `toml:"target_words_low"`
	TargetWordsHigh  int     `toml:"target_words_high"`
	ActiveVoiceMin   float64 `toml:"active_voice_min"`
	ActiveVoiceGoal  float64 `toml:"active_voice_goal"`
	StrongVerbGoal   float64 `toml:"strong_verb_goal"`
	WordsPerSecond   float64 `toml:"words_per_second"`
	PacingToleranceS float64 `toml:"pacing_tolerance_seconds"`
}

// Regeneration bounds the retry loop and maps violated rules to composition
// parameter adjustments.
type Regeneration struct {
	MaxAttempts int               `toml:"max_attempts"`
	Adjustments map[string]string `toml:"adjustments"`
}

// Generation contains settings for the external text-generation collaborator.
// When disabled, composition and tone passes run on templates alone.
type Generation struct {
	Enabled             bool   `toml:"enabled"`
	APIKey              string `toml:"api_key"`
	BaseURL             string `toml:"base_url"`
	Model               string `toml:"model"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	RetryCount          int    `toml:"retry_count"`
	RetryBackoffSeconds int    `toml:"retry_backoff_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunComplete    bool   `toml:"run_complete"`
	Escalation     bool   `toml:"escalation"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root run configuration document.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Sources       []Source      `toml:"sources"`
	Ingest        Ingest        `toml:"ingest"`
	Scoring       Scoring       `toml:"scoring"`
	Trending      Trending      `toml:"trending"`
	Script        Script        `toml:"script"`
	Validation    Validation    `toml:"validation"`
	Regeneration  Regeneration  `toml:"regeneration"`
	Generation    Generation    `toml:"generation"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the expected configuration file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "newsreel", "config.toml"), nil
}

// Load reads the configuration file at path (or the default location when path
// is empty), applies environment overrides, normalizes, and validates.
// It returns the active config, the resolved path, and whether a file existed.
func Load(path string) (*Config, string, bool, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, "", false, err
		}
		resolved = defaultPath
	}
	expanded, err := expandPath(resolved)
	if err != nil {
		return nil, "", false, fmt.Errorf("resolve config path: %w", err)
	}

	cfg := Default()
	exists := false
	data, err := os.ReadFile(expanded)
	switch {
	case err == nil:
		exists = true
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, expanded, true, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// fall through to defaults
	default:
		return nil, expanded, false, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.normalize(); err != nil {
		return nil, expanded, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, expanded, exists, err
	}
	return &cfg, expanded, exists, nil
}

func (c *Config) applyEnvOverrides() {
	if key := strings.TrimSpace(os.Getenv("NEWSREEL_GENERATION_API_KEY")); key != "" {
		c.Generation.APIKey = key
	}
	if topic := strings.TrimSpace(os.Getenv("NEWSREEL_NTFY_TOPIC")); topic != "" {
		c.Notifications.NtfyTopic = topic
	}
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the directories the pipeline writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ArtifactDir, c.Paths.ReviewDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the checkpoint database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "checkpoints.db")
}

// LockPath returns the per-data-dir run lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "newsreel.lock")
}
