package config

const (
	defaultDataDir     = "~/.local/share/newsreel/data"
	defaultArtifactDir = "~/.local/share/newsreel/artifacts"
	defaultReviewDir   = "~/.local/share/newsreel/review"
	defaultLogDir      = "~/.local/share/newsreel/logs"

	defaultIngestConcurrency    = 4
	defaultIngestTimeoutSeconds = 20
	defaultIngestMaxItems       = 10
	defaultIngestRetryCount     = 2
	defaultIngestRetryBackoff   = 2

	defaultTopK             = 5
	defaultFreshnessWeight  = 0.5
	defaultPriorityWeight   = 0.3
	defaultTrendingWeight   = 0.2
	defaultTrendingBoostCap = 1.0

	defaultTemplateID    = "daily_briefing"
	defaultMaxSegments   = 3
	defaultHeadlineCount = 4
	defaultTargetSeconds = 180
	defaultSignOff       = "Stay sharp."

	defaultMinWords        = 300
	defaultMaxWords        = 1400
	defaultTargetWordsLow  = 800
	defaultTargetWordsHigh = 1100
	defaultActiveVoiceMin  = 0.5
	defaultActiveVoiceGoal = 0.7
	defaultStrongVerbGoal  = 0.1
	defaultWordsPerSecond  = 2.6
	defaultPacingTolerance = 45

	defaultMaxAttempts = 3

	defaultGenerationBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultGenerationModel   = "google/gemini-3-flash-preview"
	defaultGenerationTimeout = 60
	defaultGenerationRetries = 3
	defaultGenerationBackoff = 1

	defaultLogFormat = "auto"
	defaultLogLevel  = "info"
)

// defaultDecayDays maps story categories to the freshness decay window in
// days. News loses value fast; research stays relevant for weeks.
func defaultDecayDays() map[string]float64 {
	return map[string]float64{
		"news":     3,
		"trending": 2,
		"company":  7,
		"research": 21,
	}
}

// defaultAdjustments maps violated validation rules to the composition
// parameter the regeneration loop adjusts before the next attempt.
func defaultAdjustments() map[string]string {
	return map[string]string{
		"words.too_few":     "expand_segments",
		"words.too_many":    "trim_segments",
		"tone.active_voice": "relax_tone",
		"pacing.off_target": "trim_segments",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			ArtifactDir: defaultArtifactDir,
			ReviewDir:   defaultReviewDir,
			LogDir:      defaultLogDir,
		},
		Ingest: Ingest{
			Concurrency:         defaultIngestConcurrency,
			TimeoutSeconds:      defaultIngestTimeoutSeconds,
			MaxItems:            defaultIngestMaxItems,
			RetryCount:          defaultIngestRetryCount,
			RetryBackoffSeconds: defaultIngestRetryBackoff,
		},
		Scoring: Scoring{
			TopK:             defaultTopK,
			FreshnessWeight:  defaultFreshnessWeight,
			PriorityWeight:   defaultPriorityWeight,
			TrendingWeight:   defaultTrendingWeight,
			TrendingBoostCap: defaultTrendingBoostCap,
			DecayDays:        defaultDecayDays(),
		},
		Script: Script{
			TemplateID:    defaultTemplateID,
			MaxSegments:   defaultMaxSegments,
			HeadlineCount: defaultHeadlineCount,
			TargetSeconds: defaultTargetSeconds,
			SignOff:       defaultSignOff,
		},
		Validation: Validation{
			MinWords:         defaultMinWords,
			MaxWords:         defaultMaxWords,
			TargetWordsLow:   defaultTargetWordsLow,
			TargetWordsHigh:  defaultTargetWordsHigh,
			ActiveVoiceMin:   defaultActiveVoiceMin,
			ActiveVoiceGoal:  defaultActiveVoiceGoal,
			StrongVerbGoal:   defaultStrongVerbGoal,
			WordsPerSecond:   defaultWordsPerSecond,
			PacingToleranceS: defaultPacingTolerance,
		},
		Regeneration: Regeneration{
			MaxAttempts: defaultMaxAttempts,
			Adjustments: defaultAdjustments(),
		},
		Generation: Generation{
			BaseURL:             defaultGenerationBaseURL,
			Model:               defaultGenerationModel,
			TimeoutSeconds:      defaultGenerationTimeout,
			RetryCount:          defaultGenerationRetries,
			RetryBackoffSeconds: defaultGenerationBackoff,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			RunComplete:    true,
			Escalation:     true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
