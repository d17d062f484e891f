package validate

import (
	"strings"
	"testing"

	"newsreel/internal/config"
	"newsreel/internal/script"
)

func testValidationConfig() config.Validation {
	return config.Validation{
		MinWords:         900,
		MaxWords:         1400,
		TargetWordsLow:   950,
		TargetWordsHigh:  1200,
		ActiveVoiceMin:   0.5,
		ActiveVoiceGoal:  0.7,
		StrongVerbGoal:   0.1,
		WordsPerSecond:   2.5,
		PacingToleranceS: 120,
	}
}

// draftWith builds a structurally complete draft whose single story
// segment holds the given sentences.
func draftWith(sentences []string) script.ScriptDraft {
	draft := script.ScriptDraft{
		Segments: []script.SegmentDraft{
			{Kind: script.KindHeadlines, Text: "Today's pulse: one headline.", Position: 0},
			{Kind: script.KindStory, StoryID: "aaa", Text: strings.Join(sentences, " "), Position: 1},
			{Kind: script.KindCTA, Text: "Name an owner for this by end of week.", Position: 2},
		},
		GenerationAttempt: 1,
	}
	draft.RecountWords()
	return draft
}

// sentencesFor produces count sentences of about ten words each. Every
// fifth sentence uses a passive construction when passiveEvery is 5.
func sentencesFor(count, passiveEvery int) []string {
	active := "The vendor drives adoption across seven pilot programs this week now."
	passive := "The rollout was delayed by review cycles across seven units again."
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if passiveEvery > 0 && i%passiveEvery == 0 {
			out = append(out, passive)
			continue
		}
		out = append(out, active)
	}
	return out
}

func TestValidatePassingDraft(t *testing.T) {
	validator := New(testValidationConfig(), 420)
	draft := draftWith(sentencesFor(100, 0))

	report := validator.Validate(draft, true)
	if report.Severity != SeverityPass {
		t.Fatalf("severity = %s, violations = %v", report.Severity, report.Violations)
	}
	if report.RecommendedAction != ActionAccept {
		t.Fatalf("action = %s", report.RecommendedAction)
	}
	if report.Score != 1.0 {
		t.Fatalf("score = %f", report.Score)
	}
}

func TestValidateWarnAcceptsWhenNotStrict(t *testing.T) {
	validator := New(testValidationConfig(), 420)
	// One passive sentence in three keeps the ratio between the
	// minimum and the goal.
	draft := draftWith(sentencesFor(100, 3))

	report := validator.Validate(draft, true)
	if report.Severity != SeverityWarn {
		t.Fatalf("severity = %s, violations = %v", report.Severity, report.Violations)
	}
	if report.RecommendedAction != ActionAccept {
		t.Fatalf("action = %s", report.RecommendedAction)
	}
	ratio := report.Metrics["active_voice_ratio"]
	if ratio < 0.5 || ratio >= 0.7 {
		t.Fatalf("active_voice_ratio = %f, want between min and goal", ratio)
	}
}

func TestValidateWarnRegeneratesWhenStrict(t *testing.T) {
	cfg := testValidationConfig()
	cfg.Strict = true
	validator := New(cfg, 420)
	draft := draftWith(sentencesFor(100, 3))

	if got := validator.Validate(draft, true).RecommendedAction; got != ActionRegenerate {
		t.Fatalf("action = %s, want regenerate", got)
	}
	if got := validator.Validate(draft, false).RecommendedAction; got != ActionEscalate {
		t.Fatalf("action = %s, want escalate when attempts exhausted", got)
	}
}

func TestValidateShortDraftFails(t *testing.T) {
	validator := New(testValidationConfig(), 420)
	draft := draftWith(sentencesFor(55, 0))

	report := validator.Validate(draft, true)
	if report.Severity != SeverityFail {
		t.Fatalf("severity = %s", report.Severity)
	}
	if report.RecommendedAction != ActionRegenerate {
		t.Fatalf("action = %s", report.RecommendedAction)
	}
	if !hasRule(report, RuleWordsTooFew) {
		t.Fatalf("violations = %v", report.Violations)
	}

	exhausted := validator.Validate(draft, false)
	if exhausted.RecommendedAction != ActionEscalate {
		t.Fatalf("action = %s, want escalate", exhausted.RecommendedAction)
	}
}

func TestValidateMissingStructuralMarkers(t *testing.T) {
	validator := New(testValidationConfig(), 420)
	draft := script.ScriptDraft{
		Segments: []script.SegmentDraft{
			{Kind: script.KindStory, StoryID: "aaa", Text: strings.Join(sentencesFor(100, 0), " ")},
		},
	}
	draft.RecountWords()

	report := validator.Validate(draft, true)
	if report.Severity != SeverityFail {
		t.Fatalf("severity = %s", report.Severity)
	}
	if !hasRule(report, RuleMissingIntro) || !hasRule(report, RuleMissingCTA) {
		t.Fatalf("violations = %v", report.Violations)
	}
}

func TestValidateScoreStaysInRange(t *testing.T) {
	validator := New(testValidationConfig(), 420)
	empty := script.ScriptDraft{}
	report := validator.Validate(empty, false)
	if report.Score < 0 || report.Score > 1 {
		t.Fatalf("score = %f", report.Score)
	}
	if report.Severity != SeverityFail {
		t.Fatalf("severity = %s", report.Severity)
	}
	if report.RecommendedAction != ActionEscalate {
		t.Fatalf("action = %s", report.RecommendedAction)
	}
}

func hasRule(report Report, rule string) bool {
	for _, violation := range report.Violations {
		if violation.Rule == rule {
			return true
		}
	}
	return false
}
