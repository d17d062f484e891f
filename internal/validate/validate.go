// Package validate scores a composed draft against structural and tonal
// quality rules. Validation failure is a data outcome that drives the
// regeneration controller, never an error.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"newsreel/internal/config"
	"newsreel/internal/script"
)

// Severity classifies a report.
type Severity string

const (
	SeverityPass Severity = "pass"
	SeverityWarn Severity = "warn"
	SeverityFail Severity = "fail"
)

// Action is the recommended next step for the controller.
type Action string

const (
	ActionAccept     Action = "accept"
	ActionRegenerate Action = "regenerate"
	ActionEscalate   Action = "escalate"
)

// Violation names one broken rule.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Report is the validator's verdict on one draft.
type Report struct {
	Severity          Severity           `json:"severity"`
	Score             float64            `json:"score"`
	Metrics           map[string]float64 `json:"metrics"`
	Violations        []Violation        `json:"violations,omitempty"`
	RecommendedAction Action             `json:"recommended_action"`
}

// Rule ids referenced by the regeneration adjustment table.
const (
	RuleWordsTooFew        = "words.too_few"
	RuleWordsTooMany       = "words.too_many"
	RuleWordsOffTarget     = "words.off_target"
	RuleActiveVoice        = "tone.active_voice"
	RuleActiveVoiceMinimum = "tone.active_voice_minimum"
	RuleStrongVerbs        = "tone.strong_verbs"
	RulePacing             = "pacing.off_target"
	RuleMissingIntro       = "structure.missing_intro"
	RuleMissingCTA         = "structure.missing_cta"
	RuleMissingTransitions = "structure.missing_transitions"
)

var passivePattern = regexp.MustCompile(`(?i)\b(?:is|are|was|were|be|been)\s+(?:being\s+)?[A-Za-z]+ed\b`)

var strongVerbs = []string{
	"drives", "fuel", "triggered", "sparked", "delivers", "deliver",
	"signals", "signal", "force", "forced", "surges", "launches",
	"accelerates", "stands", "races", "moves", "pushes", "commits",
}

// Validator applies configured thresholds to a draft.
type Validator struct {
	cfg           config.Validation
	targetSeconds float64
}

// New builds a validator. targetSeconds is the narration length the
// pacing estimate is compared against.
func New(cfg config.Validation, targetSeconds float64) *Validator {
	return &Validator{cfg: cfg, targetSeconds: targetSeconds}
}

// Validate computes metrics and maps them to a severity and recommended
// action. attemptsRemain reports whether the regeneration budget allows
// another drafting cycle.
func (v *Validator) Validate(draft script.ScriptDraft, attemptsRemain bool) Report {
	text := draft.Text()
	words := draft.WordCount
	if words == 0 {
		words = len(strings.Fields(text))
	}

	metrics := map[string]float64{
		"word_count": float64(words),
	}
	var violations []Violation
	score := 1.0
	hardFail := false

	fail := func(rule, message string, decrement float64) {
		violations = append(violations, Violation{Rule: rule, Message: message})
		score -= decrement
		hardFail = true
	}
	warn := func(rule, message string, decrement float64) {
		violations = append(violations, Violation{Rule: rule, Message: message})
		score -= decrement
	}

	// Word bounds. Absolute limits are hard, the target range is soft.
	deviation := 0.0
	switch {
	case words < v.cfg.TargetWordsLow:
		deviation = float64(v.cfg.TargetWordsLow - words)
	case words > v.cfg.TargetWordsHigh:
		deviation = float64(words - v.cfg.TargetWordsHigh)
	}
	metrics["word_deviation"] = deviation
	switch {
	case words < v.cfg.MinWords:
		fail(RuleWordsTooFew, fmt.Sprintf("word count %d below minimum %d", words, v.cfg.MinWords), 0.3)
	case words > v.cfg.MaxWords:
		fail(RuleWordsTooMany, fmt.Sprintf("word count %d above maximum %d", words, v.cfg.MaxWords), 0.3)
	case deviation > 0:
		warn(RuleWordsOffTarget, fmt.Sprintf("word count %d outside target %d-%d", words, v.cfg.TargetWordsLow, v.cfg.TargetWordsHigh), 0.05)
	}

	// Voice and verb strength.
	activeRatio := activeVoiceRatio(text)
	metrics["active_voice_ratio"] = activeRatio
	switch {
	case activeRatio < v.cfg.ActiveVoiceMin:
		fail(RuleActiveVoiceMinimum, fmt.Sprintf("active voice ratio %.2f below minimum %.2f", activeRatio, v.cfg.ActiveVoiceMin), 0.2)
	case activeRatio < v.cfg.ActiveVoiceGoal:
		warn(RuleActiveVoice, fmt.Sprintf("active voice ratio %.2f below target %.2f", activeRatio, v.cfg.ActiveVoiceGoal), 0.1)
	}

	verbRatio := strongVerbRatio(text)
	metrics["strong_verb_ratio"] = verbRatio
	if verbRatio < v.cfg.StrongVerbGoal {
		warn(RuleStrongVerbs, fmt.Sprintf("strong verb ratio %.2f below target %.2f", verbRatio, v.cfg.StrongVerbGoal), 0.05)
	}

	// Structural markers.
	if !hasKind(draft, script.KindHeadlines) {
		fail(RuleMissingIntro, "draft missing headline intro segment", 0.2)
	}
	if !hasKind(draft, script.KindCTA) {
		fail(RuleMissingCTA, "draft missing call-to-action segment", 0.2)
	}
	if len(draft.StorySegments()) > 1 && !script.HasTransitions(draft) {
		fail(RuleMissingTransitions, "story segments missing transitions", 0.1)
	}

	// Pacing.
	if v.cfg.WordsPerSecond > 0 && v.targetSeconds > 0 {
		pacing := float64(words) / v.cfg.WordsPerSecond
		metrics["pacing_seconds"] = pacing
		if math.Abs(pacing-v.targetSeconds) > v.cfg.PacingToleranceS {
			warn(RulePacing, fmt.Sprintf("estimated %.0fs narration, target %.0fs", pacing, v.targetSeconds), 0.05)
		}
	}

	if score < 0 {
		score = 0
	}

	severity := SeverityPass
	switch {
	case hardFail:
		severity = SeverityFail
	case len(violations) > 0:
		severity = SeverityWarn
	}

	return Report{
		Severity:          severity,
		Score:             score,
		Metrics:           metrics,
		Violations:        violations,
		RecommendedAction: v.recommend(severity, attemptsRemain),
	}
}

func (v *Validator) recommend(severity Severity, attemptsRemain bool) Action {
	switch severity {
	case SeverityFail:
		if attemptsRemain {
			return ActionRegenerate
		}
		return ActionEscalate
	case SeverityWarn:
		if v.cfg.Strict {
			if attemptsRemain {
				return ActionRegenerate
			}
			return ActionEscalate
		}
		return ActionAccept
	default:
		return ActionAccept
	}
}

func hasKind(draft script.ScriptDraft, kind script.Kind) bool {
	for _, segment := range draft.Segments {
		if segment.Kind == kind {
			return true
		}
	}
	return false
}

func activeVoiceRatio(text string) float64 {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 1
	}
	active := 0
	for _, sentence := range sentences {
		if !passivePattern.MatchString(sentence) {
			active++
		}
	}
	return float64(active) / float64(len(sentences))
}

func strongVerbRatio(text string) float64 {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 0
	}
	strong := 0
	for _, sentence := range sentences {
		lowered := strings.ToLower(sentence)
		for _, verb := range strongVerbs {
			if strings.Contains(lowered, verb) {
				strong++
				break
			}
		}
	}
	return float64(strong) / float64(len(sentences))
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	flush := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
		current.Reset()
	}
	for _, r := range strings.ReplaceAll(text, "\n", " ") {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()
	return sentences
}
