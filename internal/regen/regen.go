// Package regen drives the bounded drafting loop. Given a validation
// report it decides whether the run accepts the draft, re-enters
// drafting with adjusted composition parameters, or escalates to human
// review. Decisions are pure functions of the report and attempt
// counter, so replaying the same reports replays the same path.
package regen

import (
	"newsreel/internal/config"
	"newsreel/internal/script"
	"newsreel/internal/validate"
)

// State names a controller position.
type State string

const (
	StateDrafting     State = "drafting"
	StateValidating   State = "validating"
	StateAccepted     State = "accepted"
	StateRegenerating State = "regenerating"
	StateEscalated    State = "escalated"
)

// Terminal reports whether the state ends the loop.
func (s State) Terminal() bool {
	return s == StateAccepted || s == StateEscalated
}

// Adjustment names recognized by the rule mapping.
const (
	AdjustRelaxTone      = "relax_tone"
	AdjustExpandSegments = "expand_segments"
	AdjustTrimSegments   = "trim_segments"
	AdjustNone           = "none"
)

// Controller applies the configured attempt budget and rule-to-
// adjustment table.
type Controller struct {
	maxAttempts int
	adjustments map[string]string
}

// New builds a controller from run configuration.
func New(cfg config.Regeneration) *Controller {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Controller{maxAttempts: maxAttempts, adjustments: cfg.Adjustments}
}

// MaxAttempts returns the drafting budget.
func (c *Controller) MaxAttempts() int {
	return c.maxAttempts
}

// AttemptsRemain reports whether another drafting cycle fits the budget
// after the given attempt.
func (c *Controller) AttemptsRemain(attempt int) bool {
	return attempt < c.maxAttempts
}

// Decide maps a validation report to the next state. Regeneration
// requires budget headroom; an exhausted budget escalates instead.
func (c *Controller) Decide(report validate.Report, attempt int) State {
	switch report.RecommendedAction {
	case validate.ActionAccept:
		return StateAccepted
	case validate.ActionRegenerate:
		if c.AttemptsRemain(attempt) {
			return StateRegenerating
		}
		return StateEscalated
	default:
		return StateEscalated
	}
}

// Adjust derives the next attempt's composition parameters from the
// violated rules. Violations apply in report order; unmapped rules
// leave the parameters alone.
func (c *Controller) Adjust(params script.Params, violations []validate.Violation) script.Params {
	for _, violation := range violations {
		switch c.adjustmentFor(violation.Rule) {
		case AdjustRelaxTone:
			params.RelaxedTone = true
		case AdjustExpandSegments:
			params.ExpandSegments = true
			params.TrimSegments = false
		case AdjustTrimSegments:
			params.TrimSegments = true
			params.ExpandSegments = false
		}
	}
	return params
}

func (c *Controller) adjustmentFor(rule string) string {
	if adjustment, ok := c.adjustments[rule]; ok {
		return adjustment
	}
	return AdjustNone
}
