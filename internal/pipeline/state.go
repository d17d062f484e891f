package pipeline

import (
	"errors"

	"newsreel/internal/config"
	"newsreel/internal/ingest"
	"newsreel/internal/regen"
	"newsreel/internal/script"
	"newsreel/internal/story"
	"newsreel/internal/validate"
)

// FetchOutcome is the serializable form of one adapter result, stored in
// the fetch node's checkpoint so a resumed run replays the same inputs.
type FetchOutcome struct {
	Index  int              `json:"index"`
	Source config.Source    `json:"source"`
	Items  []ingest.RawItem `json:"items,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Event is one entry in the run's ordered diagnostic log.
type Event struct {
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Diagnostics is the run's ordered trouble log plus the counters the
// output artifact reports.
type Diagnostics struct {
	Events              []Event                       `json:"events,omitempty"`
	FetchFailures       []string                      `json:"fetch_failures,omitempty"`
	ItemsFetched        int                           `json:"items_fetched"`
	DedupRemoved        int                           `json:"dedup_removed_count"`
	DroppedStories      []string                      `json:"dropped_stories,omitempty"`
	GenerationFallbacks []string                      `json:"generation_fallbacks,omitempty"`
	ScoreBreakdowns     map[string]map[string]float64 `json:"final_score_breakdown_per_selected_story,omitempty"`
	AttemptsUsed        int                           `json:"attempts_used"`
}

func (d *Diagnostics) record(level, message string, details map[string]string) {
	d.Events = append(d.Events, Event{Level: level, Message: message, Details: details})
}

// State is the pipeline's shared graph state. Every field must survive
// a JSON round trip through the checkpoint store.
type State struct {
	RunID        string                `json:"run_id"`
	Fetched      []FetchOutcome        `json:"fetched,omitempty"`
	Records      []story.Record        `json:"records,omitempty"`
	Selected     []story.Scored        `json:"selected,omitempty"`
	Analyzed     []script.SegmentDraft `json:"analyzed,omitempty"`
	Params       script.Params         `json:"params"`
	Attempt      int                   `json:"attempt"`
	Draft        script.ScriptDraft    `json:"draft"`
	Report       validate.Report       `json:"report"`
	Reports      []validate.Report     `json:"reports,omitempty"`
	Outcome      regen.State           `json:"outcome,omitempty"`
	Diagnostics  Diagnostics           `json:"diagnostics"`
	ArtifactPath string                `json:"artifact_path,omitempty"`
	ReviewPath   string                `json:"review_path,omitempty"`
}

func toFetchOutcomes(results []ingest.Result) []FetchOutcome {
	out := make([]FetchOutcome, 0, len(results))
	for _, result := range results {
		outcome := FetchOutcome{
			Index:  result.Index,
			Source: result.Source,
			Items:  result.Items,
		}
		if result.Err != nil {
			outcome.Error = result.Err.Error()
		}
		out = append(out, outcome)
	}
	return out
}

func toResults(outcomes []FetchOutcome) []ingest.Result {
	out := make([]ingest.Result, 0, len(outcomes))
	for _, outcome := range outcomes {
		result := ingest.Result{
			Index:  outcome.Index,
			Source: outcome.Source,
			Items:  outcome.Items,
		}
		if outcome.Error != "" {
			result.Err = errors.New(outcome.Error)
		}
		out = append(out, result)
	}
	return out
}
