package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"newsreel/internal/script"
	"newsreel/internal/services"
	"newsreel/internal/validate"
)

// Artifact is the accepted-run output document. It carries the final
// draft, its rendered text, the accepting report, and the run
// diagnostics so downstream consumers never have to re-derive them.
type Artifact struct {
	RunID       string             `json:"run_id"`
	Script      script.ScriptDraft `json:"script"`
	Text        string             `json:"text"`
	Report      validate.Report    `json:"report"`
	Diagnostics Diagnostics        `json:"diagnostics"`
}

// ReviewPackage is the escalation output document: the last draft with
// every validation report collected across attempts, for a human editor.
type ReviewPackage struct {
	RunID       string             `json:"run_id"`
	Script      script.ScriptDraft `json:"script"`
	Text        string             `json:"text"`
	LastReport  validate.Report    `json:"last_report"`
	Reports     []validate.Report  `json:"reports"`
	Attempts    int                `json:"attempts"`
	Diagnostics Diagnostics        `json:"diagnostics"`
}

func writeArtifact(dir string, state *State) (string, error) {
	doc := Artifact{
		RunID:       state.RunID,
		Script:      state.Draft,
		Text:        state.Draft.Text(),
		Report:      state.Report,
		Diagnostics: state.Diagnostics,
	}
	return writeDocument(dir, state.RunID+".json", doc)
}

func writeReviewPackage(dir string, state *State) (string, error) {
	doc := ReviewPackage{
		RunID:       state.RunID,
		Script:      state.Draft,
		Text:        state.Draft.Text(),
		LastReport:  state.Report,
		Reports:     state.Reports,
		Attempts:    state.Diagnostics.AttemptsUsed,
		Diagnostics: state.Diagnostics,
	}
	return writeDocument(dir, state.RunID+".json", doc)
}

// writeDocument writes via a temp file and rename so a crash mid-write
// never leaves a truncated artifact behind.
func writeDocument(dir, name string, doc any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrStage, "", "artifact", "create output directory", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", services.Wrap(services.ErrStage, "", "artifact", "encode document", err)
	}
	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return "", services.Wrap(services.ErrStage, "", "artifact", "write document", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", services.Wrap(services.ErrStage, "", "artifact", "finalize document", err)
	}
	return path, nil
}
