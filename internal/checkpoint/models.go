package checkpoint

import (
	"encoding/json"
	"time"
)

// Status records how a node finished.
type Status string

const (
	StatusOK       Status = "ok"
	StatusFailed   Status = "failed"
	StatusRetrying Status = "retrying"
)

// Checkpoint is one durable node-completion record. Rows are append
// only per run; resume logic reads the latest ok row.
type Checkpoint struct {
	ID        int64           `json:"id"`
	RunID     string          `json:"run_id"`
	Node      string          `json:"node"`
	Status    Status          `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// RunSummary aggregates one run's checkpoint history for status output.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	Checkpoints int       `json:"checkpoints"`
	LastNode    string    `json:"last_node"`
	LastStatus  Status    `json:"last_status"`
	UpdatedAt   time.Time `json:"updated_at"`
}
