package workforce

import (
	"fmt"
	"strings"
)

// State is a worker's current activity state.
type State string

const (
	StateAvailable State = "available"
	StateInTask    State = "in_task"
	StateBreak     State = "break"
	StateWrapUp    State = "wrap_up"
)

// ParseState validates a caller-supplied state string.
func ParseState(s string) (State, error) {
	switch State(strings.ToLower(strings.TrimSpace(s))) {
	case StateAvailable:
		return StateAvailable, nil
	case StateInTask:
		return StateInTask, nil
	case StateBreak:
		return StateBreak, nil
	case StateWrapUp:
		return StateWrapUp, nil
	default:
		return "", fmt.Errorf("unknown worker state %q", s)
	}
}

// Worker is one registered agent.
type Worker struct {
	ID          string `json:"worker_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	State       State  `json:"state"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

// TaskLog is the append-only record of one worker/record pairing. Logs with
// a zero CompletedAtMs are open; skip-discarded logs are deleted outright
// and never reach the metrics layer.
type TaskLog struct {
	ID            string `json:"log_id"`
	WorkerID      string `json:"worker_id"`
	ProjectID     string `json:"source_id"`
	RecordID      string `json:"record_id"`
	StartedAtMs   int64  `json:"started_at_ms"`
	CompletedAtMs int64  `json:"completed_at_ms,omitempty"`
}

// Closed reports whether the log has a completion stamp.
func (tl *TaskLog) Closed() bool { return tl.CompletedAtMs > 0 }

// DurationSeconds is the handle time of a closed log.
func (tl *TaskLog) DurationSeconds() float64 {
	if !tl.Closed() {
		return 0
	}
	return float64(tl.CompletedAtMs-tl.StartedAtMs) / 1000.0
}

// StateLog is one interval of a worker's state history.
type StateLog struct {
	ID          string `json:"log_id"`
	WorkerID    string `json:"worker_id"`
	State       State  `json:"state"`
	StartedAtMs int64  `json:"started_at_ms"`
	EndedAtMs   int64  `json:"ended_at_ms,omitempty"`
}
