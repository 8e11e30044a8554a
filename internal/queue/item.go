package queue

// Status is a queue item's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// Item is one dispatchable unit of work wrapping a record reference.
type Item struct {
	ID            string `json:"queue_id"`
	ProjectID     string `json:"source_id"`
	RecordID      string `json:"record_id"`
	Status        Status `json:"status"`
	WorkerID      string `json:"worker_id,omitempty"`
	CreatedAtMs   int64  `json:"created_at_ms"`
	AssignedAtMs  int64  `json:"assigned_at_ms,omitempty"`
	CompletedAtMs int64  `json:"completed_at_ms,omitempty"`
}

// Counts is a consistent snapshot of one project's queue.
type Counts struct {
	Pending   int64 `json:"pending"`
	Assigned  int64 `json:"assigned"`
	Completed int64 `json:"completed"`
	Skipped   int64 `json:"skipped"`
	Total     int64 `json:"total"`
}
