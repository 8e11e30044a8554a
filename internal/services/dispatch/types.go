package dispatch

// TaskPayload is the self-contained unit of work handed to a worker: the
// claimed queue item, the record's fields, and the rendered screen-pop URL
// when the project defines one.
type TaskPayload struct {
	QueueID             string         `json:"queue_id"`
	ProjectID           string         `json:"source_id"`
	RecordID            string         `json:"record_id"`
	Record              map[string]any `json:"record"`
	ScreenPopURL        string         `json:"screen_pop_url,omitempty"`
	QueueDepthRemaining int64          `json:"queue_depth_remaining"`
}

// EnqueueResult reports how many records an enqueue call actually queued.
type EnqueueResult struct {
	ProjectID       string `json:"project_id"`
	RecordsEnqueued int    `json:"records_enqueued"`
}
