package controllers

import (
	"net/http"

	"github.com/lowmanm/q-logic/internal/services/dispatch"
)

// QueueController handles the task flow endpoints workers drive.
type QueueController struct {
	svc *dispatch.Service
}

// NewQueueController creates a new queue controller.
func NewQueueController(svc *dispatch.Service) *QueueController {
	return &QueueController{svc: svc}
}

// RegisterRoutes registers the queue routes with the given mux.
func (c *QueueController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/projects/{id}/enqueue", c.handleEnqueue)
	mux.HandleFunc("GET /v1/projects/{id}/queue-stats", c.handleStats)
	mux.HandleFunc("POST /v1/projects/{id}/next", c.handleNext)
	mux.HandleFunc("POST /v1/queue/{queueId}/complete", c.handleComplete)
	mux.HandleFunc("POST /v1/queue/{queueId}/skip", c.handleSkip)
}

func (c *QueueController) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	res, err := c.svc.Enqueue(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, res)
}

func (c *QueueController) handleStats(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	counts, err := c.svc.Stats(projectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"project_id": projectID,
		"pending":    counts.Pending,
		"assigned":   counts.Assigned,
		"completed":  counts.Completed,
		"skipped":    counts.Skipped,
		"total":      counts.Total,
	})
}

func (c *QueueController) handleNext(w http.ResponseWriter, r *http.Request) {
	workerID := r.URL.Query().Get("worker_id")
	if workerID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "worker_id is required")
		return
	}
	task, err := c.svc.NextTask(r.Context(), r.PathValue("id"), workerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, task)
}

func (c *QueueController) handleComplete(w http.ResponseWriter, r *http.Request) {
	item, err := c.svc.Complete(r.Context(), r.PathValue("queueId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"queue_id": item.ID, "status": item.Status})
}

func (c *QueueController) handleSkip(w http.ResponseWriter, r *http.Request) {
	item, err := c.svc.Skip(r.Context(), r.PathValue("queueId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"queue_id": item.ID, "status": item.Status})
}
