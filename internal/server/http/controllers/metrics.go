package controllers

import (
	"net/http"

	"github.com/lowmanm/q-logic/internal/services/insights"
)

// MetricsController handles the read-only dashboard endpoints.
type MetricsController struct {
	svc *insights.Service
}

// NewMetricsController creates a new metrics controller.
func NewMetricsController(svc *insights.Service) *MetricsController {
	return &MetricsController{svc: svc}
}

// RegisterRoutes registers the metrics routes with the given mux.
func (c *MetricsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/workers/{id}/metrics/aht", c.handleWorkerAHT)
	mux.HandleFunc("GET /v1/metrics/team-aht", c.handleTeamAHT)
	mux.HandleFunc("GET /v1/metrics/agent-states", c.handleAgentStates)
	mux.HandleFunc("GET /v1/metrics/leaderboard", c.handleLeaderboard)
	mux.HandleFunc("GET /v1/metrics/queue-stats", c.handleQueueStats)
}

func (c *MetricsController) handleWorkerAHT(w http.ResponseWriter, r *http.Request) {
	ht, err := c.svc.WorkerAHT(r.PathValue("id"), r.URL.Query().Get("project_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, ht)
}

func (c *MetricsController) handleTeamAHT(w http.ResponseWriter, r *http.Request) {
	ht, err := c.svc.TeamAHT(r.URL.Query().Get("project_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, ht)
}

func (c *MetricsController) handleAgentStates(w http.ResponseWriter, _ *http.Request) {
	census, err := c.svc.AgentStates()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, census)
}

func (c *MetricsController) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := c.svc.Leaderboard(q.Get("project_id"), q.Get("filter"))
	if err != nil {
		// a malformed CEL expression is the caller's mistake
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	writeJSON(w, map[string]any{"leaderboard": rows})
}

func (c *MetricsController) handleQueueStats(w http.ResponseWriter, _ *http.Request) {
	stats, err := c.svc.QueueStats()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"projects": stats})
}
