package controllers

import (
	"encoding/json"
	"net/http"

	workforcesvc "github.com/lowmanm/q-logic/internal/services/workforce"
)

// WorkersController handles worker registration and state endpoints.
type WorkersController struct {
	svc *workforcesvc.Service
}

// NewWorkersController creates a new workers controller.
func NewWorkersController(svc *workforcesvc.Service) *WorkersController {
	return &WorkersController{svc: svc}
}

// RegisterRoutes registers the worker routes with the given mux.
func (c *WorkersController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/workers", c.handleCreate)
	mux.HandleFunc("GET /v1/workers", c.handleList)
	mux.HandleFunc("GET /v1/workers/{id}", c.handleGet)
	mux.HandleFunc("PUT /v1/workers/{id}/state", c.handleChangeState)
	mux.HandleFunc("GET /v1/workers/{id}/state-history", c.handleStateHistory)
}

type createWorkerReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *WorkersController) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createWorkerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	worker, err := c.svc.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(worker)
}

func (c *WorkersController) handleList(w http.ResponseWriter, _ *http.Request) {
	workers, err := c.svc.List()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"workers": workers})
}

func (c *WorkersController) handleGet(w http.ResponseWriter, r *http.Request) {
	worker, err := c.svc.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, worker)
}

type changeStateReq struct {
	NewState string `json:"new_state"`
}

func (c *WorkersController) handleChangeState(w http.ResponseWriter, r *http.Request) {
	var req changeStateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	worker, err := c.svc.ChangeState(r.Context(), r.PathValue("id"), req.NewState)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, worker)
}

func (c *WorkersController) handleStateHistory(w http.ResponseWriter, r *http.Request) {
	hist, err := c.svc.StateHistory(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"intervals": hist})
}
