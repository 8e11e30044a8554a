package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/lowmanm/q-logic/internal/registry"
	"github.com/lowmanm/q-logic/internal/runtime"
)

// ProjectsController handles project provisioning and record loading.
type ProjectsController struct {
	rt *runtime.Runtime
}

// NewProjectsController creates a new projects controller.
func NewProjectsController(rt *runtime.Runtime) *ProjectsController {
	return &ProjectsController{rt: rt}
}

// RegisterRoutes registers the project routes with the given mux.
func (c *ProjectsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/projects", c.handleCreate)
	mux.HandleFunc("GET /v1/projects", c.handleList)
	mux.HandleFunc("GET /v1/projects/{id}", c.handleGet)
	mux.HandleFunc("POST /v1/projects/{id}/records", c.handleLoadRecords)
	mux.HandleFunc("GET /v1/projects/{id}/records", c.handleListRecords)
}

type createProjectReq struct {
	Name              string            `json:"project_name"`
	TableName         string            `json:"table_name"`
	ScreenPopTemplate string            `json:"screen_pop_url_template"`
	Columns           []registry.Column `json:"columns"`
}

func (c *ProjectsController) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProjectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	p, err := c.rt.Registry().Create(r.Context(), registry.CreateOptions{
		Name:              req.Name,
		TableName:         req.TableName,
		ScreenPopTemplate: req.ScreenPopTemplate,
		Columns:           req.Columns,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}

func (c *ProjectsController) handleList(w http.ResponseWriter, _ *http.Request) {
	projects, err := c.rt.Registry().List()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"projects": projects})
}

func (c *ProjectsController) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := c.rt.Registry().Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, p)
}

type loadRecordsReq struct {
	Records []map[string]any `json:"records"`
}

func (c *ProjectsController) handleLoadRecords(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if _, err := c.rt.Registry().Get(projectID); err != nil {
		writeDomainError(w, err)
		return
	}
	var req loadRecordsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	stored, err := c.rt.Records().PutBatch(r.Context(), projectID, req.Records)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"project_id":     projectID,
		"records_loaded": len(stored),
	})
}

func (c *ProjectsController) handleListRecords(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if _, err := c.rt.Registry().Get(projectID); err != nil {
		writeDomainError(w, err)
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = c.rt.Config().RecordPageSize
	}
	page, err := c.rt.Records().List(projectID, r.URL.Query().Get("after"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	next := ""
	if len(page) == limit && limit > 0 {
		next = page[len(page)-1].ID
	}
	writeJSON(w, map[string]any{"records": page, "next_after": next})
}
