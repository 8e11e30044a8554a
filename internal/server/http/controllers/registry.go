package controllers

import (
	"net/http"

	"github.com/lowmanm/q-logic/internal/runtime"
	"github.com/lowmanm/q-logic/internal/services/dispatch"
	"github.com/lowmanm/q-logic/internal/services/insights"
	workforcesvc "github.com/lowmanm/q-logic/internal/services/workforce"
)

// ControllerRegistry manages all HTTP controllers.
type ControllerRegistry struct {
	general  *GeneralController
	projects *ProjectsController
	queue    *QueueController
	workers  *WorkersController
	metrics  *MetricsController
}

// NewControllerRegistry creates a new controller registry wired to the
// services.
func NewControllerRegistry(rt *runtime.Runtime, dispatchSvc *dispatch.Service, workforceSvc *workforcesvc.Service, insightsSvc *insights.Service) *ControllerRegistry {
	return &ControllerRegistry{
		general:  NewGeneralController(rt),
		projects: NewProjectsController(rt),
		queue:    NewQueueController(dispatchSvc),
		workers:  NewWorkersController(workforceSvc),
		metrics:  NewMetricsController(insightsSvc),
	}
}

// RegisterAllRoutes registers every endpoint with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.projects.RegisterRoutes(mux)
	r.queue.RegisterRoutes(mux)
	r.workers.RegisterRoutes(mux)
	r.metrics.RegisterRoutes(mux)
}
