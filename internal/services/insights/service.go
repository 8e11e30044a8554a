package insights

import (
	"github.com/lowmanm/q-logic/internal/metrics"
	"github.com/lowmanm/q-logic/internal/runtime"
	logpkg "github.com/lowmanm/q-logic/pkg/log"
)

// Service provides the metrics read surface.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// New creates an insights service with a default logger.
func New(rt *runtime.Runtime) *Service {
	logger := logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	logger = logger.With(logpkg.F("component", "insights"))
	return NewWithLogger(rt, logger)
}

// NewWithLogger creates an insights service with a custom logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
		logger = logger.With(logpkg.F("component", "insights"))
	}
	return &Service{rt: rt, logger: logger}
}

// WorkerAHT returns one worker's average handle time, optionally filtered
// by project.
func (s *Service) WorkerAHT(workerID, projectID string) (*metrics.HandleTime, error) {
	return s.rt.Metrics().WorkerAHT(workerID, projectID)
}

// TeamAHT returns the team-wide average handle time.
func (s *Service) TeamAHT(projectID string) (*metrics.HandleTime, error) {
	return s.rt.Metrics().TeamAHT(projectID)
}

// AgentStates returns the worker state census.
func (s *Service) AgentStates() (*metrics.Census, error) {
	return s.rt.Metrics().AgentStates()
}

// Leaderboard returns workers ranked by throughput. filterExpr is an
// optional CEL row filter.
func (s *Service) Leaderboard(projectID, filterExpr string) ([]metrics.LeaderboardEntry, error) {
	return s.rt.Metrics().Leaderboard(projectID, filterExpr)
}

// QueueStats returns queue counters for every project with queue history.
func (s *Service) QueueStats() ([]metrics.ProjectQueueStats, error) {
	return s.rt.Metrics().AllQueueStats()
}
