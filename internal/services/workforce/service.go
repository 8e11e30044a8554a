package workforcesvc

import (
	"context"
	"fmt"

	"github.com/lowmanm/q-logic/internal/runtime"
	"github.com/lowmanm/q-logic/internal/workforce"
	logpkg "github.com/lowmanm/q-logic/pkg/log"
)

// Service provides worker management operations.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// New creates a workforce service with a default logger.
func New(rt *runtime.Runtime) *Service {
	logger := logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	logger = logger.With(logpkg.F("component", "workforce"))
	return NewWithLogger(rt, logger)
}

// NewWithLogger creates a workforce service with a custom logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
		logger = logger.With(logpkg.F("component", "workforce"))
	}
	return &Service{rt: rt, logger: logger}
}

// Create registers a new worker.
func (s *Service) Create(ctx context.Context, name, email string) (*workforce.Worker, error) {
	w, err := s.rt.Tracker().CreateWorker(ctx, name, email)
	if err != nil {
		return nil, err
	}
	s.logger.Info("worker registered", logpkg.Str("worker_id", w.ID), logpkg.Str("email", w.Email))
	return w, nil
}

// Get returns one worker.
func (s *Service) Get(workerID string) (*workforce.Worker, error) {
	return s.rt.Tracker().GetWorker(workerID)
}

// List returns all workers.
func (s *Service) List() ([]*workforce.Worker, error) {
	return s.rt.Tracker().ListWorkers()
}

// ChangeState applies a caller-requested state change. The target string is
// validated here so handlers can pass it through untouched.
func (s *Service) ChangeState(ctx context.Context, workerID, target string) (*workforce.Worker, error) {
	state, err := workforce.ParseState(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", workforce.ErrInvalidState, err)
	}
	w, err := s.rt.Tracker().ChangeState(ctx, workerID, state)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("worker state changed",
		logpkg.Str("worker_id", workerID),
		logpkg.Str("state", string(w.State)))
	return w, nil
}

// StateHistory returns the worker's state intervals.
func (s *Service) StateHistory(workerID string) ([]*workforce.StateLog, error) {
	return s.rt.Tracker().StateHistory(workerID)
}
