package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/lowmanm/q-logic/internal/queue"
	"github.com/lowmanm/q-logic/internal/records"
	"github.com/lowmanm/q-logic/internal/registry"
	"github.com/lowmanm/q-logic/internal/runtime"
	logpkg "github.com/lowmanm/q-logic/pkg/log"
)

// Service provides the task dispatch operations.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger

	reclaimStop chan struct{}
}

// New creates a dispatch service with a default logger.
func New(rt *runtime.Runtime) *Service {
	logger := logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	logger = logger.With(logpkg.F("component", "dispatch"))
	return NewWithLogger(rt, logger)
}

// NewWithLogger creates a dispatch service with a custom logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
		logger = logger.With(logpkg.F("component", "dispatch"))
	}
	return &Service{rt: rt, logger: logger}
}

// Enqueue queues every project record that does not already have an open
// item. Re-running it with no new records returns zero.
func (s *Service) Enqueue(ctx context.Context, projectID string) (*EnqueueResult, error) {
	if _, err := s.rt.Registry().Get(projectID); err != nil {
		return nil, err
	}

	pageSize := s.rt.Config().RecordPageSize
	if pageSize <= 0 {
		pageSize = 500
	}
	var ids []string
	after := ""
	for {
		page, err := s.rt.Records().List(projectID, after, pageSize)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		if len(page) == 0 {
			break
		}
		for _, rec := range page {
			ids = append(ids, rec.ID)
		}
		after = page[len(page)-1].ID
	}

	n, err := s.rt.Ledger().Enqueue(ctx, projectID, ids, 0)
	if err != nil {
		return nil, err
	}
	s.logger.Info("enqueued records",
		logpkg.Str("project_id", projectID),
		logpkg.Int("records_enqueued", n),
		logpkg.Int("records_seen", len(ids)))
	return &EnqueueResult{ProjectID: projectID, RecordsEnqueued: n}, nil
}

// Stats returns the project's queue counters.
func (s *Service) Stats(projectID string) (queue.Counts, error) {
	if _, err := s.rt.Registry().Get(projectID); err != nil {
		return queue.Counts{}, err
	}
	return s.rt.Ledger().Stats(projectID)
}

// NextTask claims the oldest pending item of the project for the worker and
// returns the full task payload. The claim opens the worker's task log and
// flips it to in_task. queue.ErrQueueEmpty propagates when nothing is
// pending.
func (s *Service) NextTask(ctx context.Context, projectID, workerID string) (*TaskPayload, error) {
	project, err := s.rt.Registry().Get(projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.rt.Tracker().GetWorker(workerID); err != nil {
		return nil, err
	}

	item, err := s.rt.Ledger().Next(ctx, projectID, workerID, 0)
	if err != nil {
		return nil, err
	}

	if err := s.rt.Tracker().BeginTask(ctx, workerID, projectID, item.RecordID, item.AssignedAtMs); err != nil {
		return nil, fmt.Errorf("open task log: %w", err)
	}

	rec, err := s.rt.Records().Get(projectID, item.RecordID)
	if err != nil && !errors.Is(err, records.ErrNotFound) {
		return nil, err
	}
	fields := map[string]any{}
	if rec != nil {
		fields = rec.Fields
	}

	counts, err := s.rt.Ledger().Stats(projectID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("task claimed",
		logpkg.Str("queue_id", item.ID),
		logpkg.Str("project_id", projectID),
		logpkg.Str("worker_id", workerID))

	return &TaskPayload{
		QueueID:             item.ID,
		ProjectID:           projectID,
		RecordID:            item.RecordID,
		Record:              fields,
		ScreenPopURL:        registry.ResolveScreenPop(project, fields),
		QueueDepthRemaining: counts.Pending,
	}, nil
}

// Complete marks an assigned item completed, closes its task log and returns
// the worker to available when this was its last open assignment.
func (s *Service) Complete(ctx context.Context, itemID string) (*queue.Item, error) {
	item, remaining, err := s.rt.Ledger().Complete(ctx, itemID, 0)
	if err != nil {
		return nil, err
	}
	if item.WorkerID != "" {
		if err := s.rt.Tracker().FinishTask(ctx, item.WorkerID, item.ProjectID, item.RecordID, item.CompletedAtMs, false, remaining); err != nil {
			return nil, fmt.Errorf("close task log: %w", err)
		}
	}
	s.logger.Debug("task completed", logpkg.Str("queue_id", item.ID), logpkg.Str("worker_id", item.WorkerID))
	return item, nil
}

// Skip marks an item skipped. The worker's open task log for the record is
// discarded, so the attempt never reaches handle-time metrics.
func (s *Service) Skip(ctx context.Context, itemID string) (*queue.Item, error) {
	item, remaining, err := s.rt.Ledger().Skip(ctx, itemID, 0)
	if err != nil {
		return nil, err
	}
	if item.WorkerID != "" {
		if err := s.rt.Tracker().FinishTask(ctx, item.WorkerID, item.ProjectID, item.RecordID, 0, true, remaining); err != nil {
			return nil, fmt.Errorf("discard task log: %w", err)
		}
	}
	s.logger.Debug("task skipped", logpkg.Str("queue_id", item.ID), logpkg.Str("worker_id", item.WorkerID))
	return item, nil
}
