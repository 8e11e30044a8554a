package dispatch

import (
	"context"
	"math/rand"
	"time"

	logpkg "github.com/lowmanm/q-logic/pkg/log"
)

// StartReclaimer runs a background loop returning abandoned assignments to
// the pending pool. It is a no-op unless reclaimAfterMs in the configuration
// is positive; with the default of zero an abandoned item stays assigned
// until its worker reports back.
func (s *Service) StartReclaimer() {
	cfg := s.rt.Config()
	if cfg.ReclaimAfterMs <= 0 || s.reclaimStop != nil {
		return
	}
	interval := time.Duration(cfg.ReclaimSweepMs) * time.Millisecond
	if interval <= 0 {
		interval = 30 * time.Second
	}
	s.reclaimStop = make(chan struct{})
	s.logger.Info("reclaim sweep enabled",
		logpkg.Int64("reclaim_after_ms", cfg.ReclaimAfterMs),
		logpkg.Dur("interval", interval))
	go func(stop chan struct{}) {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		for {
			select {
			case <-stop:
				return
			case <-time.After(interval + time.Duration(rng.Int63n(int64(interval/10+1)))):
				s.sweepOnce(context.Background(), cfg.ReclaimAfterMs)
			}
		}
	}(s.reclaimStop)
}

// StopReclaimer stops the background sweep.
func (s *Service) StopReclaimer() {
	if s.reclaimStop != nil {
		close(s.reclaimStop)
		s.reclaimStop = nil
	}
}

// sweepOnce reclaims one batch of abandoned items and discards their open
// task logs so the abandoned attempt never counts toward handle time.
func (s *Service) sweepOnce(ctx context.Context, olderThanMs int64) {
	reclaimed, err := s.rt.Ledger().ReclaimAbandoned(ctx, olderThanMs, 0, 1024)
	if err != nil {
		s.logger.Warn("reclaim sweep failed", logpkg.Err(err))
		return
	}
	for _, item := range reclaimed {
		remaining, err := s.rt.Ledger().OpenAssignments(item.WorkerID)
		if err != nil {
			s.logger.Warn("reclaim reconciliation failed",
				logpkg.Str("worker_id", item.WorkerID), logpkg.Err(err))
			continue
		}
		if err := s.rt.Tracker().DiscardOpenTask(ctx, item.WorkerID, item.ProjectID, item.RecordID, remaining); err != nil {
			s.logger.Warn("discard open task log failed",
				logpkg.Str("queue_id", item.ID), logpkg.Err(err))
		}
	}
	if len(reclaimed) > 0 {
		s.logger.Info("reclaimed abandoned assignments", logpkg.Int("count", len(reclaimed)))
	}
}
