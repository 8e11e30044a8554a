package workforce

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	pebblestore "github.com/lowmanm/q-logic/internal/storage/pebble"
	"github.com/lowmanm/q-logic/pkg/id"
)

var (
	// ErrNotFound is returned when the referenced worker does not exist.
	ErrNotFound = errors.New("worker not found")
	// ErrDuplicateEmail is returned when a worker with the email already exists.
	ErrDuplicateEmail = errors.New("worker email already exists")
	// ErrInvalidState is returned for a forbidden state transition.
	ErrInvalidState = errors.New("invalid worker state transition")
)

// AssignmentCounter reports how many queue items a worker currently holds.
// The queue ledger implements it.
type AssignmentCounter interface {
	OpenAssignments(workerID string) (int, error)
}

// Tracker is the durable worker store and state machine.
type Tracker struct {
	db      *pebblestore.DB
	counter AssignmentCounter
	ids     *id.Generator

	mu sync.Mutex // serializes state transitions and email checks
}

// NewTracker returns a Tracker over db. counter may be nil until wired.
func NewTracker(db *pebblestore.DB, counter AssignmentCounter) *Tracker {
	return &Tracker{db: db, counter: counter, ids: id.NewGenerator()}
}

// SetAssignmentCounter wires the queue ledger in after construction.
func (t *Tracker) SetAssignmentCounter(c AssignmentCounter) { t.counter = c }

// CreateWorker registers a worker in the available state and opens its first
// state-log interval.
func (t *Tracker) CreateWorker(ctx context.Context, name, email string) (*Worker, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("worker name and email are required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.db.Get(emailIdxKey(email))
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, pebblestore.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UnixMilli()
	w := &Worker{
		ID:          uuid.NewString(),
		Name:        name,
		Email:       email,
		State:       StateAvailable,
		CreatedAtMs: now,
	}

	b := t.db.NewBatch()
	defer b.Close()
	if err := pebblestore.BatchSetJSON(b, workerKey(w.ID), w); err != nil {
		return nil, err
	}
	if err := b.Set(emailIdxKey(email), []byte(w.ID), nil); err != nil {
		return nil, err
	}
	if err := t.rotateStateLog(b, w.ID, StateAvailable, now); err != nil {
		return nil, err
	}
	if err := t.db.CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	return w, nil
}

// GetWorker returns one worker by id.
func (t *Tracker) GetWorker(workerID string) (*Worker, error) {
	var w Worker
	if err := t.db.GetJSON(workerKey(workerID), &w); err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, workerID)
		}
		return nil, err
	}
	return &w, nil
}

// ListWorkers returns all workers sorted by name.
func (t *Tracker) ListWorkers() ([]*Worker, error) {
	it, err := t.db.NewPrefixIter(workerPrefix())
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []*Worker
	for it.First(); it.Valid(); it.Next() {
		var w Worker
		if err := pebblestore.DecodeJSON(it.Value(), &w); err != nil {
			return nil, err
		}
		cp := w
		out = append(out, &cp)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ChangeState applies a caller-requested transition between available,
// break and wrap_up. in_task is system-owned: it can neither be requested
// nor left while the worker still holds an assignment.
func (t *Tracker) ChangeState(ctx context.Context, workerID string, target State) (*Worker, error) {
	if target == StateInTask {
		return nil, fmt.Errorf("%w: in_task is set by task assignment, not by request", ErrInvalidState)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	w, err := t.GetWorker(workerID)
	if err != nil {
		return nil, err
	}
	open := 0
	if t.counter != nil {
		open, err = t.counter.OpenAssignments(workerID)
		if err != nil {
			return nil, err
		}
	}
	if open > 0 || w.State == StateInTask {
		return nil, fmt.Errorf("%w: worker %s holds %d open assignment(s)", ErrInvalidState, workerID, open)
	}
	if w.State == target {
		return w, nil
	}
	return t.commitState(ctx, w, target, time.Now().UnixMilli())
}

// BeginTask flips the worker to in_task and opens a task log for the
// (worker, record) pairing. System-driven: the dispatch layer calls it on a
// successful claim, with the claim's assignment time.
func (t *Tracker) BeginTask(ctx context.Context, workerID, projectID, recordID string, startMs int64) error {
	if startMs <= 0 {
		startMs = time.Now().UnixMilli()
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	w, err := t.GetWorker(workerID)
	if err != nil {
		return err
	}

	b := t.db.NewBatch()
	defer b.Close()

	logID := t.ids.Next().String()
	tl := &TaskLog{
		ID:          logID,
		WorkerID:    workerID,
		ProjectID:   projectID,
		RecordID:    recordID,
		StartedAtMs: startMs,
	}
	if err := pebblestore.BatchSetJSON(b, taskLogKey(workerID, logID), tl); err != nil {
		return err
	}
	if err := b.Set(openTaskKey(workerID, projectID, recordID), []byte(logID), nil); err != nil {
		return err
	}
	if w.State != StateInTask {
		w.State = StateInTask
		if err := pebblestore.BatchSetJSON(b, workerKey(workerID), w); err != nil {
			return err
		}
		if err := t.rotateStateLog(b, workerID, StateInTask, startMs); err != nil {
			return err
		}
	}
	return t.db.CommitBatch(ctx, b)
}

// FinishTask closes (or, for a skip, discards) the open task log for the
// pairing and returns the worker to available once no assignments remain.
func (t *Tracker) FinishTask(ctx context.Context, workerID, projectID, recordID string, endMs int64, discard bool, remainingOpen int) error {
	if endMs <= 0 {
		endMs = time.Now().UnixMilli()
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	w, err := t.GetWorker(workerID)
	if err != nil {
		return err
	}

	b := t.db.NewBatch()
	defer b.Close()

	ptr, err := t.db.Get(openTaskKey(workerID, projectID, recordID))
	switch {
	case err == nil:
		logID := string(ptr)
		if err := b.Delete(openTaskKey(workerID, projectID, recordID), nil); err != nil {
			return err
		}
		if discard {
			if err := b.Delete(taskLogKey(workerID, logID), nil); err != nil {
				return err
			}
		} else {
			var tl TaskLog
			if err := t.db.GetJSON(taskLogKey(workerID, logID), &tl); err != nil {
				return err
			}
			tl.CompletedAtMs = endMs
			if err := pebblestore.BatchSetJSON(b, taskLogKey(workerID, logID), &tl); err != nil {
				return err
			}
		}
	case errors.Is(err, pebblestore.ErrNotFound):
		// no open log for the pairing (e.g. claim predates a restart); state
		// reconciliation below still applies
	default:
		return err
	}

	if remainingOpen == 0 && w.State == StateInTask {
		w.State = StateAvailable
		if err := pebblestore.BatchSetJSON(b, workerKey(workerID), w); err != nil {
			return err
		}
		if err := t.rotateStateLog(b, workerID, StateAvailable, endMs); err != nil {
			return err
		}
	}
	return t.db.CommitBatch(ctx, b)
}

// DiscardOpenTask drops the open log for a pairing without touching worker
// state. The reclaim sweep uses it when it takes an abandoned item back.
func (t *Tracker) DiscardOpenTask(ctx context.Context, workerID, projectID, recordID string, remainingOpen int) error {
	return t.FinishTask(ctx, workerID, projectID, recordID, 0, true, remainingOpen)
}

// commitState writes the worker's new state and rotates the state log.
// Caller holds t.mu.
func (t *Tracker) commitState(ctx context.Context, w *Worker, target State, nowMs int64) (*Worker, error) {
	b := t.db.NewBatch()
	defer b.Close()
	w.State = target
	if err := pebblestore.BatchSetJSON(b, workerKey(w.ID), w); err != nil {
		return nil, err
	}
	if err := t.rotateStateLog(b, w.ID, target, nowMs); err != nil {
		return nil, err
	}
	if err := t.db.CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	return w, nil
}

// rotateStateLog closes the current state interval and opens one for state.
func (t *Tracker) rotateStateLog(b *pebble.Batch, workerID string, state State, nowMs int64) error {
	if ptr, err := t.db.Get(openStateKey(workerID)); err == nil {
		var cur StateLog
		if err := t.db.GetJSON(stateLogKey(workerID, string(ptr)), &cur); err == nil {
			cur.EndedAtMs = nowMs
			if err := pebblestore.BatchSetJSON(b, stateLogKey(workerID, cur.ID), &cur); err != nil {
				return err
			}
		}
	} else if !errors.Is(err, pebblestore.ErrNotFound) {
		return err
	}
	logID := t.ids.Next().String()
	sl := &StateLog{ID: logID, WorkerID: workerID, State: state, StartedAtMs: nowMs}
	if err := pebblestore.BatchSetJSON(b, stateLogKey(workerID, logID), sl); err != nil {
		return err
	}
	return b.Set(openStateKey(workerID), []byte(logID), nil)
}

// StateHistory returns the worker's state intervals in chronological order.
func (t *Tracker) StateHistory(workerID string) ([]*StateLog, error) {
	if _, err := t.GetWorker(workerID); err != nil {
		return nil, err
	}
	it, err := t.db.NewPrefixIter(stateLogPrefix(workerID))
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []*StateLog
	for it.First(); it.Valid(); it.Next() {
		var sl StateLog
		if err := pebblestore.DecodeJSON(it.Value(), &sl); err != nil {
			return nil, err
		}
		cp := sl
		out = append(out, &cp)
	}
	return out, it.Error()
}

// Logs returns all task logs for one worker in creation order.
func (t *Tracker) Logs(workerID string) ([]*TaskLog, error) {
	return t.scanLogs(taskLogPrefix(workerID))
}

// AllLogs returns every task log in the store.
func (t *Tracker) AllLogs() ([]*TaskLog, error) {
	return t.scanLogs(taskLogRoot())
}

func (t *Tracker) scanLogs(prefix []byte) ([]*TaskLog, error) {
	it, err := t.db.NewPrefixIter(prefix)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []*TaskLog
	for it.First(); it.Valid(); it.Next() {
		var tl TaskLog
		if err := pebblestore.DecodeJSON(it.Value(), &tl); err != nil {
			return nil, err
		}
		cp := tl
		out = append(out, &cp)
	}
	return out, it.Error()
}
