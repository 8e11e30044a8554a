package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	pebblestore "github.com/lowmanm/q-logic/internal/storage/pebble"
	"github.com/lowmanm/q-logic/pkg/id"
)

var (
	// ErrNotFound is returned when the referenced queue item does not exist.
	ErrNotFound = errors.New("queue item not found")
	// ErrQueueEmpty is returned by Next when no pending item remains. It is
	// the expected end-of-queue condition, not a fault.
	ErrQueueEmpty = errors.New("queue exhausted")
	// ErrInvalidState is returned when a transition is attempted from a
	// state that forbids it.
	ErrInvalidState = errors.New("invalid queue item state")
)

// Ledger is the durable per-project task queue.
type Ledger struct {
	db  *pebblestore.DB
	ids *id.Generator

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedger returns a Ledger over db.
func NewLedger(db *pebblestore.DB) *Ledger {
	return &Ledger{db: db, ids: id.NewGenerator(), locks: make(map[string]*sync.Mutex)}
}

// projLock returns the mutex serializing transitions for one project.
func (l *Ledger) projLock(projectID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[projectID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[projectID] = m
	}
	return m
}

// Enqueue creates one pending item per given record that does not already
// have a non-terminal item. Re-running enqueue over the same records is a
// no-op and returns 0.
func (l *Ledger) Enqueue(ctx context.Context, projectID string, recordIDs []string, nowMs int64) (int, error) {
	if nowMs <= 0 {
		nowMs = time.Now().UnixMilli()
	}
	m := l.projLock(projectID)
	m.Lock()
	defer m.Unlock()

	b := l.db.NewBatch()
	defer b.Close()

	created := 0
	for _, rid := range recordIDs {
		if skip, err := l.hasOpenItem(projectID, rid); err != nil {
			return 0, err
		} else if skip {
			continue
		}
		itemID := l.ids.Next().String()
		item := &Item{
			ID:          itemID,
			ProjectID:   projectID,
			RecordID:    rid,
			Status:      StatusPending,
			CreatedAtMs: nowMs,
		}
		if err := pebblestore.BatchSetJSON(b, itemKey(itemID), item); err != nil {
			return 0, err
		}
		if err := b.Set(pendingKey(projectID, itemID), nil, nil); err != nil {
			return 0, err
		}
		if err := b.Set(byRecordKey(projectID, rid), []byte(itemID), nil); err != nil {
			return 0, err
		}
		created++
	}
	if created == 0 {
		return 0, nil
	}

	c, err := l.loadCounts(projectID)
	if err != nil {
		return 0, err
	}
	c.Pending += int64(created)
	c.Total += int64(created)
	if err := pebblestore.BatchSetJSON(b, countsKey(projectID), c); err != nil {
		return 0, err
	}
	if err := l.db.CommitBatch(ctx, b); err != nil {
		return 0, err
	}
	return created, nil
}

// hasOpenItem reports whether the record already has a pending or assigned
// item, consulting the byrecord guard.
func (l *Ledger) hasOpenItem(projectID, recordID string) (bool, error) {
	raw, err := l.db.Get(byRecordKey(projectID, recordID))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var item Item
	if err := l.db.GetJSON(itemKey(string(raw)), &item); err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return false, nil // dangling guard, allow re-enqueue
		}
		return false, err
	}
	return !item.Status.Terminal(), nil
}

// Get returns one item by id.
func (l *Ledger) Get(itemID string) (*Item, error) {
	var item Item
	if err := l.db.GetJSON(itemKey(itemID), &item); err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, itemID)
		}
		return nil, err
	}
	return &item, nil
}

// Stats returns the project's queue counters from a single read. A project
// that never enqueued anything reports all zeros.
func (l *Ledger) Stats(projectID string) (Counts, error) {
	return l.loadCounts(projectID)
}

func (l *Ledger) loadCounts(projectID string) (Counts, error) {
	var c Counts
	if err := l.db.GetJSON(countsKey(projectID), &c); err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return Counts{}, nil
		}
		return Counts{}, err
	}
	return c, nil
}

// Next claims the oldest pending item for workerID. The scan and the claim
// commit happen under the project lock, so concurrent callers each win a
// distinct item. Stale pending-index entries found on the way (a racing
// transition that already moved the item) are dropped and the scan moves to
// the next candidate. Returns ErrQueueEmpty when nothing is pending.
func (l *Ledger) Next(ctx context.Context, projectID, workerID string, nowMs int64) (*Item, error) {
	if nowMs <= 0 {
		nowMs = time.Now().UnixMilli()
	}
	m := l.projLock(projectID)
	m.Lock()
	defer m.Unlock()

	prefix := pendingPrefix(projectID)
	it, err := l.db.NewPrefixIter(prefix)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	b := l.db.NewBatch()
	defer b.Close()

	for it.First(); it.Valid(); it.Next() {
		itemID := string(it.Key()[len(prefix):])
		var item Item
		if err := l.db.GetJSON(itemKey(itemID), &item); err != nil {
			if errors.Is(err, pebblestore.ErrNotFound) {
				_ = b.Delete(pendingKey(projectID, itemID), nil)
				continue
			}
			return nil, err
		}
		if item.Status != StatusPending {
			_ = b.Delete(pendingKey(projectID, itemID), nil)
			continue
		}

		item.Status = StatusAssigned
		item.WorkerID = workerID
		item.AssignedAtMs = nowMs
		if err := pebblestore.BatchSetJSON(b, itemKey(itemID), &item); err != nil {
			return nil, err
		}
		if err := b.Delete(pendingKey(projectID, itemID), nil); err != nil {
			return nil, err
		}
		if err := b.Set(assignedKey(workerID, itemID), []byte(projectID), nil); err != nil {
			return nil, err
		}
		c, err := l.loadCounts(projectID)
		if err != nil {
			return nil, err
		}
		c.Pending--
		c.Assigned++
		if err := pebblestore.BatchSetJSON(b, countsKey(projectID), c); err != nil {
			return nil, err
		}
		if err := l.db.CommitBatch(ctx, b); err != nil {
			return nil, err
		}
		return &item, nil
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	// flush any stale index deletions before reporting exhaustion
	if b.Count() > 0 {
		if err := l.db.CommitBatch(ctx, b); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: project %s", ErrQueueEmpty, projectID)
}

// Complete moves an assigned item to completed and stamps the completion
// time. It returns the updated item plus the worker's remaining open
// assignment count, which callers use to decide whether the worker leaves
// in_task.
func (l *Ledger) Complete(ctx context.Context, itemID string, nowMs int64) (*Item, int, error) {
	return l.finish(ctx, itemID, StatusCompleted, nowMs)
}

// Skip moves an item to skipped. Valid from assigned, or from pending for an
// administrative force-skip. Terminal items are rejected with
// ErrInvalidState both here and in Complete; terminal transitions are not
// idempotent, a second call must not restamp timestamps.
func (l *Ledger) Skip(ctx context.Context, itemID string, nowMs int64) (*Item, int, error) {
	return l.finish(ctx, itemID, StatusSkipped, nowMs)
}

func (l *Ledger) finish(ctx context.Context, itemID string, target Status, nowMs int64) (*Item, int, error) {
	if nowMs <= 0 {
		nowMs = time.Now().UnixMilli()
	}
	item, err := l.Get(itemID)
	if err != nil {
		return nil, 0, err
	}

	m := l.projLock(item.ProjectID)
	m.Lock()
	defer m.Unlock()

	// reload under the lock
	item, err = l.Get(itemID)
	if err != nil {
		return nil, 0, err
	}
	fromPending := item.Status == StatusPending && target == StatusSkipped
	if item.Status != StatusAssigned && !fromPending {
		return nil, 0, fmt.Errorf("%w: %s is %s, cannot move to %s", ErrInvalidState, itemID, item.Status, target)
	}

	b := l.db.NewBatch()
	defer b.Close()

	prev := item.Status
	worker := item.WorkerID
	item.Status = target
	item.CompletedAtMs = nowMs
	if err := pebblestore.BatchSetJSON(b, itemKey(itemID), item); err != nil {
		return nil, 0, err
	}
	c, err := l.loadCounts(item.ProjectID)
	if err != nil {
		return nil, 0, err
	}
	if fromPending {
		if err := b.Delete(pendingKey(item.ProjectID, itemID), nil); err != nil {
			return nil, 0, err
		}
		c.Pending--
	} else {
		if err := b.Delete(assignedKey(worker, itemID), nil); err != nil {
			return nil, 0, err
		}
		c.Assigned--
	}
	if target == StatusCompleted {
		c.Completed++
	} else {
		c.Skipped++
	}
	if err := pebblestore.BatchSetJSON(b, countsKey(item.ProjectID), c); err != nil {
		return nil, 0, err
	}
	if err := l.db.CommitBatch(ctx, b); err != nil {
		return nil, 0, err
	}

	remaining := 0
	if prev == StatusAssigned && worker != "" {
		remaining, err = l.OpenAssignments(worker)
		if err != nil {
			return nil, 0, err
		}
	}
	return item, remaining, nil
}

// OpenAssignments counts the worker's currently assigned items across all
// projects.
func (l *Ledger) OpenAssignments(workerID string) (int, error) {
	it, err := l.db.NewPrefixIter(assignedPrefix(workerID))
	if err != nil {
		return 0, err
	}
	defer it.Close()
	n := 0
	for it.First(); it.Valid(); it.Next() {
		n++
	}
	return n, it.Error()
}

// AllCounts returns the queue counters for every project that has ever
// enqueued an item, keyed by project id.
func (l *Ledger) AllCounts() (map[string]Counts, error) {
	prefix := countsPrefix()
	it, err := l.db.NewPrefixIter(prefix)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	out := make(map[string]Counts)
	for it.First(); it.Valid(); it.Next() {
		projectID := string(it.Key()[len(prefix):])
		var c Counts
		if err := pebblestore.DecodeJSON(it.Value(), &c); err != nil {
			return nil, err
		}
		out[projectID] = c
	}
	return out, it.Error()
}
