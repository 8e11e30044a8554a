package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	pebblestore "github.com/lowmanm/q-logic/internal/storage/pebble"
)

// ReclaimAbandoned returns items that sat in assigned longer than olderThanMs
// to the pending pool. The item keeps its original id, so it resumes its old
// position in the FIFO order. Disabled deployments simply never call this.
//
// The returned items are the pre-reclaim snapshots, worker reference intact,
// so the caller can discard the matching open task logs and reconcile worker
// states.
func (l *Ledger) ReclaimAbandoned(ctx context.Context, olderThanMs, nowMs int64, max int) ([]*Item, error) {
	if nowMs <= 0 {
		nowMs = time.Now().UnixMilli()
	}
	cutoff := nowMs - olderThanMs

	prefix := assignedRoot()
	it, err := l.db.NewPrefixIter(prefix)
	if err != nil {
		return nil, err
	}

	// collect candidates first; the per-item commit below takes project locks
	type cand struct{ workerID, itemID string }
	var cands []cand
	for it.First(); it.Valid(); it.Next() {
		rest := string(it.Key()[len(prefix):])
		sep := strings.IndexByte(rest, '/')
		if sep < 0 {
			continue
		}
		cands = append(cands, cand{workerID: rest[:sep], itemID: rest[sep+1:]})
	}
	scanErr := it.Error()
	it.Close()
	if scanErr != nil {
		return nil, scanErr
	}

	var reclaimed []*Item
	for _, c := range cands {
		if max > 0 && len(reclaimed) >= max {
			break
		}
		item, err := l.reclaimOne(ctx, c.workerID, c.itemID, cutoff)
		if err != nil {
			return reclaimed, err
		}
		if item != nil {
			reclaimed = append(reclaimed, item)
		}
	}
	return reclaimed, nil
}

// reclaimOne re-checks one candidate under its project lock and commits the
// assigned -> pending rollback if it is still eligible.
func (l *Ledger) reclaimOne(ctx context.Context, workerID, itemID string, cutoffMs int64) (*Item, error) {
	item, err := l.Get(itemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// dangling index entry
			return nil, l.db.Delete(assignedKey(workerID, itemID))
		}
		return nil, err
	}

	m := l.projLock(item.ProjectID)
	m.Lock()
	defer m.Unlock()

	item, err = l.Get(itemID)
	if err != nil {
		return nil, nil
	}
	if item.Status != StatusAssigned || item.AssignedAtMs > cutoffMs {
		return nil, nil
	}

	snapshot := *item

	b := l.db.NewBatch()
	defer b.Close()

	item.Status = StatusPending
	item.WorkerID = ""
	item.AssignedAtMs = 0
	if err := pebblestore.BatchSetJSON(b, itemKey(itemID), item); err != nil {
		return nil, err
	}
	if err := b.Delete(assignedKey(workerID, itemID), nil); err != nil {
		return nil, err
	}
	if err := b.Set(pendingKey(item.ProjectID, itemID), nil, nil); err != nil {
		return nil, err
	}
	c, err := l.loadCounts(item.ProjectID)
	if err != nil {
		return nil, err
	}
	c.Assigned--
	c.Pending++
	if err := pebblestore.BatchSetJSON(b, countsKey(item.ProjectID), c); err != nil {
		return nil, err
	}
	if err := l.db.CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
