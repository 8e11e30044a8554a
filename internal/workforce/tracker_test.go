package workforce

import (
	"context"
	"errors"
	"testing"

	pebblestore "github.com/lowmanm/q-logic/internal/storage/pebble"
)

type fakeCounter struct{ open int }

func (f *fakeCounter) OpenAssignments(string) (int, error) { return f.open, nil }

func openTestTracker(t *testing.T) (*Tracker, *fakeCounter) {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	fc := &fakeCounter{}
	return NewTracker(db, fc), fc
}

func TestCreateWorker(t *testing.T) {
	tr, _ := openTestTracker(t)
	ctx := context.Background()

	w, err := tr.CreateWorker(ctx, "Dana", "dana@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.State != StateAvailable || w.ID == "" {
		t.Fatalf("worker = %+v", w)
	}

	if _, err := tr.CreateWorker(ctx, "Other", "DANA@example.com"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	got, err := tr.GetWorker(w.ID)
	if err != nil || got.Name != "Dana" {
		t.Fatalf("get = %+v, %v", got, err)
	}
	if _, err := tr.GetWorker("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCallerTransitions(t *testing.T) {
	tr, _ := openTestTracker(t)
	ctx := context.Background()
	w, err := tr.CreateWorker(ctx, "Sam", "sam@example.com")
	if err != nil {
		t.Fatal(err)
	}

	for _, target := range []State{StateBreak, StateWrapUp, StateAvailable, StateWrapUp, StateBreak} {
		got, err := tr.ChangeState(ctx, w.ID, target)
		if err != nil {
			t.Fatalf("to %s: %v", target, err)
		}
		if got.State != target {
			t.Fatalf("state = %s, want %s", got.State, target)
		}
	}

	if _, err := tr.ChangeState(ctx, w.ID, StateInTask); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("requesting in_task: %v", err)
	}
}

func TestStateBlockedWhileAssigned(t *testing.T) {
	tr, fc := openTestTracker(t)
	ctx := context.Background()
	w, err := tr.CreateWorker(ctx, "Lee", "lee@example.com")
	if err != nil {
		t.Fatal(err)
	}

	fc.open = 1
	if err := tr.BeginTask(ctx, w.ID, "p1", "r1", 0); err != nil {
		t.Fatalf("begin task: %v", err)
	}
	got, _ := tr.GetWorker(w.ID)
	if got.State != StateInTask {
		t.Fatalf("state after claim = %s", got.State)
	}

	if _, err := tr.ChangeState(ctx, w.ID, StateBreak); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("break while assigned: %v", err)
	}

	fc.open = 0
	if err := tr.FinishTask(ctx, w.ID, "p1", "r1", 0, false, 0); err != nil {
		t.Fatalf("finish task: %v", err)
	}
	got, _ = tr.GetWorker(w.ID)
	if got.State != StateAvailable {
		t.Fatalf("state after finish = %s", got.State)
	}
	if _, err := tr.ChangeState(ctx, w.ID, StateBreak); err != nil {
		t.Fatalf("break after finish: %v", err)
	}
}

func TestMultipleTasksReconcileOnLast(t *testing.T) {
	tr, fc := openTestTracker(t)
	ctx := context.Background()
	w, err := tr.CreateWorker(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}

	fc.open = 2
	if err := tr.BeginTask(ctx, w.ID, "p1", "r1", 0); err != nil {
		t.Fatal(err)
	}
	if err := tr.BeginTask(ctx, w.ID, "p1", "r2", 0); err != nil {
		t.Fatal(err)
	}

	// first completion leaves one assignment open: still in_task
	fc.open = 1
	if err := tr.FinishTask(ctx, w.ID, "p1", "r1", 0, false, 1); err != nil {
		t.Fatal(err)
	}
	got, _ := tr.GetWorker(w.ID)
	if got.State != StateInTask {
		t.Fatalf("state after first completion = %s", got.State)
	}

	fc.open = 0
	if err := tr.FinishTask(ctx, w.ID, "p1", "r2", 0, false, 0); err != nil {
		t.Fatal(err)
	}
	got, _ = tr.GetWorker(w.ID)
	if got.State != StateAvailable {
		t.Fatalf("state after last completion = %s", got.State)
	}
}

func TestTaskLogCloseAndDiscard(t *testing.T) {
	tr, _ := openTestTracker(t)
	ctx := context.Background()
	w, err := tr.CreateWorker(ctx, "Kim", "kim@example.com")
	if err != nil {
		t.Fatal(err)
	}

	if err := tr.BeginTask(ctx, w.ID, "p1", "r1", 5_000); err != nil {
		t.Fatal(err)
	}
	if err := tr.FinishTask(ctx, w.ID, "p1", "r1", 15_000, false, 0); err != nil {
		t.Fatal(err)
	}

	if err := tr.BeginTask(ctx, w.ID, "p1", "r2", 20_000); err != nil {
		t.Fatal(err)
	}
	// a skip discards the log rather than closing it
	if err := tr.FinishTask(ctx, w.ID, "p1", "r2", 30_000, true, 0); err != nil {
		t.Fatal(err)
	}

	logs, err := tr.Logs(w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 surviving log, got %d", len(logs))
	}
	if !logs[0].Closed() || logs[0].DurationSeconds() != 10 {
		t.Fatalf("log = %+v", logs[0])
	}
}

func TestStateHistoryIntervals(t *testing.T) {
	tr, _ := openTestTracker(t)
	ctx := context.Background()
	w, err := tr.CreateWorker(ctx, "Ira", "ira@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.ChangeState(ctx, w.ID, StateBreak); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.ChangeState(ctx, w.ID, StateAvailable); err != nil {
		t.Fatal(err)
	}

	hist, err := tr.StateHistory(w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 3 {
		t.Fatalf("expected 3 intervals, got %d", len(hist))
	}
	wantStates := []State{StateAvailable, StateBreak, StateAvailable}
	for i, sl := range hist {
		if sl.State != wantStates[i] {
			t.Fatalf("interval %d = %s, want %s", i, sl.State, wantStates[i])
		}
		closed := sl.EndedAtMs > 0
		if i < len(hist)-1 && !closed {
			t.Fatalf("interval %d left open", i)
		}
		if i == len(hist)-1 && closed {
			t.Fatalf("current interval unexpectedly closed")
		}
	}
}
