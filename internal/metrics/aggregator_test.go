package metrics

import (
	"context"
	"testing"

	"github.com/lowmanm/q-logic/internal/queue"
	"github.com/lowmanm/q-logic/internal/registry"
	pebblestore "github.com/lowmanm/q-logic/internal/storage/pebble"
	"github.com/lowmanm/q-logic/internal/workforce"
)

type fixture struct {
	reg     *registry.Registry
	ledger  *queue.Ledger
	tracker *workforce.Tracker
	agg     *Aggregator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	reg := registry.New(db)
	ledger := queue.NewLedger(db)
	tracker := workforce.NewTracker(db, ledger)
	return &fixture{reg: reg, ledger: ledger, tracker: tracker, agg: New(reg, ledger, tracker)}
}

// closeLog records one finished task of the given duration for the worker.
func (f *fixture) closeLog(t *testing.T, workerID, projectID, recordID string, startMs, durMs int64) {
	t.Helper()
	ctx := context.Background()
	if err := f.tracker.BeginTask(ctx, workerID, projectID, recordID, startMs); err != nil {
		t.Fatal(err)
	}
	if err := f.tracker.FinishTask(ctx, workerID, projectID, recordID, startMs+durMs, false, 0); err != nil {
		t.Fatal(err)
	}
}

func TestWorkerAHT(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w, err := f.tracker.CreateWorker(ctx, "Dana", "dana@example.com")
	if err != nil {
		t.Fatal(err)
	}

	f.closeLog(t, w.ID, "p1", "r1", 1_000, 10_000)
	f.closeLog(t, w.ID, "p1", "r2", 20_000, 20_000)
	f.closeLog(t, w.ID, "p1", "r3", 50_000, 30_000)

	ht, err := f.agg.WorkerAHT(w.ID, "")
	if err != nil {
		t.Fatalf("worker aht: %v", err)
	}
	if ht.TaskCount != 3 {
		t.Fatalf("task count = %d", ht.TaskCount)
	}
	if ht.AHTSeconds == nil || *ht.AHTSeconds != 20.0 {
		t.Fatalf("aht = %v", ht.AHTSeconds)
	}
}

func TestAHTNoDataIsNotZero(t *testing.T) {
	f := newFixture(t)
	w, err := f.tracker.CreateWorker(context.Background(), "Sam", "sam@example.com")
	if err != nil {
		t.Fatal(err)
	}
	ht, err := f.agg.WorkerAHT(w.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if ht.TaskCount != 0 || ht.AHTSeconds != nil {
		t.Fatalf("expected no-data summary, got %+v", ht)
	}
}

func TestSkipDiscardedLogExcludedFromAHT(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w, err := f.tracker.CreateWorker(ctx, "Lee", "lee@example.com")
	if err != nil {
		t.Fatal(err)
	}

	f.closeLog(t, w.ID, "p1", "r1", 0, 10_000)
	f.closeLog(t, w.ID, "p1", "r2", 20_000, 20_000)

	// r3 is skipped: its log is discarded rather than closed
	if err := f.tracker.BeginTask(ctx, w.ID, "p1", "r3", 50_000); err != nil {
		t.Fatal(err)
	}
	if err := f.tracker.FinishTask(ctx, w.ID, "p1", "r3", 110_000, true, 0); err != nil {
		t.Fatal(err)
	}

	ht, err := f.agg.WorkerAHT(w.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if ht.TaskCount != 2 {
		t.Fatalf("task count = %d", ht.TaskCount)
	}
	if ht.AHTSeconds == nil || *ht.AHTSeconds != 15.0 {
		t.Fatalf("aht = %v", ht.AHTSeconds)
	}
}

func TestTeamAHTWithProjectFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w1, _ := f.tracker.CreateWorker(ctx, "A", "a@example.com")
	w2, _ := f.tracker.CreateWorker(ctx, "B", "b@example.com")

	f.closeLog(t, w1.ID, "p1", "r1", 0, 10_000)
	f.closeLog(t, w2.ID, "p1", "r2", 0, 30_000)
	f.closeLog(t, w2.ID, "p2", "r3", 0, 90_000)

	team, err := f.agg.TeamAHT("p1")
	if err != nil {
		t.Fatal(err)
	}
	if team.TaskCount != 2 || team.AHTSeconds == nil || *team.AHTSeconds != 20.0 {
		t.Fatalf("team aht = %+v", team)
	}

	all, err := f.agg.TeamAHT("")
	if err != nil {
		t.Fatal(err)
	}
	if all.TaskCount != 3 {
		t.Fatalf("all-projects count = %d", all.TaskCount)
	}
}

func TestAgentStates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w1, _ := f.tracker.CreateWorker(ctx, "A", "a@example.com")
	if _, err := f.tracker.CreateWorker(ctx, "B", "b@example.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tracker.ChangeState(ctx, w1.ID, workforce.StateBreak); err != nil {
		t.Fatal(err)
	}

	c, err := f.agg.AgentStates()
	if err != nil {
		t.Fatal(err)
	}
	if c.TotalWorkers != 2 {
		t.Fatalf("total = %d", c.TotalWorkers)
	}
	if c.ByState["available"] != 1 || c.ByState["break"] != 1 {
		t.Fatalf("census = %+v", c.ByState)
	}
	if _, ok := c.ByState["wrap_up"]; !ok {
		t.Fatal("expected zero-count states to be present")
	}
}

func TestLeaderboardOrderAndFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fast, _ := f.tracker.CreateWorker(ctx, "Fast", "fast@example.com")
	slow, _ := f.tracker.CreateWorker(ctx, "Slow", "slow@example.com")
	busy, _ := f.tracker.CreateWorker(ctx, "Busy", "busy@example.com")

	// busy: 3 tasks; fast and slow: 2 tasks each, fast with the lower AHT
	f.closeLog(t, busy.ID, "p1", "r1", 0, 30_000)
	f.closeLog(t, busy.ID, "p1", "r2", 40_000, 30_000)
	f.closeLog(t, busy.ID, "p1", "r3", 80_000, 30_000)
	f.closeLog(t, fast.ID, "p1", "r4", 0, 10_000)
	f.closeLog(t, fast.ID, "p1", "r5", 20_000, 10_000)
	f.closeLog(t, slow.ID, "p1", "r6", 0, 60_000)
	f.closeLog(t, slow.ID, "p1", "r7", 70_000, 60_000)

	rows, err := f.agg.Leaderboard("", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Name != "Busy" || rows[1].Name != "Fast" || rows[2].Name != "Slow" {
		t.Fatalf("order = %s, %s, %s", rows[0].Name, rows[1].Name, rows[2].Name)
	}

	filtered, err := f.agg.Leaderboard("", `task_count >= 2 && aht_seconds < 30.0`)
	if err != nil {
		t.Fatalf("filtered leaderboard: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Fast" {
		t.Fatalf("filtered = %+v", filtered)
	}

	if _, err := f.agg.Leaderboard("", "not a cel expression ((("); err == nil {
		t.Fatal("expected compile error for bad filter")
	}
}

func TestAllQueueStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.reg.Create(ctx, registry.CreateOptions{Name: "Outreach"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.ledger.Enqueue(ctx, p.ID, []string{"r1", "r2"}, 0); err != nil {
		t.Fatal(err)
	}

	stats, err := f.agg.AllQueueStats()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats[0].ProjectName != "Outreach" || stats[0].Pending != 2 || stats[0].Total != 2 {
		t.Fatalf("row = %+v", stats[0])
	}
}
