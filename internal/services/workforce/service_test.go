package workforcesvc

import (
	"context"
	"errors"
	"testing"

	cfgpkg "github.com/lowmanm/q-logic/internal/config"
	"github.com/lowmanm/q-logic/internal/runtime"
	"github.com/lowmanm/q-logic/internal/workforce"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Fsync = "never"
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Config: cfg})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { rt.Close() })
	return New(rt)
}

func TestChangeStateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, "Dana", "dana@example.com")
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.ChangeState(ctx, w.ID, "break")
	if err != nil || got.State != workforce.StateBreak {
		t.Fatalf("to break = %+v, %v", got, err)
	}

	if _, err := svc.ChangeState(ctx, w.ID, "sleeping"); !errors.Is(err, workforce.ErrInvalidState) {
		t.Fatalf("bogus state: %v", err)
	}
	if _, err := svc.ChangeState(ctx, w.ID, "in_task"); !errors.Is(err, workforce.ErrInvalidState) {
		t.Fatalf("requesting in_task: %v", err)
	}
	if _, err := svc.ChangeState(ctx, "missing", "break"); !errors.Is(err, workforce.ErrNotFound) {
		t.Fatalf("unknown worker: %v", err)
	}

	hist, err := svc.StateHistory(w.ID)
	if err != nil || len(hist) != 2 {
		t.Fatalf("history = %d, %v", len(hist), err)
	}
}
