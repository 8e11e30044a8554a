package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/lowmanm/q-logic/internal/config"
)

func TestOpenWiresStores(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	if rt.Registry() == nil || rt.Records() == nil || rt.Ledger() == nil || rt.Tracker() == nil || rt.Metrics() == nil {
		t.Fatal("expected all stores wired")
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestCloseIsIdempotentOnNilDB(t *testing.T) {
	var rt Runtime
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
