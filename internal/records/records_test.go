package records

import (
	"context"
	"errors"
	"fmt"
	"testing"

	pebblestore "github.com/lowmanm/q-logic/internal/storage/pebble"
)

func openTestDB(t *testing.T) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPutBatchAndGet(t *testing.T) {
	s := New(openTestDB(t))
	rows := []map[string]any{
		{"customer_id": "A-1", "phone": "555-0101"},
		{"customer_id": "A-2", "phone": "555-0102"},
	}
	recs, err := s.PutBatch(context.Background(), "proj-1", rows)
	if err != nil {
		t.Fatalf("put batch: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	got, err := s.Get("proj-1", recs[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Fields["customer_id"] != "A-2" {
		t.Fatalf("fields = %+v", got.Fields)
	}
	if got.ProjectID != "proj-1" {
		t.Fatalf("project id = %q", got.ProjectID)
	}
}

func TestGetMissing(t *testing.T) {
	s := New(openTestDB(t))
	if _, err := s.Get("proj-1", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPreservesInsertionOrderAndPaginates(t *testing.T) {
	s := New(openTestDB(t))
	ctx := context.Background()
	var rows []map[string]any
	for i := 0; i < 5; i++ {
		rows = append(rows, map[string]any{"n": fmt.Sprintf("%d", i)})
	}
	recs, err := s.PutBatch(ctx, "proj-1", rows)
	if err != nil {
		t.Fatalf("put batch: %v", err)
	}

	page1, err := s.List("proj-1", "", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page1) != 3 || page1[0].ID != recs[0].ID {
		t.Fatalf("page1 = %d records starting %s", len(page1), page1[0].ID)
	}
	page2, err := s.List("proj-1", page1[2].ID, 3)
	if err != nil {
		t.Fatalf("list page2: %v", err)
	}
	if len(page2) != 2 || page2[0].ID != recs[3].ID {
		t.Fatalf("page2 = %+v", page2)
	}

	n, err := s.Count("proj-1")
	if err != nil || n != 5 {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func TestProjectsAreIsolated(t *testing.T) {
	s := New(openTestDB(t))
	ctx := context.Background()
	if _, err := s.PutBatch(ctx, "a", []map[string]any{{"k": "1"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PutBatch(ctx, "b", []map[string]any{{"k": "2"}, {"k": "3"}}); err != nil {
		t.Fatal(err)
	}
	n, err := s.Count("a")
	if err != nil || n != 1 {
		t.Fatalf("count a = %d, %v", n, err)
	}
	n, err = s.Count("b")
	if err != nil || n != 2 {
		t.Fatalf("count b = %d, %v", n, err)
	}
}
