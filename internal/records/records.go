package records

import (
	"context"
	"errors"
	"fmt"

	pebblestore "github.com/lowmanm/q-logic/internal/storage/pebble"
	"github.com/lowmanm/q-logic/pkg/id"
)

// ErrNotFound is returned when the referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Record is one imported row.
type Record struct {
	ID          string         `json:"record_id"`
	ProjectID   string         `json:"source_id"`
	Fields      map[string]any `json:"fields"`
	CreatedAtMs int64          `json:"created_at_ms"`
}

// Key layout:
//
//	record/<projectID>/<recordID> -> Record JSON
func recordKey(projectID, recordID string) []byte {
	return []byte(fmt.Sprintf("record/%s/%s", projectID, recordID))
}

func recordPrefix(projectID string) []byte {
	return []byte(fmt.Sprintf("record/%s/", projectID))
}

// Store is the durable record store.
type Store struct {
	db  *pebblestore.DB
	ids *id.Generator
}

// New returns a Store over db.
func New(db *pebblestore.DB) *Store {
	return &Store{db: db, ids: id.NewGenerator()}
}

// PutBatch writes rows for one project in a single commit and returns the
// stored records in insertion order. Ids are generated here; record order
// follows insertion order because ids sort by creation time.
func (s *Store) PutBatch(ctx context.Context, projectID string, rows []map[string]any) ([]*Record, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	b := s.db.NewBatch()
	defer b.Close()

	out := make([]*Record, 0, len(rows))
	for _, fields := range rows {
		rid := s.ids.Next()
		rec := &Record{
			ID:          rid.String(),
			ProjectID:   projectID,
			Fields:      fields,
			CreatedAtMs: rid.TimeMs(),
		}
		if err := pebblestore.BatchSetJSON(b, recordKey(projectID, rec.ID), rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one record.
func (s *Store) Get(projectID, recordID string) (*Record, error) {
	var rec Record
	if err := s.db.GetJSON(recordKey(projectID, recordID), &rec); err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List returns up to limit records for a project in insertion order,
// starting after the given record id. Pass afterID == "" for the first page
// and limit <= 0 for no cap.
func (s *Store) List(projectID, afterID string, limit int) ([]*Record, error) {
	it, err := s.db.NewPrefixIter(recordPrefix(projectID))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []*Record
	if afterID == "" {
		it.First()
	} else {
		it.SeekGE(recordKey(projectID, afterID))
		if it.Valid() && string(it.Key()) == string(recordKey(projectID, afterID)) {
			it.Next()
		}
	}
	for ; it.Valid(); it.Next() {
		var rec Record
		if err := pebblestore.DecodeJSON(it.Value(), &rec); err != nil {
			return nil, err
		}
		cp := rec
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of records stored for a project.
func (s *Store) Count(projectID string) (int64, error) {
	it, err := s.db.NewPrefixIter(recordPrefix(projectID))
	if err != nil {
		return 0, err
	}
	defer it.Close()
	var n int64
	for it.First(); it.Valid(); it.Next() {
		n++
	}
	return n, it.Error()
}
