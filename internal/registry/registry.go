package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	pebblestore "github.com/lowmanm/q-logic/internal/storage/pebble"
)

var (
	// ErrNotFound is returned when the referenced project does not exist.
	ErrNotFound = errors.New("project not found")
	// ErrDuplicateName is returned when a project with the same name already exists.
	ErrDuplicateName = errors.New("project name already exists")
)

// Column describes one column of a project's backing table.
type Column struct {
	PhysicalName string `json:"physical_name"`
	DisplayName  string `json:"display_name"`
	DataType     string `json:"data_type"`
	IsUniqueID   bool   `json:"is_unique_id"`
}

// Project is the provisioning record for one imported dataset.
type Project struct {
	ID                string   `json:"source_id"`
	Name              string   `json:"project_name"`
	TableName         string   `json:"table_name"`
	ScreenPopTemplate string   `json:"screen_pop_url_template,omitempty"`
	Columns           []Column `json:"columns"`
	CreatedAtMs       int64    `json:"created_at_ms"`
}

// UniqueColumn returns the column flagged is_unique_id, or nil if none is.
func (p *Project) UniqueColumn() *Column {
	for i := range p.Columns {
		if p.Columns[i].IsUniqueID {
			return &p.Columns[i]
		}
	}
	return nil
}

// CreateOptions carries the caller-supplied part of a new project.
type CreateOptions struct {
	Name              string
	TableName         string
	ScreenPopTemplate string
	Columns           []Column
}

// Registry is the durable project store.
type Registry struct {
	db *pebblestore.DB

	mu sync.Mutex // serializes Create for the name uniqueness check
}

// New returns a Registry over db.
func New(db *pebblestore.DB) *Registry {
	return &Registry{db: db}
}

// Create provisions a new project. Names are unique; at most one column may
// be flagged as the unique id.
func (r *Registry) Create(ctx context.Context, opts CreateOptions) (*Project, error) {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	table := strings.TrimSpace(opts.TableName)
	if table == "" {
		table = sanitizeTableName(name)
	}
	uniques := 0
	for _, c := range opts.Columns {
		if c.PhysicalName == "" {
			return nil, fmt.Errorf("column physical_name is required")
		}
		if c.IsUniqueID {
			uniques++
		}
	}
	if uniques > 1 {
		return nil, fmt.Errorf("at most one column may be marked is_unique_id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Get(nameIdxKey(name))
	if err == nil {
		return nil, ErrDuplicateName
	}
	if !errors.Is(err, pebblestore.ErrNotFound) {
		return nil, err
	}

	p := &Project{
		ID:                uuid.NewString(),
		Name:              name,
		TableName:         table,
		ScreenPopTemplate: opts.ScreenPopTemplate,
		Columns:           opts.Columns,
		CreatedAtMs:       time.Now().UnixMilli(),
	}

	b := r.db.NewBatch()
	defer b.Close()
	if err := pebblestore.BatchSetJSON(b, projectKey(p.ID), p); err != nil {
		return nil, err
	}
	if err := b.Set(nameIdxKey(name), []byte(p.ID), nil); err != nil {
		return nil, err
	}
	if err := r.db.CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the project by id.
func (r *Registry) Get(id string) (*Project, error) {
	var p Project
	if err := r.db.GetJSON(projectKey(id), &p); err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns all projects sorted by name.
func (r *Registry) List() ([]*Project, error) {
	it, err := r.db.NewPrefixIter(projectPrefix())
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []*Project
	for it.First(); it.Valid(); it.Next() {
		var p Project
		if err := pebblestore.DecodeJSON(it.Value(), &p); err != nil {
			return nil, err
		}
		cp := p
		out = append(out, &cp)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ResolveScreenPop renders the project's screen-pop URL for one record's
// field values. It returns "" when the project has no template or no unique
// id column, or when the record lacks a value for that column.
func ResolveScreenPop(p *Project, fields map[string]any) string {
	if p.ScreenPopTemplate == "" {
		return ""
	}
	uc := p.UniqueColumn()
	if uc == nil {
		return ""
	}
	v, ok := fields[uc.PhysicalName]
	if !ok || v == nil {
		return ""
	}
	return strings.ReplaceAll(p.ScreenPopTemplate, "{unique_id}", fmt.Sprintf("%v", v))
}

// sanitizeTableName derives a table name from a display name: lowercased,
// non-alphanumerics collapsed to underscores.
func sanitizeTableName(name string) string {
	var b strings.Builder
	lastUnder := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnder = false
		default:
			if !lastUnder && b.Len() > 0 {
				b.WriteByte('_')
				lastUnder = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
