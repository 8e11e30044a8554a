package runtime

import (
	"context"
	"errors"
	"time"

	cfgpkg "github.com/lowmanm/q-logic/internal/config"
	"github.com/lowmanm/q-logic/internal/metrics"
	"github.com/lowmanm/q-logic/internal/queue"
	"github.com/lowmanm/q-logic/internal/records"
	"github.com/lowmanm/q-logic/internal/registry"
	pebblestore "github.com/lowmanm/q-logic/internal/storage/pebble"
	"github.com/lowmanm/q-logic/internal/workforce"
)

// Options for building the Runtime.
type Options struct {
	DataDir string
	Config  cfgpkg.Config
}

// Runtime wires storage, config, and the domain stores for one instance.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config

	registry  *registry.Registry
	records   *records.Store
	ledger    *queue.Ledger
	tracker   *workforce.Tracker
	aggregate *metrics.Aggregator
}

// fsyncMode maps the config string onto the storage mode.
func fsyncMode(cfg cfgpkg.Config) pebblestore.FsyncMode {
	switch cfg.Fsync {
	case "always":
		return pebblestore.FsyncModeAlways
	case "never":
		return pebblestore.FsyncModeNever
	case "interval":
		return pebblestore.FsyncModeInterval
	default:
		return pebblestore.FsyncModeUnspecified
	}
}

// Open initializes the underlying storage and returns a wired Runtime.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         fsyncMode(opts.Config),
		FsyncInterval: time.Duration(opts.Config.FsyncIntervalMs) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}

	rt := &Runtime{db: db, config: opts.Config}
	rt.registry = registry.New(db)
	rt.records = records.New(db)
	rt.ledger = queue.NewLedger(db)
	rt.tracker = workforce.NewTracker(db, rt.ledger)
	rt.aggregate = metrics.New(rt.registry, rt.ledger, rt.tracker)
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple storage health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	return ctx.Err()
}

// DB exposes the underlying store for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Registry returns the project store.
func (r *Runtime) Registry() *registry.Registry { return r.registry }

// Records returns the record store.
func (r *Runtime) Records() *records.Store { return r.records }

// Ledger returns the queue ledger.
func (r *Runtime) Ledger() *queue.Ledger { return r.ledger }

// Tracker returns the workforce tracker.
func (r *Runtime) Tracker() *workforce.Tracker { return r.tracker }

// Metrics returns the metrics aggregator.
func (r *Runtime) Metrics() *metrics.Aggregator { return r.aggregate }
