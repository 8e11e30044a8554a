// Package pebblestore wraps Pebble with fsync policy, batches, snapshots,
// prefix scans, and minimal metrics hooks. It is the keyed-table substrate
// for every q-logic store: projects, records, queue items, workers, and
// task logs all live in one Pebble keyspace.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeInterval,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	// Atomic multi-key updates
//	b := db.NewBatch()
//	_ = b.Set([]byte("k"), []byte("v"), nil)
//	_ = db.CommitBatch(context.Background(), b)
//	b.Close()
//
//	// JSON convenience for entity records
//	_ = db.SetJSON([]byte("worker/abc"), worker)
//	err = db.GetJSON([]byte("worker/abc"), &worker)
package pebblestore
