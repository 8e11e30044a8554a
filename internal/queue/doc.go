// Package queue implements the durable task ledger: per-project FIFO queues
// of dispatchable items over Pebble, with atomic claims.
//
// An item moves pending -> assigned -> {completed, skipped}, or pending ->
// skipped for an administrative force-skip. Terminal states are final. Claims
// are serialized per project with a mutex held across the pending scan and
// the batch commit, so two concurrent Next calls never win the same item.
// Per-project counters live under q/counts and are written in the same batch
// as every transition, so a stats read is never torn.
package queue
