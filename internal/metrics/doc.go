// Package metrics derives dashboard statistics from the queue ledger and
// the workforce task-log history: average handle time, agent state census,
// leaderboard and per-project queue stats. All derivations are read-only and
// computed on demand; nothing here writes to the store.
package metrics
