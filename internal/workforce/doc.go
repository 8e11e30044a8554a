// Package workforce tracks workers, their activity state, and the task-log
// history that handle-time metrics are computed from.
//
// A worker is in_task exactly while it holds at least one open assignment.
// The in_task legs are system-driven (BeginTask / FinishTask, called by the
// dispatch layer); callers may only move a worker between available, break
// and wrap_up, and only while it holds no assignments. Every state change
// closes the current state-log interval and opens the next one.
package workforce
