// Package dispatch orchestrates the task flow: enqueueing a project's
// records, claiming the next task for a worker, and recording completions
// and skips. It composes the queue ledger with the workforce tracker so a
// claim also opens the task log and flips the worker to in_task, and a
// completion closes both sides consistently.
package dispatch
