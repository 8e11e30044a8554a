// Package httpserver exposes the engine's REST surface: project and record
// management, the queue operations workers drive, worker state, and the
// dashboard metrics endpoints.
package httpserver
