// Package id provides a 128-bit, lexicographically sortable identifier.
//
// The ID is 16 bytes big-endian: [8 bytes ms_timestamp][8 bytes sequence],
// so byte-wise key order preserves creation order. Queue items and task
// logs use these IDs, which is what makes the pending index FIFO by
// construction.
//
// The Generator is monotonic per process: a regressing clock pins to the
// last seen millisecond, and a sequence overflow within one millisecond
// waits for the next.
package id
