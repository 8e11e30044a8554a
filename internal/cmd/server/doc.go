// Package serverrun starts the engine's HTTP and gRPC servers from one set
// of options and blocks until shutdown. The CLI start command is a thin
// wrapper over Run.
package serverrun
