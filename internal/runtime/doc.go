// Package runtime wires storage, configuration and the domain stores into a
// single-node engine instance. Servers and the CLI talk to the stores
// through a Runtime rather than opening Pebble themselves.
package runtime
