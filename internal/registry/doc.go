// Package registry stores provisioned projects: the mapping from a project
// to its backing table name, column descriptors, and optional screen-pop
// URL template. Schema inference and physical table provisioning happen
// upstream; the registry only records their output.
package registry
