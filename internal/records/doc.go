// Package records stores the imported rows behind each project. Rows are
// schemaless at this layer: a record is an id plus a field map; the owning
// project's column descriptors give the fields meaning.
package records
