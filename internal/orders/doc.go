// Package orders persists listings, their media assets, HDR processing jobs,
// and the append-only audit event log in SQLite, and owns the canonical
// status enums for both.
//
// Treat this package as the single source of truth for production-pipeline
// semantics: the ops status adjacency table, the job status lifecycle, and
// the asset QC states all live here so no layer re-declares them. Writes
// that move a record between statuses go through compare-and-swap updates so
// two concurrent transition attempts on the same row cannot silently lose
// one update. Jobs are never physically deleted; terminal rows are retained
// for audit and history.
package orders
