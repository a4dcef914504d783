// Package qc builds the reviewer-facing quality-control queue. The queue is
// stateless: it is recomputed from listing rows on every request so that
// priority scores always reflect the current clock, and nothing here writes
// back to the store.
package qc
