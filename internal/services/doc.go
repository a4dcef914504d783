// Package services defines shared utilities consumed by the job lifecycle
// manager, the status transition engine, and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp listing IDs, job IDs, actors, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across components (validation vs not-found vs
//     transient upstream vs upstream failure vs concurrency conflict).
//
// Use these helpers when wiring new operations so operational behaviour (error
// handling, observability, retries) stays uniform across the pipeline.
package services
