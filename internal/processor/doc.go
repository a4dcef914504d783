// Package processor implements the HTTP client for the external HDR fusion
// service that combines a listing's bracket sets into finished images.
//
// The client is deliberately thin: it performs no retries and owns no state
// beyond its endpoint and shared secret. Retry policy belongs to the job
// lifecycle manager. Failures split into two classes the manager relies on:
// transient (network errors, 5xx responses) and upstream (explicit rejection
// or failure reported by the remote service). Response payloads are checked
// against a versioned JSON schema before use, since the remote metrics
// contract evolves independently of this codebase.
package processor
