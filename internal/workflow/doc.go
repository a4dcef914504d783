// Package workflow coordinates the lifecycle of HDR fusion jobs.
//
// The Manager owns the job state machine: submit creates a remote job and its
// local record atomically, poll reconciles local state with the remote
// report, retry resubmits failed work against the listing's current asset
// set, and cancel withdraws jobs that have not started processing. Every
// operation is a request-scoped unit of work; there is no background
// scheduler, polling is driven externally. Operations on a single job are
// serialized through a per-job lock so concurrent poll/retry/cancel calls
// cannot interleave their writes.
package workflow
