// Package logging constructs the slog loggers used across bracket and
// standardizes the attribute vocabulary (component, listing_id, job_id,
// actor, correlation_id, event_type) so every transition and retry action is
// traceable by listing and job identifiers.
package logging
