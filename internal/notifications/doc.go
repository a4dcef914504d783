// Package notifications delivers workflow milestones via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when no topic is set. Per-category
// toggles let operators silence job chatter while keeping delivery and error
// alerts on. All workflow code depends only on the Service interface, so
// alternative transports slot in without touching callers.
package notifications
