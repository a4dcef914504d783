// Package pipeline enforces the production-status state machine for listings.
//
// Every ops_status change flows through the Engine: it checks the transition
// against the fixed adjacency table, stamps milestone timestamps, and records
// one audit event per accepted transition under a compare-and-swap guard so
// concurrent attempts on the same listing cannot lose an update. Privileged
// actors may bypass the adjacency check as an administrative override.
// Secondary effects such as delivery notifications run after the transition
// commits and never roll it back.
package pipeline
