// Package daemon wires the order store, workflow manager, and transition
// engine into a single long-running service and enforces single-instance
// execution with a file lock. The IPC layer calls into the Daemon; the Daemon
// owns nothing request-scoped itself and simply delegates to the components
// it composes.
package daemon
