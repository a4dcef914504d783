// Package logs tails the daemon log file for CLI diagnostics.
//
// It reads with bounded memory, supports "last N lines" via a negative
// offset, and resumes from a returned offset for follow-mode polling over
// the control socket.
package logs
