// Command bracket is the operator CLI for bracketd. All commands talk to the
// daemon over its Unix socket; nothing here touches the database directly.
package main
