// Package ipc exposes daemon control via JSON-RPC over a Unix domain socket.
// The CLI is the only intended consumer; requests and responses reuse the api
// package's DTOs so both sides of the socket speak the same shapes.
package ipc
