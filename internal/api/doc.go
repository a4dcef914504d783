// Package api defines wire-format types and converters for the IPC layer. It
// translates internal order models into transport-friendly DTOs so CLI and
// other consumers can render them without coupling to internal types.
//
// DTOs use camelCase JSON tags. Internal enums are exposed as lowercase
// strings and timestamps use RFC3339 with milliseconds.
package api
