// Package config loads, validates, and normalizes bracket configuration.
//
// Configuration comes from a TOML file (default ~/.config/bracket/config.toml
// or ./bracket.toml) with repository defaults applied first. Secrets such as
// the external processor API key may also be supplied through environment
// variables, which take precedence over file values. The processor shared
// secret is always injected into clients at construction time; nothing reads
// it from ambient process state afterwards.
package config
