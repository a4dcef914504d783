package testsupport

import (
	"path/filepath"
	"testing"

	"bracket/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.SocketPath = filepath.Join(base, "bracketd.sock")
	cfg.Processor.APIKey = "test"
	cfg.Processor.BaseURL = "https://processor.invalid/v1"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithMaxRetries sets the retry ceiling on the test config.
func WithMaxRetries(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.MaxRetries = limit
	}
}

// WithBulkRetryLimit sets the bulk retry cap on the test config.
func WithBulkRetryLimit(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.BulkRetryLimit = limit
	}
}
