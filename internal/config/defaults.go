package config

const (
	defaultDataDir              = "~/.local/share/bracket"
	defaultLogDir               = "~/.local/share/bracket/logs"
	defaultProcessorBaseURL     = "https://api.fusionworks.example.com/v1"
	defaultProcessorTimeout     = 30
	defaultBulkRetryLimit       = 100
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "text"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Processor: Processor{
			BaseURL:        defaultProcessorBaseURL,
			RequestTimeout: defaultProcessorTimeout,
		},
		Workflow: Workflow{
			MaxRetries:     0,
			BulkRetryLimit: defaultBulkRetryLimit,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Jobs:           true,
			Delivery:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
