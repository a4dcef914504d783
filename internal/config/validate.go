package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProcessor(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProcessor() error {
	if c.Processor.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/bracket/config.toml"
		}
		return fmt.Errorf("processor.api_key is required. Set BRACKET_PROCESSOR_API_KEY env var or edit %s (create with 'bracket config init')", defaultPath)
	}
	if strings.TrimSpace(c.Processor.BaseURL) == "" {
		return errors.New("processor.base_url must be set")
	}
	parsed, err := url.Parse(c.Processor.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("processor.base_url %q is not a valid URL", c.Processor.BaseURL)
	}
	if c.Processor.RequestTimeout <= 0 {
		return errors.New("processor.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.MaxRetries < 0 {
		return errors.New("workflow.max_retries must not be negative")
	}
	if c.Workflow.BulkRetryLimit <= 0 {
		return errors.New("workflow.bulk_retry_limit must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}
