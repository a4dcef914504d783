package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bracket/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			written, err := config.CreateSample(target)
			if err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", written)
			fmt.Fprintln(out, "Edit the file to set the processor api_key (or export BRACKET_PROCESSOR_API_KEY) before starting bracketd.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Loaded configuration from %s\n", path)
			} else {
				fmt.Fprintln(out, "Using built-in defaults (no config file found)")
			}
			fmt.Fprintf(out, "  Data dir:          %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "  Log dir:           %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "  Socket:            %s\n", cfg.Paths.SocketPath)
			fmt.Fprintf(out, "  Processor URL:     %s\n", cfg.Processor.BaseURL)
			fmt.Fprintf(out, "  API key set:       %s\n", yesNo(strings.TrimSpace(cfg.Processor.APIKey) != ""))
			fmt.Fprintf(out, "  Max retries:       %d\n", cfg.Workflow.MaxRetries)
			fmt.Fprintf(out, "  Bulk retry limit:  %d\n", cfg.Workflow.BulkRetryLimit)
			fmt.Fprintf(out, "  Ntfy topic set:    %s\n", yesNo(strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""))
			fmt.Fprintf(out, "  Log level:         %s\n", cfg.Logging.Level)
			return nil
		},
	}
}
