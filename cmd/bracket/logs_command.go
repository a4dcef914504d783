package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bracket/internal/ipc"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show daemon log output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: lines})
				if err != nil {
					return err
				}
				for _, line := range resp.Lines {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				if !follow {
					return nil
				}

				offset := resp.Offset
				for {
					select {
					case <-cmd.Context().Done():
						return nil
					default:
					}
					resp, err := client.LogTail(ipc.LogTailRequest{
						Offset:     offset,
						Follow:     true,
						WaitMillis: 2000,
					})
					if err != nil {
						return err
					}
					for _, line := range resp.Lines {
						fmt.Fprintln(cmd.OutOrStdout(), line)
					}
					offset = resp.Offset
				}
			})
		},
	}

	cmd.Flags().IntVar(&lines, "lines", 50, "number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep streaming new log lines")

	return cmd
}
