package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bracket/internal/ipc"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification through the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestNotification()
				if err != nil {
					return err
				}
				if resp.Sent {
					fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Notifications are disabled (no ntfy topic configured)")
				}
				return nil
			})
		},
	}
}
