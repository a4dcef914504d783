package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bracket/internal/ipc"
)

func newTransitionCommand(ctx *commandContext) *cobra.Command {
	var privileged bool
	var notes string

	cmd := &cobra.Command{
		Use:   "transition <listing-id> <status>",
		Short: "Move a listing to a new production status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			listingID, err := parseIDArg(args[0])
			if err != nil {
				return fmt.Errorf("invalid listing id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Transition(ipc.TransitionRequest{
					ListingID:  listingID,
					Target:     args[1],
					Actor:      ctx.actor(),
					Privileged: privileged,
					Notes:      notes,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Listing %d is now %s\n",
					resp.Listing.ID, statusLabel(resp.Listing.OpsStatus))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&privileged, "force", false, "Bypass the transition table (administrative override)")
	cmd.Flags().StringVar(&notes, "notes", "", "Optional notes recorded on the audit event")
	return cmd
}

func newQCCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "qc",
		Short: "Show the review queue in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QCQueue()
				if err != nil {
					return err
				}
				if len(resp.Entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Review queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(resp.Entries))
				for _, entry := range resp.Entries {
					rows = append(rows, []string{
						formatID(entry.ListingID),
						entry.Address,
						statusLabel(entry.OpsStatus),
						yesNo(entry.IsRush),
						formatCount(entry.HoursWaiting),
						formatCount(entry.PriorityScore),
						statusLabel(entry.PriorityLevel),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Listing", "Address", "Status", "Rush", "Waiting (h)", "Score", "Priority"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newEventsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "events <listing-id>",
		Short: "Show a listing's audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listingID, err := parseIDArg(args[0])
			if err != nil {
				return fmt.Errorf("invalid listing id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Events(listingID)
				if err != nil {
					return err
				}
				if len(resp.Events) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No events recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Events))
				for _, event := range resp.Events {
					rows = append(rows, []string{
						orDash(event.CreatedAt),
						event.EventType,
						orDash(event.OldValue),
						orDash(event.NewValue),
						event.Actor,
						orDash(event.Notes),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Time", "Event", "From", "To", "Actor", "Notes"},
					rows,
					nil,
				))
				return nil
			})
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and order health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "bracketd running (pid %d)\n", resp.PID)
				if resp.StartedAt != "" {
					fmt.Fprintf(out, "  Started:   %s\n", resp.StartedAt)
				}
				fmt.Fprintf(out, "  Database:  %s\n", resp.DBPath)
				fmt.Fprintf(out, "  Socket:    %s\n", resp.SocketPath)
				fmt.Fprintf(out, "Jobs: %d total, %d active, %d failed, %d completed, %d cancelled\n",
					resp.Health.Total, resp.Health.Active, resp.Health.Failed,
					resp.Health.Completed, resp.Health.Cancelled)
				fmt.Fprintf(out, "Listings awaiting QC: %d\n", resp.Health.AwaitingQC)
				return nil
			})
		},
	}
}
