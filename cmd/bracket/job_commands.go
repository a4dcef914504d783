package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bracket/internal/ipc"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var assetIDs []int64

	cmd := &cobra.Command{
		Use:   "submit <listing-id>",
		Short: "Submit a listing's bracket sets for HDR fusion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listingID, err := parseIDArg(args[0])
			if err != nil {
				return fmt.Errorf("invalid listing id %q", args[0])
			}
			if len(assetIDs) == 0 {
				return fmt.Errorf("at least one --asset is required")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Submit(ipc.SubmitRequest{
					ListingID: listingID,
					AssetIDs:  assetIDs,
					Actor:     ctx.actor(),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Submitted job %d (remote %s) for listing %d\n",
					resp.Job.ID, resp.Job.ExternalJobID, listingID)
				return nil
			})
		},
	}

	cmd.Flags().Int64SliceVar(&assetIDs, "asset", nil, "Media asset id to include (repeatable)")
	return cmd
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and drive processing jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsPollCommand(ctx))
	jobsCmd.AddCommand(newJobsCancelCommand(ctx))
	jobsCmd.AddCommand(newJobsMarkRetryCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var listingID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List processing jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.JobList(ipc.JobListRequest{Statuses: statuses, ListingID: listingID})
				if err != nil {
					return err
				}
				if len(resp.Jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs found")
					return nil
				}
				rows := make([][]string, 0, len(resp.Jobs))
				for _, job := range resp.Jobs {
					rows = append(rows, []string{
						formatID(job.ID),
						formatID(job.ListingID),
						statusLabel(job.Status),
						orDash(job.ExternalJobID),
						strconv.Itoa(job.RetryCount),
						orDash(job.UpdatedAt),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Listing", "Status", "Remote ID", "Retries", "Updated"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by job status (repeatable)")
	cmd.Flags().Int64Var(&listingID, "listing", 0, "Show only jobs for one listing")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job with its audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := parseIDArg(args[0])
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.JobDescribe(jobID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				job := resp.Job
				fmt.Fprintf(out, "Job %d  listing %d  %s\n", job.ID, job.ListingID, statusLabel(job.Status))
				fmt.Fprintf(out, "  Remote ID:  %s\n", orDash(job.ExternalJobID))
				fmt.Fprintf(out, "  Inputs:     %s\n", orDash(strings.Join(job.InputRefs, ", ")))
				fmt.Fprintf(out, "  Output:     %s\n", orDash(job.OutputRef))
				fmt.Fprintf(out, "  Retries:    %d\n", job.RetryCount)
				if job.ErrorMessage != "" {
					fmt.Fprintf(out, "  Error:      %s\n", job.ErrorMessage)
				}
				fmt.Fprintf(out, "  Started:    %s\n", orDash(job.StartedAt))
				fmt.Fprintf(out, "  Completed:  %s\n", orDash(job.CompletedAt))

				if len(resp.Events) > 0 {
					fmt.Fprintln(out, "Events:")
					for _, event := range resp.Events {
						fmt.Fprintf(out, "  %s  %s  %s -> %s  by %s\n",
							orDash(event.CreatedAt), event.EventType, orDash(event.OldValue), orDash(event.NewValue), event.Actor)
					}
				}
				return nil
			})
		},
	}
}

func newJobsPollCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "poll <job-id>",
		Short: "Reconcile one job with the fusion service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := parseIDArg(args[0])
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Poll(ipc.PollRequest{JobID: jobID, Actor: ctx.actor()})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Job %d is %s\n", resp.Job.ID, statusLabel(resp.Job.Status))
				if resp.Job.OutputRef != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  Output: %s\n", resp.Job.OutputRef)
				}
				if resp.Job.ErrorMessage != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  Error: %s\n", resp.Job.ErrorMessage)
				}
				return nil
			})
		},
	}
}

func newJobsCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a job that has not started processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := parseIDArg(args[0])
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Cancel(ipc.CancelRequest{JobID: jobID, Actor: ctx.actor()})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled job %d\n", resp.Job.ID)
				return nil
			})
		},
	}
}

func newJobsMarkRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-retry <job-id>",
		Short: "Flag a failed job for later resubmission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := parseIDArg(args[0])
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.MarkRetry(ipc.MarkRetryRequest{JobID: jobID, Actor: ctx.actor()})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked job %d for retry\n", resp.Job.ID)
				return nil
			})
		},
	}
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	var listingID int64
	var all bool

	cmd := &cobra.Command{
		Use:   "retry [job-id]",
		Short: "Resubmit failed jobs",
		Long: `Resubmit failed or pending-retry jobs against each listing's current
eligible assets. Select a single job by id, every failed job for one listing
with --listing, or all failed jobs with --all.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.RetryBatchRequest{Actor: ctx.actor(), All: all}
			if len(args) == 1 {
				jobID, err := parseIDArg(args[0])
				if err != nil {
					return fmt.Errorf("invalid job id %q", args[0])
				}
				req.JobID = &jobID
			}
			if listingID > 0 {
				req.ListingID = &listingID
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RetryBatch(req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Retried %d job(s), %d failure(s)\n",
					len(resp.Outcome.Retried), len(resp.Outcome.Failed))
				for _, failure := range resp.Outcome.Failed {
					fmt.Fprintf(out, "  job %d: %s\n", failure.JobID, failure.Err)
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&listingID, "listing", 0, "Retry every failed job for one listing")
	cmd.Flags().BoolVar(&all, "all", false, "Retry all failed and pending-retry jobs")
	return cmd
}
