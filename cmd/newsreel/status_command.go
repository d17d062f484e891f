package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"newsreel/internal/checkpoint"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [run-id]",
		Short: "Show recent runs or the checkpoint trail of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := checkpoint.Open(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("open checkpoint store: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return printRunTrail(cmd, store, args[0])
			}
			return printRuns(cmd, store)
		},
	}
}

func printRuns(cmd *cobra.Command, store *checkpoint.Store) error {
	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.RunID,
			run.LastNode,
			string(run.LastStatus),
			strconv.Itoa(run.Checkpoints),
			run.UpdatedAt.Local().Format(time.RFC3339),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]tableColumn{
			{name: "RUN"},
			{name: "LAST NODE"},
			{name: "STATUS"},
			{name: "CHECKPOINTS", numeric: true},
			{name: "UPDATED"},
		},
		rows,
	))
	return nil
}

func printRunTrail(cmd *cobra.Command, store *checkpoint.Store, runID string) error {
	checkpoints, err := store.ListRun(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("list run %s: %w", runID, err)
	}
	if len(checkpoints) == 0 {
		return fmt.Errorf("no checkpoints recorded for run %s", runID)
	}

	rows := make([][]string, 0, len(checkpoints))
	for _, cp := range checkpoints {
		rows = append(rows, []string{
			strconv.FormatInt(cp.ID, 10),
			cp.Node,
			string(cp.Status),
			cp.CreatedAt.Local().Format(time.RFC3339),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]tableColumn{
			{name: "ID", numeric: true},
			{name: "NODE"},
			{name: "STATUS"},
			{name: "CREATED"},
		},
		rows,
	))
	return nil
}
