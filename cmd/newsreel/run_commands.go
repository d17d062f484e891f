package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"newsreel/internal/checkpoint"
	"newsreel/internal/config"
	"newsreel/internal/logging"
	"newsreel/internal/pipeline"
	"newsreel/internal/regen"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute a new staging run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, ctx, func(runCtx context.Context, p *pipeline.Pipeline) (pipeline.State, error) {
				return p.Run(runCtx)
			})
		},
	}
}

func newResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <run-id>",
		Short: "Resume an interrupted run from its latest checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := args[0]
			return executeRun(cmd, ctx, func(runCtx context.Context, p *pipeline.Pipeline) (pipeline.State, error) {
				return p.Resume(runCtx, runID)
			})
		},
	}
}

func executeRun(cmd *cobra.Command, ctx *commandContext, drive func(context.Context, *pipeline.Pipeline) (pipeline.State, error)) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// One run per data dir; a second invocation fails fast instead of
	// interleaving checkpoints.
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another newsreel run holds %s", cfg.LockPath())
	}
	defer lock.Unlock()

	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("newsreel-%s.log", time.Now().UTC().Format("20060102T150405Z")))
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := checkpoint.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open checkpoint store: %w", err)
	}
	defer store.Close()

	p, err := pipeline.New(cfg, store, logger)
	if err != nil {
		return err
	}

	state, err := drive(signalCtx, p)
	if err != nil {
		return err
	}
	printRunSummary(cmd, cfg, state)
	return nil
}

func printRunSummary(cmd *cobra.Command, cfg *config.Config, state pipeline.State) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s finished: %s\n", state.RunID, state.Outcome)
	fmt.Fprintf(out, "  stories: %d selected of %d fetched (%d duplicates removed)\n",
		len(state.Selected), state.Diagnostics.ItemsFetched, state.Diagnostics.DedupRemoved)
	if len(state.Diagnostics.FetchFailures) > 0 {
		fmt.Fprintf(out, "  fetch failures: %d\n", len(state.Diagnostics.FetchFailures))
	}
	fmt.Fprintf(out, "  draft: %d words after %d attempt(s)\n", state.Draft.WordCount, state.Diagnostics.AttemptsUsed)
	switch state.Outcome {
	case regen.StateAccepted:
		fmt.Fprintf(out, "  artifact: %s\n", state.ArtifactPath)
	case regen.StateEscalated:
		fmt.Fprintf(out, "  review package: %s\n", state.ReviewPath)
		fmt.Fprintf(out, "  review the package and adjust thresholds in %s\n", cfg.Paths.ReviewDir)
	}
}
