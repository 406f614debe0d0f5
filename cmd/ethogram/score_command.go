package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ethogram/internal/ledger"
	"ethogram/internal/mirror"
	"ethogram/internal/preflight"
	"ethogram/internal/session"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var workers int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "score [files...]",
		Short: "Score telemetry files (defaults to every file in input_dir)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workers.Count = workers
			}
			if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
				parts := make([]string, 0, len(failed))
				for _, r := range failed {
					parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
				}
				return fmt.Errorf("directories not ready: %s", strings.Join(parts, "; "))
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			reports, err := ctx.openReports()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg.Paths.ReportDir)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			batch, err := session.NewBatch(cfg, session.Options{
				Reports: reports,
				Ledger:  store,
				Mirror:  mirror.New(cfg, logger),
				Logger:  logger,
			})
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var summary session.Summary
			if len(args) == 0 {
				summary, err = batch.RunDir(runCtx)
			} else {
				files := make([]string, 0, len(args))
				for _, arg := range args {
					abs, absErr := filepath.Abs(arg)
					if absErr != nil {
						return fmt.Errorf("resolve %s: %w", arg, absErr)
					}
					files = append(files, abs)
				}
				summary, err = batch.Run(runCtx, files)
			}
			if errors.Is(err, session.ErrLocked) {
				return err
			}

			if jsonOutput {
				if encErr := writeJSON(cmd, summary); encErr != nil {
					return encErr
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			}
			if errors.Is(err, context.Canceled) {
				return fmt.Errorf("scoring interrupted after %d files: %w", summary.Counts.Files, err)
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Override the configured worker count")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run summary as JSON")
	return cmd
}

func renderSummary(s session.Summary) string {
	rows := make([][]string, 0, len(s.Results))
	for _, r := range s.Results {
		codes := make([]string, 0, len(r.Codes))
		for _, c := range r.Codes {
			codes = append(codes, string(c))
		}
		rows = append(rows, []string{
			r.SubjectID,
			string(r.Outcome),
			strings.Join(codes, ", "),
			strconv.Itoa(r.Frames),
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	c := s.Counts
	footer := []string{
		"Total " + strconv.Itoa(c.Files),
		fmt.Sprintf("%d scored, %d flagged, %d error, %d skipped", c.Scored, c.Flagged, c.Errored, c.Skipped),
		"", "", "",
	}
	out := renderTable(
		[]string{"Subject", "Outcome", "Codes", "Frames", "Elapsed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
		footer,
	)
	return fmt.Sprintf("Run %s\n%s", s.RunID, out)
}
