package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ethogram/internal/config"
	"ethogram/internal/fileutil"
	"ethogram/internal/ledger"
	"ethogram/internal/paths"
	"ethogram/internal/preflight"
	"ethogram/internal/report"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show directory readiness, pending input and the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			lines = append(lines, readinessLines(preflight.RunAll(cfg), colorize)...)
			lines = append(lines, "")

			lines = append(lines, renderSectionHeader("Sessions", colorize)...)
			lines = append(lines, inputLines(cfg, colorize)...)
			lines = append(lines, reportLines(ctx, colorize)...)
			lines = append(lines, "")

			lines = append(lines, renderSectionHeader("Last run", colorize)...)
			err = ctx.withLedger(func(store *ledger.Store) error {
				run, err := store.LastRun(commandCtx(cmd))
				if err != nil {
					return err
				}
				lines = append(lines, lastRunLines(run, colorize)...)
				return nil
			})
			if err != nil {
				lines = append(lines, renderStatusLine("Ledger", statusError, err.Error(), colorize))
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}

func inputLines(cfg *config.Config, colorize bool) []string {
	files, err := paths.Discover(cfg.Paths.InputDir)
	if err != nil {
		return []string{renderStatusLine("Input", statusError, err.Error(), colorize)}
	}
	layout := paths.New(cfg)
	pending := 0
	for _, f := range files {
		if layout.Existing(paths.SubjectID(f), fileutil.Exists) == "" {
			pending++
		}
	}
	kind := statusInfo
	if pending > 0 {
		kind = statusWarn
	}
	lines := []string{renderStatusLine("Input", kind, fmt.Sprintf("%d files, %d pending", len(files), pending), colorize)}
	size, count, err := dirSize(cfg.Paths.OutputDir)
	outputKind := statusInfo
	message := fmt.Sprintf("%d files, %s", count, humanize.Bytes(uint64(size)))
	if err != nil {
		outputKind = statusWarn
		message = fmt.Sprintf("%s (incomplete: %v)", message, err)
	}
	return append(lines, renderStatusLine("Scored output", outputKind, message, colorize))
}

func reportLines(ctx *commandContext, colorize bool) []string {
	store, err := ctx.openReports()
	if err != nil {
		return []string{renderStatusLine("Reports", statusError, err.Error(), colorize)}
	}
	var lines []string
	for _, k := range []report.Kind{report.KindError, report.KindFlag} {
		subjects, err := store.Subjects(k)
		if err != nil {
			lines = append(lines, renderStatusLine(string(k)+" report", statusError, err.Error(), colorize))
			continue
		}
		kind := statusOK
		if len(subjects) > 0 {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(reportLabel(k), kind, fmt.Sprintf("%d subjects", len(subjects)), colorize))
	}
	return lines
}

func reportLabel(k report.Kind) string {
	if k == report.KindError {
		return "Errored"
	}
	return "Flagged"
}

func lastRunLines(run *ledger.Run, colorize bool) []string {
	if run == nil {
		return []string{renderStatusLine("Run", statusInfo, "none recorded", colorize)}
	}
	c := run.Counts
	kind := statusOK
	switch {
	case run.FinishedAt.IsZero():
		kind = statusWarn
	case c.Errored > 0 || c.Flagged > 0:
		kind = statusWarn
	}
	return []string{
		renderStatusLine("Run", statusInfo, fmt.Sprintf("%s (%s)", shortID(run.ID), humanize.Time(run.StartedAt)), colorize),
		renderStatusLine("Outcomes", kind, fmt.Sprintf("%d files: %d scored, %d flagged, %d error, %d skipped",
			c.Files, c.Scored, c.Flagged, c.Errored, c.Skipped), colorize),
		renderStatusLine("Elapsed", statusInfo, runElapsed(*run), colorize),
	}
}

// dirSize totals the regular files under dir. Unreadable entries are skipped
// and the first such error is returned alongside the partial totals.
func dirSize(dir string) (int64, int, error) {
	var (
		size     int64
		count    int
		firstErr error
	)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if d != nil && d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return nil
		}
		size += info.Size()
		count++
		return nil
	})
	if firstErr == nil {
		firstErr = walkErr
	}
	return size, count, firstErr
}
