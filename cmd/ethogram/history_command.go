package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ethogram/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var subject string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent batch runs, or the sessions of one subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(func(store *ledger.Store) error {
				if subject = strings.TrimSpace(subject); subject != "" {
					return showSubjectHistory(cmd, store, subject, limit, jsonOutput)
				}
				return showRunHistory(cmd, store, limit, jsonOutput)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Show session history for a subject")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func showRunHistory(cmd *cobra.Command, store *ledger.Store, limit int, jsonOutput bool) error {
	runs, err := store.Runs(commandCtx(cmd), limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSONList(cmd, runs)
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			humanize.Time(r.StartedAt),
			runElapsed(r),
			strconv.Itoa(r.Counts.Files),
			strconv.Itoa(r.Counts.Scored),
			strconv.Itoa(r.Counts.Flagged),
			strconv.Itoa(r.Counts.Errored),
			strconv.Itoa(r.Counts.Skipped),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Elapsed", "Files", "Scored", "Flagged", "Error", "Skipped"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
		nil,
	))
	return nil
}

func showSubjectHistory(cmd *cobra.Command, store *ledger.Store, subject string, limit int, jsonOutput bool) error {
	entries, err := store.Sessions(commandCtx(cmd), subject, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSONList(cmd, entries)
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(out, "No sessions recorded for %s\n", subject)
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			shortID(e.RunID),
			humanize.Time(e.RecordedAt),
			e.Outcome,
			strings.Join(e.Codes, ", "),
			strconv.Itoa(e.Frames),
			e.Output,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Recorded", "Outcome", "Codes", "Frames", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		nil,
	))
	return nil
}

func runElapsed(r ledger.Run) string {
	if r.FinishedAt.IsZero() {
		return "running"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
