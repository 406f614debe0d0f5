package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ethogram/internal/qc"
	"ethogram/internal/report"
)

type reportRow struct {
	Kind      string `json:"kind"`
	Code      string `json:"code"`
	SubjectID string `json:"subject_id"`
	Metrics   string `json:"metrics"`
}

func newReportsCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var subject string
	var summary bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Show error and flag report rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseReportKinds(kind)
			if err != nil {
				return err
			}
			store, err := ctx.openReports()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if summary {
				return renderCodeSummary(cmd, store, kinds, jsonOutput)
			}

			var rows []reportRow
			for _, k := range kinds {
				list, err := store.Rows(k)
				if err != nil {
					return err
				}
				for _, r := range list {
					if subject != "" && r.SubjectID != subject {
						continue
					}
					rows = append(rows, reportRow{Kind: string(r.Kind), Code: string(r.Code), SubjectID: r.SubjectID, Metrics: r.Metrics})
				}
			}
			if jsonOutput {
				return writeJSONList(cmd, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No report rows")
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, []string{r.Kind, r.SubjectID, r.Code, r.Metrics})
			}
			fmt.Fprintln(out, renderTable([]string{"Kind", "Subject", "Code", "Metrics"}, table, nil, nil))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "all", "Report kind: error, flag or all")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Only show rows for this subject")
	cmd.Flags().BoolVar(&summary, "summary", false, "Count rows per code instead of listing them")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func parseReportKinds(value string) ([]report.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return []report.Kind{report.KindError, report.KindFlag}, nil
	case "error", "errors":
		return []report.Kind{report.KindError}, nil
	case "flag", "flags":
		return []report.Kind{report.KindFlag}, nil
	default:
		return nil, fmt.Errorf("unknown report kind %q (want error, flag or all)", value)
	}
}

func renderCodeSummary(cmd *cobra.Command, store *report.Store, kinds []report.Kind, jsonOutput bool) error {
	counts := make(map[string]int)
	for _, k := range kinds {
		byCode, err := store.CountByCode(k)
		if err != nil {
			return err
		}
		for code, n := range byCode {
			counts[string(code)] += n
		}
	}
	if jsonOutput {
		return writeJSON(cmd, counts)
	}

	// Rows follow registry order.
	var order []string
	for _, c := range append(slices.Clone(qc.FatalCodes), qc.FlagCodes...) {
		if counts[string(c)] > 0 {
			order = append(order, string(c))
		}
	}
	rows := make([][]string, 0, len(order))
	total := 0
	for _, code := range order {
		rows = append(rows, []string{code, strconv.Itoa(counts[code])})
		total += counts[code]
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Code", "Rows"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
		[]string{"Total", strconv.Itoa(total)},
	))
	return nil
}
