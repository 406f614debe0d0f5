package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONList encodes rows as a JSON array. An empty history or report
// prints [] so scripts can index the result without a null check.
func writeJSONList[T any](cmd *cobra.Command, rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	return writeJSON(cmd, rows)
}
