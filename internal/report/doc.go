// Package report stores the append-only error and flag tables.
//
// Each table is a CSV with columns kind, code, subject_id and metrics_blob.
// Rows are never edited or deleted. An append reads the existing table, adds
// the new rows and atomically replaces the file while holding both an
// in-process mutex and a file lock, so concurrent workers and concurrent
// processes cannot lose each other's rows.
package report
