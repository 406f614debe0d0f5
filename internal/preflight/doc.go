// Package preflight checks that the configured directories are usable before
// a batch starts. These are environment checks; per-session data validation
// lives in package qc.
package preflight
