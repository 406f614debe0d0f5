// Package main hosts the ethogram CLI entrypoint and command graph.
//
// The Cobra-based command tree scores telemetry batches, inspects the error
// and flag reports, browses the run ledger, checks directory readiness, and
// scaffolds configuration. Scoring logic lives in internal/session; commands
// here only resolve configuration, wire collaborators and render results.
package main
