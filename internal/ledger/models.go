package ledger

import (
	"strings"
	"time"
)

// Run summarizes one batch invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Counts     Counts
}

// Counts tallies session outcomes.
type Counts struct {
	Files   int
	Scored  int
	Flagged int
	Errored int
	Skipped int
}

// Entry is one session outcome.
type Entry struct {
	RunID      string
	SubjectID  string
	Source     string
	Outcome    string
	Codes      []string
	Frames     int
	Duration   time.Duration
	Output     string
	RecordedAt time.Time
}

func joinCodes(codes []string) string { return strings.Join(codes, ",") }

func splitCodes(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
