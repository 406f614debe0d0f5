package session

import (
	"time"

	"ethogram/internal/ledger"
	"ethogram/internal/qc"
)

// Outcome is the terminal state of one file.
type Outcome string

const (
	OutcomeScored  Outcome = "scored"
	OutcomeFlagged Outcome = "flagged"
	OutcomeError   Outcome = "error"
	OutcomeSkipped Outcome = "skipped"
)

// Result describes how a file was handled.
type Result struct {
	SubjectID string
	Source    string
	Outcome   Outcome
	// Codes holds the fatal code for errors and every flag code for flagged
	// sessions, in registry order.
	Codes []qc.Code
	// Frames is the length of the aligned table, zero when scoring stopped
	// before alignment.
	Frames int
	// Output is the primary, quarantine or forensic location written.
	Output string
	// FilledGaps counts frames repaired in the denoised behavior stream.
	FilledGaps int
	Duration   time.Duration
}

func (r Result) entry(runID string, at time.Time) ledger.Entry {
	codes := make([]string, 0, len(r.Codes))
	for _, c := range r.Codes {
		codes = append(codes, string(c))
	}
	return ledger.Entry{
		RunID:      runID,
		SubjectID:  r.SubjectID,
		Source:     r.Source,
		Outcome:    string(r.Outcome),
		Codes:      codes,
		Frames:     r.Frames,
		Duration:   r.Duration,
		Output:     r.Output,
		RecordedAt: at,
	}
}

// Tally folds a result into batch counts.
func Tally(c *ledger.Counts, r Result) {
	c.Files++
	switch r.Outcome {
	case OutcomeScored:
		c.Scored++
	case OutcomeFlagged:
		c.Flagged++
	case OutcomeError:
		c.Errored++
	case OutcomeSkipped:
		c.Skipped++
	}
}
