package qc

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Code identifies a QC outcome. Fatal and flag codes live in disjoint
// registries.
type Code string

// Fatal codes in the order the pre-flight gate evaluates them.
const (
	CodeSchemaInvalid            Code = "schema_invalid"
	CodeStimulusCountMismatch    Code = "stimulus_count_mismatch"
	CodeStimulusDurationMismatch Code = "stimulus_duration_mismatch"
	CodeTimelineMisaligned       Code = "timeline_misaligned"
	CodeCentroidNaNExceeded      Code = "centroid_nan_exceeded"
	CodePoseMissing              Code = "pose_missing"
	CodePoseLengthMismatch       Code = "pose_length_mismatch"
	CodeErrorReadingFile         Code = "error_reading_file"
)

// Non-fatal codes raised by the post-score flagger.
const (
	CodeBehaviorNaNExceeded    Code = "behavior_nan_exceeded"
	CodeLowBaselineExploration Code = "low_baseline_exploration"
	CodePoseViewNaNExceeded    Code = "pose_view_nan_exceeded"
)

// FatalCodes is the fatal registry in evaluation order. error_reading_file is
// raised outside the gate when a raw file cannot be read at all.
var FatalCodes = []Code{
	CodeSchemaInvalid,
	CodeStimulusCountMismatch,
	CodeStimulusDurationMismatch,
	CodeTimelineMisaligned,
	CodeCentroidNaNExceeded,
	CodePoseMissing,
	CodePoseLengthMismatch,
	CodeErrorReadingFile,
}

// FlagCodes is the non-fatal registry.
var FlagCodes = []Code{
	CodeBehaviorNaNExceeded,
	CodeLowBaselineExploration,
	CodePoseViewNaNExceeded,
}

// IsFatal reports whether c belongs to the fatal registry.
func (c Code) IsFatal() bool { return slices.Contains(FatalCodes, c) }

// IsFlag reports whether c belongs to the non-fatal registry.
func (c Code) IsFlag() bool { return slices.Contains(FlagCodes, c) }

// Valid reports whether c is registered at all.
func (c Code) Valid() bool { return c.IsFatal() || c.IsFlag() }

// Metrics carries the check-specific numbers behind a failure.
type Metrics map[string]any

// Failure is a QC check that did not pass. It is a value, not a crash: the
// orchestrator turns it into a report row.
type Failure struct {
	Code    Code
	Metrics Metrics
}

func (f *Failure) Error() string {
	return fmt.Sprintf("qc %s: %s", f.Code, f.MetricsJSON())
}

// Fatal reports whether the failure aborts the session.
func (f *Failure) Fatal() bool { return f.Code.IsFatal() }

// MetricsJSON renders the metrics as compact JSON with sorted keys.
func (f *Failure) MetricsJSON() string {
	if len(f.Metrics) == 0 {
		return "{}"
	}
	data, err := json.Marshal(f.Metrics)
	if err != nil {
		return fmt.Sprintf(`{"marshal_error":%q}`, err.Error())
	}
	return string(data)
}

// ReadFailure wraps an unexpected I/O or parse error for a raw input.
func ReadFailure(path string, err error) *Failure {
	return &Failure{
		Code: CodeErrorReadingFile,
		Metrics: Metrics{
			"path":  path,
			"error": err.Error(),
		},
	}
}
