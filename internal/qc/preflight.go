package qc

import (
	"math"

	"ethogram/internal/config"
	"ethogram/internal/frames"
	"ethogram/internal/pose"
)

// State is the pre-flight gate state.
type State int

const (
	StatePending State = iota
	StatePassed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePassed:
		return "passed"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Verdict is the terminal state of a gate run.
type Verdict struct {
	State   State
	Failure *Failure
}

// Err returns the failure as an error, or nil when the gate passed.
func (v Verdict) Err() error {
	if v.Failure == nil {
		return nil
	}
	return v.Failure
}

// Input is a raw session after stimulus cleaning.
type Input struct {
	SubjectID string
	Table     *frames.Table
	// Pose is nil when no pose file was found.
	Pose     *frames.Table
	PosePath string
}

type check struct {
	code Code
	run  func(Input) Metrics
}

// Gate runs the fatal pre-flight checks and the non-fatal post-score flags.
type Gate struct {
	cfg    *config.Config
	checks []check
}

// NewGate builds the gate from configuration.
func NewGate(cfg *config.Config) *Gate {
	g := &Gate{cfg: cfg}
	g.checks = []check{
		{CodeSchemaInvalid, g.checkSchema},
		{CodeStimulusCountMismatch, g.checkStimulusCount},
		{CodeStimulusDurationMismatch, g.checkStimulusDuration},
		{CodeTimelineMisaligned, g.checkTimeline},
		{CodeCentroidNaNExceeded, g.checkCentroid},
		{CodePoseMissing, g.checkPosePresent},
		{CodePoseLengthMismatch, g.checkPoseLength},
	}
	return g
}

// Preflight evaluates the fatal checks in registry order and stops at the
// first one that fails.
func (g *Gate) Preflight(in Input) Verdict {
	for _, c := range g.checks {
		if metrics := c.run(in); metrics != nil {
			return Verdict{State: StateFailed, Failure: &Failure{Code: c.code, Metrics: metrics}}
		}
	}
	return Verdict{State: StatePassed}
}

// knownColumns returns every column a raw telemetry file may carry.
func (g *Gate) knownColumns() map[string]bool {
	known := map[string]bool{frames.ColFrame: true}
	for _, c := range frames.TrackingColumns {
		known[c] = true
	}
	for _, s := range g.cfg.Stimuli {
		known[s.CSVColumn] = true
	}
	return known
}

func (g *Gate) requiredColumns() []string {
	required := []string{frames.ColFrame, frames.ColX, frames.ColY, frames.ColMotion}
	for _, s := range g.cfg.ActiveStimuli() {
		required = append(required, s.CSVColumn)
	}
	return required
}

func (g *Gate) checkSchema(in Input) Metrics {
	t := in.Table
	if t.Len() == 0 {
		return Metrics{"reason": "no frames"}
	}

	var missing []string
	for _, name := range g.requiredColumns() {
		if !t.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Metrics{"reason": "missing columns", "columns": missing}
	}

	known := g.knownColumns()
	var unknown []string
	for _, name := range t.Columns() {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return Metrics{"reason": "unknown columns", "columns": unknown}
	}

	malformed := map[string]int{}
	for col, count := range t.Malformed {
		if count > 0 {
			malformed[col] = count
		}
	}
	if len(malformed) > 0 {
		return Metrics{"reason": "unparseable cells", "cells": malformed}
	}

	if violations := g.domainViolations(t); len(violations) > 0 {
		return Metrics{"reason": "domain violation", "violations": violations}
	}

	if in.Pose != nil {
		if cols := pose.MissingColumns(in.Pose); len(cols) > 0 {
			return Metrics{"reason": "pose missing columns", "columns": cols}
		}
		if len(in.Pose.Malformed) > 0 {
			return Metrics{"reason": "pose unparseable cells", "cells": in.Pose.Malformed}
		}
	}
	return nil
}

// domainViolations counts out-of-domain samples per column.
func (g *Gate) domainViolations(t *frames.Table) map[string]int {
	out := map[string]int{}
	count := func(col string, bad func(i int, v float64) bool) {
		values, ok := t.Numeric(col)
		if !ok {
			return
		}
		n := 0
		for i, v := range values {
			if bad(i, v) {
				n++
			}
		}
		if n > 0 {
			out[col] = n
		}
	}

	count(frames.ColFrame, func(i int, v float64) bool { return v != float64(i) })
	count(frames.ColMotion, func(_ int, v float64) bool {
		return !math.IsNaN(v) && v != 0 && v != 1
	})
	count(frames.ColSpeed, func(_ int, v float64) bool {
		return !math.IsNaN(v) && (v < 0 || math.IsInf(v, 0))
	})
	for _, s := range g.cfg.ActiveStimuli() {
		det := s.Mapping()
		count(s.CSVColumn, func(_ int, v float64) bool {
			return !math.IsNaN(v) && v != det.Off && v != det.On
		})
	}
	return out
}

func (g *Gate) checkStimulusCount(in Input) Metrics {
	for _, s := range g.cfg.ActiveStimuli() {
		if s.ExpectedTrials <= 0 {
			continue
		}
		det := s.Mapping()
		onsets := frames.Onsets(in.Table.MustNumeric(s.CSVColumn), det.Off, det.On)
		if len(onsets) != s.ExpectedTrials {
			return Metrics{
				"stimulus": s.Name,
				"expected": s.ExpectedTrials,
				"observed": len(onsets),
				"onsets":   onsets,
			}
		}
	}
	return nil
}

func (g *Gate) checkStimulusDuration(in Input) Metrics {
	jitter := g.cfg.QC.DurationJitterFrames
	for _, s := range g.cfg.ActiveStimuli() {
		if s.ExpectedDurationFrames <= 0 {
			continue
		}
		det := s.Mapping()
		lengths := frames.PulseLengths(in.Table.MustNumeric(s.CSVColumn), det.Off, det.On)
		var bad []int
		for _, n := range lengths {
			if absInt(n-s.ExpectedDurationFrames) > jitter {
				bad = append(bad, n)
			}
		}
		if len(bad) > 0 {
			return Metrics{
				"stimulus":  s.Name,
				"expected":  s.ExpectedDurationFrames,
				"tolerance": jitter,
				"observed":  bad,
			}
		}
	}
	return nil
}

// FirstAlignmentOnset returns the first onset of the alignment stimulus in t,
// or -1.
func FirstAlignmentOnset(cfg *config.Config, t *frames.Table) int {
	s := cfg.AlignmentStimulus()
	values, ok := t.Numeric(s.CSVColumn)
	if !ok {
		return -1
	}
	det := s.Mapping()
	return frames.FirstOnset(values, det.Off, det.On)
}

func (g *Gate) checkTimeline(in Input) Metrics {
	tb := g.cfg.Timebase
	baseline := tb.BaselineFrames()
	span := tb.SpanFrames()
	onset := FirstAlignmentOnset(g.cfg, in.Table)
	n := in.Table.Len()
	if onset < 0 {
		return Metrics{"reason": "no alignment onset", "stimulus": g.cfg.Experiment.AlignmentStimulus}
	}
	headroom := onset
	tail := n - onset
	if headroom < baseline || tail < span-baseline {
		return Metrics{
			"first_onset":     onset,
			"frames":          n,
			"baseline_frames": baseline,
			"span_frames":     span,
			"headroom":        headroom,
			"tail":            tail,
		}
	}
	return nil
}

func (g *Gate) checkCentroid(in Input) Metrics {
	frac := in.Table.NaNFraction(frames.ColX, frames.ColY)
	if frac > g.cfg.QC.CentroidNaNMax {
		return Metrics{"fraction": round4(frac), "max": g.cfg.QC.CentroidNaNMax}
	}
	return nil
}

func (g *Gate) checkPosePresent(in Input) Metrics {
	if !g.cfg.Experiment.PoseRequired || in.Pose != nil {
		return nil
	}
	return Metrics{"path": in.PosePath}
}

func (g *Gate) checkPoseLength(in Input) Metrics {
	if in.Pose == nil {
		return nil
	}
	if in.Pose.Len() != in.Table.Len() {
		return Metrics{"pose_frames": in.Pose.Len(), "tracked_frames": in.Table.Len()}
	}
	return nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
