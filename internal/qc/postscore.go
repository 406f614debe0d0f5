package qc

import (
	"ethogram/internal/frames"
	"ethogram/internal/labels"
	"ethogram/internal/pose"
)

// Scored is a classified, aligned session.
type Scored struct {
	SubjectID string
	Table     *frames.Table
	// FirstOnset is the alignment onset in Table coordinates.
	FirstOnset int
	Pose       *frames.Table
}

// Result is the outcome of the post-score flagger.
type Result struct {
	Clean    bool
	Failures []*Failure
}

// Codes returns the triggered codes in registry order.
func (r Result) Codes() []Code {
	out := make([]Code, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.Code)
	}
	return out
}

// Postscore runs every non-fatal check and collects all that trigger.
func (g *Gate) Postscore(s Scored) Result {
	var failures []*Failure
	add := func(code Code, metrics Metrics) {
		if metrics != nil {
			failures = append(failures, &Failure{Code: code, Metrics: metrics})
		}
	}
	add(CodeBehaviorNaNExceeded, g.flagBehaviorNaN(s))
	add(CodeLowBaselineExploration, g.flagBaselineWalk(s))
	add(CodePoseViewNaNExceeded, g.flagPoseView(s))
	return Result{Clean: len(failures) == 0, Failures: failures}
}

func (g *Gate) flagBehaviorNaN(s Scored) Metrics {
	stream, ok := s.Table.Labels(frames.ColBehaviorDenoised)
	frac := 1.0
	if ok {
		frac = stream.MissingFraction()
	}
	if frac > g.cfg.QC.BehaviorNaNMax {
		return Metrics{"fraction": round4(frac), "max": g.cfg.QC.BehaviorNaNMax}
	}
	return nil
}

// BaselineWalkFraction returns the share of Walk frames in [onset-baseline,
// onset) of the denoised behavior stream, along with the clamped window
// length.
func BaselineWalkFraction(stream labels.Stream, onset, baseline int) (float64, int) {
	start := max(onset-baseline, 0)
	end := min(onset, stream.Len())
	if end <= start {
		return 0, 0
	}
	walk := 0
	for _, b := range stream.Values[start:end] {
		if b == labels.Walk {
			walk++
		}
	}
	return float64(walk) / float64(end-start), end - start
}

func (g *Gate) flagBaselineWalk(s Scored) Metrics {
	stream, ok := s.Table.Labels(frames.ColBehaviorDenoised)
	if !ok {
		stream = labels.NewStream(labels.Behavior, s.Table.Len())
	}
	baseline := g.cfg.Timebase.BaselineFrames()
	frac, window := BaselineWalkFraction(stream, s.FirstOnset, baseline)
	if frac < g.cfg.QC.BaselineWalkMin {
		return Metrics{
			"fraction":      round4(frac),
			"min":           g.cfg.QC.BaselineWalkMin,
			"window_frames": window,
		}
	}
	return nil
}

func (g *Gate) flagPoseView(s Scored) Metrics {
	if s.Pose == nil {
		return nil
	}
	frac := pose.ViewMissingFraction(s.Pose)
	if frac > g.cfg.QC.PoseViewNaNMax {
		return Metrics{"fraction": round4(frac), "max": g.cfg.QC.PoseViewNaNMax}
	}
	return nil
}
