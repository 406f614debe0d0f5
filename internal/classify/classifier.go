package classify

import (
	"ethogram/internal/config"
	"ethogram/internal/labels"
)

// Classifier bundles the Layer1 and Layer2 algorithms with the thresholds and
// windows resolved from configuration.
type Classifier struct {
	thresholds    Thresholds
	denoiseFrames int
	microBout     int
	layer2Frames  int
	tieBreak      []labels.Base
	responseGuard bool
}

// New resolves classifier settings from cfg. It panics when the tie-break
// order is invalid; Load rejects such configs before they get here.
func New(cfg *config.Config) *Classifier {
	tb := cfg.Timebase
	order := cfg.TieBreakOrder()
	checkTieBreak(order)
	return &Classifier{
		thresholds:    Thresholds{High: cfg.Classify.HighSpeed, Low: cfg.Classify.LowSpeed},
		denoiseFrames: tb.SecondsToFrames(cfg.Classify.DenoiseWindowSec),
		microBout:     cfg.Classify.MicroBoutFrames,
		layer2Frames:  tb.SecondsToFrames(cfg.Classify.Layer2WindowSec),
		tieBreak:      order,
		responseGuard: cfg.Classify.ResponseGuard,
	}
}

// Thresholds returns the Layer1 speed cut-offs.
func (c *Classifier) Thresholds() Thresholds { return c.thresholds }

// Layer1 labels every frame from raw speed and the motion flag.
func (c *Classifier) Layer1(speed, motion []float64) labels.Stream {
	return Layer1(speed, motion, c.thresholds)
}

// Denoise runs the smooth-then-classify variant. response marks frames inside
// stimulus response windows; it is ignored unless the response guard is
// enabled.
func (c *Classifier) Denoise(speed, motion []float64, response []bool) Denoised {
	opts := DenoiseOptions{
		Thresholds:      c.thresholds,
		WindowFrames:    c.denoiseFrames,
		MicroBoutFrames: c.microBout,
	}
	if c.responseGuard {
		opts.Guard = response
	}
	return Denoise(speed, motion, opts)
}

// Layer2 runs the consensus vote over a Layer1 stream.
func (c *Classifier) Layer2(layer1 labels.Stream) labels.Stream {
	return Layer2(layer1, ConsensusOptions{WindowFrames: c.layer2Frames, TieBreak: c.tieBreak})
}

// Layer2Denoised runs the consensus vote with the half-missing rule over the
// denoised Layer1 stream.
func (c *Classifier) Layer2Denoised(layer1 labels.Stream) labels.Stream {
	return Layer2(layer1, ConsensusOptions{WindowFrames: c.layer2Frames, TieBreak: c.tieBreak, HalfMissing: true})
}
