package config

import (
	"math"

	"ethogram/internal/frames"
)

// PeriodBounds is a schedule period resolved to a half-open frame range.
type PeriodBounds struct {
	Name  string
	Start int
	End   int
}

// SecondsToFrames converts a duration to the nearest whole frame count.
func (t Timebase) SecondsToFrames(seconds float64) int {
	return int(math.Round(seconds * t.FPS))
}

// FramesToSeconds converts a frame count to seconds.
func (t Timebase) FramesToSeconds(n int) float64 {
	return float64(n) / t.FPS
}

// Bounds returns the period schedule with cumulative frame boundaries,
// relative to the start of the baseline.
func (t Timebase) Bounds() []PeriodBounds {
	out := make([]PeriodBounds, 0, len(t.Periods))
	start := 0
	for _, p := range t.Periods {
		end := start + t.SecondsToFrames(p.Seconds)
		out = append(out, PeriodBounds{Name: p.Name, Start: start, End: end})
		start = end
	}
	return out
}

// BaselineFrames is the length of the first scheduled period; the alignment
// stimulus's first onset is expected right after it.
func (t Timebase) BaselineFrames() int {
	if len(t.Periods) == 0 {
		return 0
	}
	return t.SecondsToFrames(t.Periods[0].Seconds)
}

// SpanFrames is the full experiment length in frames.
func (t Timebase) SpanFrames() int {
	bounds := t.Bounds()
	if len(bounds) == 0 {
		return 0
	}
	return bounds[len(bounds)-1].End
}

// MMPerPixel returns the arena scale.
func (e Experiment) MMPerPixel() float64 {
	return e.ArenaWidthMM / e.ArenaWidthPX
}

func isReservedColumn(name string) bool {
	return frames.IsReserved(name)
}
