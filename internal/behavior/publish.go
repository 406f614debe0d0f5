package behavior

import (
	"fmt"

	"ethogram/internal/config"
	"ethogram/internal/labels"
	"ethogram/internal/resistant"
)

// Promote maps Layer2 labels to the Behavior vocabulary. A Freeze frame whose
// Resistant label is Freeze becomes ResistantFreeze. Missing frames stay
// missing.
func Promote(layer2, res labels.Stream) labels.Stream {
	if layer2.Layer != labels.Layer2 {
		panic(fmt.Sprintf("behavior: expected a Layer2 stream, got %s", layer2.Layer))
	}
	if res.Layer != labels.Resistant {
		panic(fmt.Sprintf("behavior: expected a Resistant stream, got %s", res.Layer))
	}
	if layer2.Len() != res.Len() {
		panic(fmt.Sprintf("behavior: stream lengths differ (%d vs %d)", layer2.Len(), res.Len()))
	}
	out := labels.NewStream(labels.Behavior, layer2.Len())
	for i, b := range layer2.Values {
		if b == labels.Freeze && res.Values[i] == labels.Freeze {
			out.Values[i] = labels.ResistantFreeze
			continue
		}
		out.Set(i, b)
	}
	return out
}

// GapOptions bound the denoised gap filler.
type GapOptions struct {
	MaxGapFrames int
	// MinFlankFrames, when positive, is the shortest flanking bout allowed on
	// either side of a gap.
	MinFlankFrames int
	// Response lists windows in which gaps are never filled.
	Response []resistant.Window
}

// FillGaps repairs internal missing runs in place. A gap is filled with its
// flanking label only when both flanks match, the gap is at most
// MaxGapFrames long, both flanking bouts meet MinFlankFrames, and the gap
// does not touch a response window. Flank lengths are measured on the stream
// as it was before any gap was filled. It returns the number of frames filled.
func FillGaps(s labels.Stream, opts GapOptions) int {
	bouts := s.Bouts()
	filled := 0
	for k := 1; k < len(bouts)-1; k++ {
		gap := bouts[k]
		if gap.Label != labels.Missing {
			continue
		}
		left, right := bouts[k-1], bouts[k+1]
		if left.Label != right.Label {
			continue
		}
		if gap.Len() > opts.MaxGapFrames {
			continue
		}
		if opts.MinFlankFrames > 0 && (left.Len() < opts.MinFlankFrames || right.Len() < opts.MinFlankFrames) {
			continue
		}
		if overlapsAny(gap, opts.Response) {
			continue
		}
		for i := gap.Start; i < gap.End; i++ {
			s.Values[i] = left.Label
		}
		filled += gap.Len()
	}
	return filled
}

func overlapsAny(gap labels.Bout, windows []resistant.Window) bool {
	for _, w := range windows {
		if w.Overlaps(gap.Start, gap.End) {
			return true
		}
	}
	return false
}

// Publisher produces the plain and denoised Behavior streams.
type Publisher struct {
	maxGapFrames   int
	minFlankFrames int
	responseGuard  bool
}

// New resolves gap repair settings from cfg.
func New(cfg *config.Config) *Publisher {
	return &Publisher{
		maxGapFrames:   cfg.Timebase.SecondsToFrames(cfg.Behavior.MaxGapSeconds),
		minFlankFrames: cfg.Behavior.MinFlankFrames,
		responseGuard:  cfg.Behavior.ResponseGuard,
	}
}

// Publish maps Layer2 and Resistant into the Behavior vocabulary without any
// repair.
func (p *Publisher) Publish(layer2, res labels.Stream) labels.Stream {
	return Promote(layer2, res)
}

// PublishDenoised maps the denoised inputs and then fills bounded gaps.
// response is consulted only when the response guard is enabled.
func (p *Publisher) PublishDenoised(layer2, res labels.Stream, response []resistant.Window) (labels.Stream, int) {
	out := Promote(layer2, res)
	opts := GapOptions{MaxGapFrames: p.maxGapFrames, MinFlankFrames: p.minFlankFrames}
	if p.responseGuard {
		opts.Response = response
	}
	filled := FillGaps(out, opts)
	return out, filled
}
