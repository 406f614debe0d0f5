package classify

import (
	"fmt"

	"ethogram/internal/labels"
)

// ConsensusOptions configures the Layer2 majority vote.
type ConsensusOptions struct {
	WindowFrames int
	// TieBreak lists Walk, Stationary and Freeze in priority order.
	TieBreak []labels.Base
	// HalfMissing requires more than half of the nominal window to carry a
	// label before the majority vote may answer.
	HalfMissing bool
}

// Layer2 runs the centered consensus over a Layer1-namespace stream. A Jump
// anywhere in the window wins outright; otherwise the most frequent of Walk,
// Stationary and Freeze wins, with ties going to the earliest class in
// TieBreak.
func Layer2(in labels.Stream, opts ConsensusOptions) labels.Stream {
	if in.Layer != labels.Layer1 {
		panic(fmt.Sprintf("classify: Layer2 expects a Layer1 stream, got %s", in.Layer))
	}
	checkTieBreak(opts.TieBreak)

	n := in.Len()
	w := NewWindow(opts.WindowFrames)
	minValid := w.Len() / 2

	jumps := prefixCounts(n, func(i int) bool { return in.Values[i] == labels.Jump })
	counts := make(map[labels.Base][]int, len(opts.TieBreak))
	for _, class := range opts.TieBreak {
		counts[class] = prefixCounts(n, func(i int) bool { return in.Values[i] == class })
	}

	out := labels.NewStream(labels.Layer2, n)
	for i := 0; i < n; i++ {
		lo, hi := w.Bounds(i, n)
		if jumps[hi+1]-jumps[lo] > 0 {
			out.Values[i] = labels.Jump
			continue
		}
		best := labels.Missing
		bestCount := 0
		valid := 0
		for _, class := range opts.TieBreak {
			c := counts[class][hi+1] - counts[class][lo]
			valid += c
			if c > bestCount {
				best, bestCount = class, c
			}
		}
		if valid == 0 {
			continue
		}
		if opts.HalfMissing && valid <= minValid {
			continue
		}
		out.Values[i] = best
	}
	return out
}

func checkTieBreak(order []labels.Base) {
	if len(order) != 3 {
		panic("classify: tie-break order must list walk, stationary and freeze")
	}
	seen := map[labels.Base]bool{}
	for _, b := range order {
		switch b {
		case labels.Walk, labels.Stationary, labels.Freeze:
		default:
			panic(fmt.Sprintf("classify: %s is not a tie-break class", b))
		}
		if seen[b] {
			panic(fmt.Sprintf("classify: duplicate tie-break class %s", b))
		}
		seen[b] = true
	}
}
