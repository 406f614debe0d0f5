package resistant

import (
	"cmp"
	"slices"
)

// Window is a half-open frame interval [Start, End).
type Window struct {
	Start int
	End   int
}

// Len returns the window length in frames.
func (w Window) Len() int { return w.End - w.Start }

// Within reports whether w lies entirely inside [start, end).
func (w Window) Within(start, end int) bool {
	return w.Start >= start && w.End <= end
}

// Overlaps reports whether w shares at least one frame with [start, end).
func (w Window) Overlaps(start, end int) bool {
	return w.Start < end && start < w.End
}

// Around builds [t-pre, t+post+1) clamped to [0, n). The second return is
// false when clamping leaves nothing.
func Around(t, pre, post, n int) (Window, bool) {
	w := Window{Start: max(t-pre, 0), End: min(t+post+1, n)}
	return w, w.End > w.Start
}

// Merge sorts windows and joins any that overlap or touch. The input is not
// modified.
func Merge(windows []Window) []Window {
	if len(windows) == 0 {
		return nil
	}
	sorted := slices.Clone(windows)
	slices.SortFunc(sorted, func(a, b Window) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})
	out := []Window{sorted[0]}
	for _, w := range sorted[1:] {
		last := &out[len(out)-1]
		if w.Start <= last.End {
			last.End = max(last.End, w.End)
			continue
		}
		out = append(out, w)
	}
	return out
}

// Mask expands windows into a per-frame membership slice of length n.
func Mask(windows []Window, n int) []bool {
	mask := make([]bool, n)
	for _, w := range windows {
		for i := max(w.Start, 0); i < min(w.End, n); i++ {
			mask[i] = true
		}
	}
	return mask
}
