package classify

// Window is a centered sliding window over a frame span.
type Window struct {
	// Length is the nominal window length, frames+1.
	Length int
	// Half is the reach on each side of the center frame.
	Half int
}

// NewWindow builds the centered window for a span of frames. The nominal
// length is always frames+1; the window reaches Length/2 frames to each side
// of its center.
func NewWindow(frames int) Window {
	if frames < 0 {
		frames = 0
	}
	length := frames + 1
	return Window{Length: length, Half: length / 2}
}

// Len returns the nominal window length.
func (w Window) Len() int { return w.Length }

// Bounds returns the inclusive window around center clamped to [0, n).
func (w Window) Bounds(center, n int) (lo, hi int) {
	lo = max(center-w.Half, 0)
	hi = min(center+w.Half, n-1)
	return lo, hi
}

// prefixCounts returns cumulative counts of frames where match holds, so the
// count over [lo, hi] is c[hi+1]-c[lo].
func prefixCounts(n int, match func(int) bool) []int {
	c := make([]int, n+1)
	for i := 0; i < n; i++ {
		c[i+1] = c[i]
		if match(i) {
			c[i+1]++
		}
	}
	return c
}
