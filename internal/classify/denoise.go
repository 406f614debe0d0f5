package classify

import (
	"math"

	"ethogram/internal/labels"
)

// DenoiseOptions configures the smooth-then-classify Layer1 variant.
type DenoiseOptions struct {
	Thresholds Thresholds
	// WindowFrames is the smoothing span converted from seconds.
	WindowFrames int
	// MicroBoutFrames is the longest Walk/Stationary/Freeze bout that gets
	// deleted. Zero keeps every bout.
	MicroBoutFrames int
	// Guard marks frames inside stimulus response windows where smoothing is
	// disabled. nil disables the guard.
	Guard []bool
}

// Denoised is the output of Denoise.
type Denoised struct {
	Smoothed []float64
	Labels   labels.Stream
}

// Denoise smooths speed, reclassifies the smoothed track with the Layer1
// precedence and deletes micro-bouts. It does not look at Layer1 output.
func Denoise(speed, motion []float64, opts DenoiseOptions) Denoised {
	smoothed := Smooth(speed, NewWindow(opts.WindowFrames), opts.Thresholds.High, opts.Guard)
	stream := Layer1(smoothed, motion, opts.Thresholds)
	DropMicroBouts(stream, opts.MicroBoutFrames)
	return Denoised{Smoothed: smoothed, Labels: stream}
}

// Smooth returns the centered moving average of the finite samples in each
// window. The raw sample is kept when the window holds any value at or above
// high; after that check, frames flagged in guard also keep their raw value.
func Smooth(speed []float64, w Window, high float64, guard []bool) []float64 {
	n := len(speed)
	out := make([]float64, n)
	sums := make([]float64, n+1)
	finite := make([]int, n+1)
	for i, v := range speed {
		sums[i+1] = sums[i]
		finite[i+1] = finite[i]
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sums[i+1] += v
			finite[i+1]++
		}
	}
	fast := prefixCounts(n, func(i int) bool {
		return !math.IsNaN(speed[i]) && speed[i] >= high
	})

	for i := range speed {
		lo, hi := w.Bounds(i, n)
		if fast[hi+1]-fast[lo] > 0 {
			out[i] = speed[i]
			continue
		}
		if guard != nil && guard[i] {
			out[i] = speed[i]
			continue
		}
		count := finite[hi+1] - finite[lo]
		if count == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (sums[hi+1] - sums[lo]) / float64(count)
	}
	return out
}

// DropMicroBouts overwrites Walk, Stationary and Freeze bouts of at most
// maxLen frames with Missing. Jump bouts are always kept.
func DropMicroBouts(s labels.Stream, maxLen int) {
	if maxLen <= 0 {
		return
	}
	for _, bout := range s.Bouts() {
		switch bout.Label {
		case labels.Walk, labels.Stationary, labels.Freeze:
		default:
			continue
		}
		if bout.Len() > maxLen {
			continue
		}
		for i := bout.Start; i < bout.End; i++ {
			s.Values[i] = labels.Missing
		}
	}
}
