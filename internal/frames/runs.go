package frames

import "math"

// Run is a maximal stretch [Start, End) of identical values.
type Run struct {
	Start int
	End   int
	Value float64
}

// Len returns the run length in frames.
func (r Run) Len() int { return r.End - r.Start }

func sameValue(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// Runs segments values into maximal runs. NaN samples form their own runs.
func Runs(values []float64) []Run {
	if len(values) == 0 {
		return nil
	}
	var runs []Run
	start := 0
	for i := 1; i <= len(values); i++ {
		if i == len(values) || !sameValue(values[i], values[start]) {
			runs = append(runs, Run{Start: start, End: i, Value: values[start]})
			start = i
		}
	}
	return runs
}

// Onsets returns the frames where a binary channel switches from off to on.
// Frame 0 is never an onset because it has no predecessor.
func Onsets(values []float64, off, on float64) []int {
	var out []int
	for i := 1; i < len(values); i++ {
		if values[i] == on && values[i-1] == off {
			out = append(out, i)
		}
	}
	return out
}

// FirstOnset returns the first off→on transition, or -1.
func FirstOnset(values []float64, off, on float64) int {
	for i := 1; i < len(values); i++ {
		if values[i] == on && values[i-1] == off {
			return i
		}
	}
	return -1
}

// PulseLengths returns, for every onset, the number of consecutive on frames
// starting at it.
func PulseLengths(values []float64, off, on float64) []int {
	onsets := Onsets(values, off, on)
	out := make([]int, 0, len(onsets))
	for _, start := range onsets {
		end := start
		for end < len(values) && values[end] == on {
			end++
		}
		out = append(out, end-start)
	}
	return out
}
