// Package cleaner repairs short glitches in binary stimulus channels.
package cleaner

import (
	"ethogram/internal/config"
	"ethogram/internal/frames"
)

// Clean fills off-runs of at most k frames that sit between two on-runs, then
// trims on-runs of at most k frames that sit between two off-runs. Runs that
// touch either end of the sequence, or border a value that is neither off nor
// on, are left alone. values is modified in place.
func Clean(values []float64, det config.Detection, k int) {
	if len(values) == 0 || k <= 0 {
		return
	}
	repair(values, det.Off, det.On, k)
	repair(values, det.On, det.Off, k)
}

// repair overwrites every bounded run of target no longer than k with fill,
// where bounded means both neighbors are fill.
func repair(values []float64, target, fill float64, k int) {
	runs := frames.Runs(values)
	for i := 1; i < len(runs)-1; i++ {
		r := runs[i]
		if r.Value != target || r.Len() > k {
			continue
		}
		if runs[i-1].Value != fill || runs[i+1].Value != fill {
			continue
		}
		for j := r.Start; j < r.End; j++ {
			values[j] = fill
		}
	}
}

// CleanTable applies Clean to every non-ignored stimulus channel present in
// the table.
func CleanTable(t *frames.Table, stimuli []config.Stimulus, k int) {
	for _, s := range stimuli {
		if s.Ignore {
			continue
		}
		values, ok := t.Numeric(s.CSVColumn)
		if !ok {
			continue
		}
		Clean(values, s.Mapping(), k)
	}
}
