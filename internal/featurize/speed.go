// Package featurize derives locomotion features missing from raw telemetry.
package featurize

import (
	"math"

	"ethogram/internal/frames"
)

// Scale converts tracker displacement per frame into mm/s.
type Scale struct {
	MMPerPixel float64
	FPS        float64
}

// Speed returns the per-frame centroid speed in mm/s. Frame 0 and any frame
// with a missing position on either side of the step are NaN.
func Speed(x, y []float64, scale Scale) []float64 {
	n := min(len(x), len(y))
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	out[0] = math.NaN()
	factor := scale.MMPerPixel * scale.FPS
	for i := 1; i < n; i++ {
		dx := x[i] - x[i-1]
		dy := y[i] - y[i-1]
		d := math.Hypot(dx, dy)
		if math.IsNaN(d) {
			out[i] = math.NaN()
			continue
		}
		out[i] = d * factor
	}
	return out
}

// EnsureSpeed adds the speed column from the centroid when the tracker did
// not provide one. It reports whether a column was derived.
func EnsureSpeed(t *frames.Table, scale Scale) bool {
	if t.Has(frames.ColSpeed) {
		return false
	}
	x, okX := t.Numeric(frames.ColX)
	y, okY := t.Numeric(frames.ColY)
	if !okX || !okY {
		return false
	}
	t.SetNumeric(frames.ColSpeed, Speed(x, y, scale))
	return true
}
