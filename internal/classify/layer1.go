package classify

import (
	"math"

	"ethogram/internal/labels"
)

// Thresholds are the Layer1 speed cut-offs in mm/s.
type Thresholds struct {
	High float64
	Low  float64
}

// Frame applies the Layer1 precedence to one sample: Jump at or above High,
// then Freeze when the motion flag is 0, then Walk in [Low, High), then
// Stationary below Low. A non-finite speed that is not claimed by the motion
// rule yields Missing.
func Frame(speed, motion float64, th Thresholds) labels.Base {
	finite := !math.IsNaN(speed) && !math.IsInf(speed, 0)
	switch {
	case finite && speed >= th.High:
		return labels.Jump
	case motion == 0:
		return labels.Freeze
	case !finite:
		return labels.Missing
	case speed >= th.Low:
		return labels.Walk
	default:
		return labels.Stationary
	}
}

// Layer1 classifies every frame. motion may be nil when the tracker provides
// no motion flag.
func Layer1(speed, motion []float64, th Thresholds) labels.Stream {
	out := labels.NewStream(labels.Layer1, len(speed))
	for i, s := range speed {
		m := math.NaN()
		if motion != nil {
			m = motion[i]
		}
		out.Values[i] = Frame(s, m, th)
	}
	return out
}
