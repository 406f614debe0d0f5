package frames

// Tracking and derived column names. Stimulus columns are named by the
// stimulus registry.
const (
	ColFrame             = "frame"
	ColX                 = "x"
	ColY                 = "y"
	ColMotion            = "motion"
	ColSpeed             = "speed"
	ColSpeedSmoothed     = "speed_smoothed"
	ColLayer1            = "layer1"
	ColLayer1Denoised    = "layer1_denoised"
	ColLayer2            = "layer2"
	ColLayer2Denoised    = "layer2_denoised"
	ColResistant         = "resistant"
	ColResistantDenoised = "resistant_denoised"
	ColBehavior          = "behavior"
	ColBehaviorDenoised  = "behavior_denoised"
)

// TrackingColumns are the raw tracker columns accepted in telemetry input,
// in canonical order.
var TrackingColumns = []string{ColX, ColY, ColMotion, ColSpeed}

// LabelColumns are the classification outputs in canonical order.
var LabelColumns = []string{
	ColLayer1, ColLayer1Denoised,
	ColLayer2, ColLayer2Denoised,
	ColResistant, ColResistantDenoised,
	ColBehavior, ColBehaviorDenoised,
}

var reserved = func() map[string]struct{} {
	out := map[string]struct{}{ColFrame: {}, ColSpeedSmoothed: {}}
	for _, c := range TrackingColumns {
		out[c] = struct{}{}
	}
	for _, c := range LabelColumns {
		out[c] = struct{}{}
	}
	return out
}()

// IsReserved reports whether name is a tracking or derived column that a
// stimulus channel may not reuse.
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// OutputColumns returns the canonical primary output order for the given
// stimulus columns.
func OutputColumns(stimulusColumns []string) []string {
	cols := make([]string, 0, 2+len(stimulusColumns)+len(TrackingColumns)+len(LabelColumns))
	cols = append(cols, ColFrame)
	cols = append(cols, stimulusColumns...)
	cols = append(cols, TrackingColumns...)
	cols = append(cols, ColSpeedSmoothed)
	cols = append(cols, LabelColumns...)
	return cols
}
