package resistant

import (
	"fmt"

	"ethogram/internal/config"
	"ethogram/internal/frames"
	"ethogram/internal/labels"
)

// classOrder is the write order for resistant labels, lowest priority first
// so later classes overwrite earlier ones.
var classOrder = []labels.Base{labels.Freeze, labels.Stationary, labels.Walk}

// Detector builds stimulus coverage windows and marks label bouts that fully
// cover one.
type Detector struct {
	stimuli    []config.Stimulus
	preFrames  int
	postFrames int
}

// New resolves padding and the active stimulus channels from cfg.
func New(cfg *config.Config) *Detector {
	tb := cfg.Timebase
	return &Detector{
		stimuli:    cfg.ActiveStimuli(),
		preFrames:  tb.SecondsToFrames(cfg.Resistant.PreSeconds),
		postFrames: tb.SecondsToFrames(cfg.Resistant.PostSeconds),
	}
}

// NewWithPadding builds a detector from explicit frame padding.
func NewWithPadding(stimuli []config.Stimulus, preFrames, postFrames int) *Detector {
	return &Detector{stimuli: stimuli, preFrames: preFrames, postFrames: postFrames}
}

// Onsets returns the off→on transitions of every active stimulus present in
// the table, keyed by stimulus name.
func (d *Detector) Onsets(t *frames.Table) map[string][]int {
	out := make(map[string][]int, len(d.stimuli))
	for _, stim := range d.stimuli {
		values, ok := t.Numeric(stim.CSVColumn)
		if !ok {
			continue
		}
		det := stim.Mapping()
		out[stim.Name] = frames.Onsets(values, det.Off, det.On)
	}
	return out
}

// CoverageWindows returns the merged [onset-pre, onset+post+1) windows across
// all stimulus channels.
func (d *Detector) CoverageWindows(t *frames.Table) []Window {
	n := t.Len()
	var windows []Window
	for _, onsets := range d.Onsets(t) {
		for _, onset := range onsets {
			if w, ok := Around(onset, d.preFrames, d.postFrames, n); ok {
				windows = append(windows, w)
			}
		}
	}
	return Merge(windows)
}

// ResponseWindows returns the merged post-stimulus windows [onset,
// onset+post) used to suppress smoothing and gap repair.
func (d *Detector) ResponseWindows(t *frames.Table) []Window {
	n := t.Len()
	var windows []Window
	for _, onsets := range d.Onsets(t) {
		for _, onset := range onsets {
			w := Window{Start: onset, End: min(onset+d.postFrames, n)}
			if w.End > w.Start {
				windows = append(windows, w)
			}
		}
	}
	return Merge(windows)
}

// Detect relabels every Freeze, Stationary or Walk bout of the Layer2 stream
// that fully contains at least one coverage window. Frames outside such bouts
// are missing.
func Detect(layer2 labels.Stream, windows []Window) labels.Stream {
	if layer2.Layer != labels.Layer2 {
		panic(fmt.Sprintf("resistant: Detect expects a Layer2 stream, got %s", layer2.Layer))
	}
	out := labels.NewStream(labels.Resistant, layer2.Len())
	if len(windows) == 0 {
		return out
	}
	for _, class := range classOrder {
		for _, bout := range layer2.BoutsOf(class) {
			if !coversAny(bout, windows) {
				continue
			}
			for i := bout.Start; i < bout.End; i++ {
				out.Set(i, class)
			}
		}
	}
	return out
}

func coversAny(bout labels.Bout, windows []Window) bool {
	for _, w := range windows {
		if w.Within(bout.Start, bout.End) {
			return true
		}
	}
	return false
}
