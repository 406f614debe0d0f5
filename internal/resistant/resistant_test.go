package resistant

import (
	"math/rand/v2"
	"slices"
	"testing"

	"ethogram/internal/config"
	"ethogram/internal/frames"
	"ethogram/internal/labels"
)

func stimulusTable(n int, columns map[string][]int) *frames.Table {
	t := frames.NewTable(n)
	for name, onsets := range columns {
		values := make([]float64, n)
		for _, onset := range onsets {
			for i := onset; i < min(onset+5, n); i++ {
				values[i] = 1
			}
		}
		t.SetNumeric(name, values)
	}
	return t
}

func registry(names ...string) []config.Stimulus {
	out := make([]config.Stimulus, 0, len(names))
	for _, name := range names {
		out = append(out, config.Stimulus{Name: name, CSVColumn: name, Detection: &config.Detection{Off: 0, On: 1}})
	}
	return out
}

func TestMergeJoinsTouchingWindows(t *testing.T) {
	got := Merge([]Window{{30, 40}, {0, 10}, {10, 15}, {38, 50}, {60, 61}})
	want := []Window{{0, 15}, {30, 50}, {60, 61}}
	if !slices.Equal(got, want) {
		t.Fatalf("Merge = %v, want %v", got, want)
	}
	if Merge(nil) != nil {
		t.Fatal("Merge(nil) should be nil")
	}
}

func TestAroundClamps(t *testing.T) {
	if w, ok := Around(2, 5, 5, 100); !ok || w != (Window{0, 8}) {
		t.Fatalf("Around near start = %v %v", w, ok)
	}
	if w, ok := Around(98, 5, 5, 100); !ok || w != (Window{93, 100}) {
		t.Fatalf("Around near end = %v %v", w, ok)
	}
}

func TestOnsetFiftyCoversWholeWalkBout(t *testing.T) {
	table := stimulusTable(100, map[string][]int{"looming": {50}})
	d := NewWithPadding(registry("looming"), 30, 30)

	windows := d.CoverageWindows(table)
	if !slices.Equal(windows, []Window{{20, 81}}) {
		t.Fatalf("coverage windows = %v, want [{20 81}]", windows)
	}

	layer2 := labels.NewStream(labels.Layer2, 100)
	for i := range layer2.Values {
		layer2.Values[i] = labels.Walk
	}
	out := Detect(layer2, windows)
	if out.Layer != labels.Resistant {
		t.Fatalf("expected Resistant stream, got %s", out.Layer)
	}
	for i := 0; i < 100; i++ {
		if out.Label(i) != "Resistant_Walk" {
			t.Fatalf("frame %d = %q, want Resistant_Walk", i, out.Label(i))
		}
	}
}

func TestDetectRequiresFullContainment(t *testing.T) {
	layer2 := labels.NewStream(labels.Layer2, 100)
	for i := 0; i < 60; i++ {
		layer2.Values[i] = labels.Freeze
	}
	for i := 60; i < 100; i++ {
		layer2.Values[i] = labels.Stationary
	}
	out := Detect(layer2, []Window{{50, 70}})
	if frac := out.MissingFraction(); frac != 1 {
		t.Fatalf("straddling window must not mark anything, missing fraction %v", frac)
	}

	out = Detect(layer2, []Window{{50, 70}, {10, 20}})
	for i := 0; i < 60; i++ {
		if out.At(i) != labels.Freeze {
			t.Fatalf("frame %d = %s, want Freeze", i, out.At(i))
		}
	}
	for i := 60; i < 100; i++ {
		if out.At(i) != labels.Missing {
			t.Fatalf("frame %d = %s, want missing", i, out.At(i))
		}
	}
}

func TestDetectIgnoresJumpBouts(t *testing.T) {
	layer2 := labels.NewStream(labels.Layer2, 20)
	for i := range layer2.Values {
		layer2.Values[i] = labels.Jump
	}
	out := Detect(layer2, []Window{{5, 10}})
	if out.MissingFraction() != 1 {
		t.Fatalf("jump bouts should never be resistant: %v", out.Strings())
	}
}

func TestCoverageContainment(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	classes := []labels.Base{labels.Missing, labels.Jump, labels.Walk, labels.Stationary, labels.Freeze}
	for trial := 0; trial < 100; trial++ {
		n := 50 + rng.IntN(150)
		layer2 := labels.NewStream(labels.Layer2, n)
		for i := 0; i < n; {
			run := 1 + rng.IntN(40)
			b := classes[rng.IntN(len(classes))]
			for j := i; j < min(i+run, n); j++ {
				layer2.Values[j] = b
			}
			i += run
		}
		table := stimulusTable(n, map[string][]int{
			"a": {1 + rng.IntN(n-1)},
			"b": {1 + rng.IntN(n-1), 1 + rng.IntN(n-1)},
		})
		d := NewWithPadding(registry("a", "b"), rng.IntN(6), rng.IntN(6))
		windows := d.CoverageWindows(table)
		out := Detect(layer2, windows)

		for _, bout := range out.Bouts() {
			if bout.Label == labels.Missing {
				continue
			}
			contained := false
			for _, w := range windows {
				if w.Within(bout.Start, bout.End) {
					contained = true
				}
			}
			if !contained {
				t.Fatalf("trial %d: resistant bout %+v has no contained window in %v", trial, bout, windows)
			}
		}
		for _, bout := range layer2.Bouts() {
			if bout.Label != labels.Walk && bout.Label != labels.Stationary && bout.Label != labels.Freeze {
				continue
			}
			if coversAny(bout, windows) && out.At(bout.Start) != bout.Label {
				t.Fatalf("trial %d: covering bout %+v not marked", trial, bout)
			}
		}
	}
}

func TestResponseWindowsAndMask(t *testing.T) {
	table := stimulusTable(40, map[string][]int{"a": {10}, "b": {12, 35}})
	d := NewWithPadding(registry("a", "b", "absent"), 3, 4)
	got := d.ResponseWindows(table)
	want := []Window{{10, 16}, {35, 39}}
	if !slices.Equal(got, want) {
		t.Fatalf("ResponseWindows = %v, want %v", got, want)
	}
	mask := Mask(got, 40)
	if !mask[10] || !mask[15] || mask[16] || mask[9] || !mask[38] || mask[39] {
		t.Fatalf("unexpected mask %v", mask)
	}
}
