package cleaner

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"ethogram/internal/config"
	"ethogram/internal/frames"
)

var binary = config.Detection{Off: 0, On: 1}

func TestCleanFillsAndTrimsBoundedRuns(t *testing.T) {
	cases := []struct {
		name string
		in   []float64
		k    int
		want []float64
	}{
		{"fills short hole", []float64{1, 1, 0, 1, 1}, 1, []float64{1, 1, 1, 1, 1}},
		{"keeps long hole", []float64{1, 0, 0, 1}, 1, []float64{1, 0, 0, 1}},
		{"trims short spike", []float64{0, 0, 1, 0, 0}, 2, []float64{0, 0, 0, 0, 0}},
		{"keeps leading run", []float64{0, 1, 1, 1}, 3, []float64{0, 1, 1, 1}},
		{"keeps trailing spike", []float64{0, 0, 0, 1}, 3, []float64{0, 0, 0, 1}},
		{"nan does not bound", []float64{1, 0, math.NaN(), 1}, 3, []float64{1, 0, math.NaN(), 1}},
		{"k zero is no-op", []float64{1, 0, 1}, 0, []float64{1, 0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := slices.Clone(tc.in)
			Clean(got, binary, tc.k)
			if !equalNaN(got, tc.want) {
				t.Fatalf("Clean(%v, k=%d) = %v, want %v", tc.in, tc.k, got, tc.want)
			}
		})
	}
}

func TestCleanUsesDetectionMapping(t *testing.T) {
	values := []float64{5, 5, -5, 5, 5}
	Clean(values, config.Detection{Off: -5, On: 5}, 1)
	if !slices.Equal(values, []float64{5, 5, 5, 5, 5}) {
		t.Fatalf("unexpected result %v", values)
	}
	// The same data under a 0/1 mapping has no binary runs to repair.
	other := []float64{5, 5, -5, 5, 5}
	Clean(other, binary, 1)
	if !slices.Equal(other, []float64{5, 5, -5, 5, 5}) {
		t.Fatalf("unexpected repair under foreign mapping: %v", other)
	}
}

func TestCleanEmptyIsNoop(t *testing.T) {
	Clean(nil, binary, 3)
	Clean([]float64{}, binary, 3)
}

func TestCleanIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.IntN(60)
		values := make([]float64, n)
		for i := range values {
			switch rng.IntN(10) {
			case 0:
				values[i] = math.NaN()
			default:
				values[i] = float64(rng.IntN(2))
			}
		}
		k := rng.IntN(4)
		once := slices.Clone(values)
		Clean(once, binary, k)
		twice := slices.Clone(once)
		Clean(twice, binary, k)
		if !equalNaN(once, twice) {
			t.Fatalf("not idempotent for %v k=%d: once=%v twice=%v", values, k, once, twice)
		}
	}
}

func TestCleanTableSkipsIgnoredAndAbsent(t *testing.T) {
	table := frames.NewTable(5)
	table.SetNumeric("a", []float64{1, 1, 0, 1, 1})
	table.SetNumeric("b", []float64{1, 1, 0, 1, 1})
	stimuli := []config.Stimulus{
		{Name: "a", CSVColumn: "a", Detection: &binary},
		{Name: "b", CSVColumn: "b", Detection: &binary, Ignore: true},
		{Name: "c", CSVColumn: "c", Detection: &binary},
	}
	CleanTable(table, stimuli, 1)
	if got := table.MustNumeric("a"); got[2] != 1 {
		t.Fatalf("expected channel a repaired, got %v", got)
	}
	if got := table.MustNumeric("b"); got[2] != 0 {
		t.Fatalf("expected ignored channel b untouched, got %v", got)
	}
}

func equalNaN(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && !(math.IsNaN(a[i]) && math.IsNaN(b[i])) {
			return false
		}
	}
	return true
}
