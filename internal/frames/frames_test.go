package frames

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"ethogram/internal/labels"
)

func TestReadCSVParsesNumbersAndMissing(t *testing.T) {
	input := "frame,x,y,speed,vis_stim\n0,1.5,2,,0\n1,nan,3,10,1\n2,4,abc,11,1\n"
	table, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("Len = %d, want 3", table.Len())
	}
	speed := table.MustNumeric(ColSpeed)
	if !math.IsNaN(speed[0]) || speed[1] != 10 {
		t.Fatalf("unexpected speed column: %v", speed)
	}
	x := table.MustNumeric(ColX)
	if !math.IsNaN(x[1]) {
		t.Fatalf("expected nan token to parse as NaN, got %v", x[1])
	}
	if table.Malformed[ColY] != 1 {
		t.Fatalf("expected one malformed y cell, got %v", table.Malformed)
	}
	if table.Malformed[ColX] != 0 {
		t.Fatalf("nan token must not count as malformed: %v", table.Malformed)
	}
	if got := table.Columns(); strings.Join(got, ",") != "frame,x,y,speed,vis_stim" {
		t.Fatalf("unexpected column order %v", got)
	}
}

func TestReadCSVRejectsStructuralProblems(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err != ErrEmptyFile {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("a,a\n1,2\n")); err == nil {
		t.Fatal("expected duplicate header error")
	}
	if _, err := ReadCSV(strings.NewReader("a,b\n1,2\n3\n")); err == nil {
		t.Fatal("expected ragged row error")
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("frame,x\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if table.Len() != 0 || !table.Has(ColX) {
		t.Fatalf("unexpected table: len=%d cols=%v", table.Len(), table.Columns())
	}
}

func TestWriteCSVCanonicalOrderSkipsAbsentAndUnknown(t *testing.T) {
	table := NewTable(2)
	table.SetNumeric("extra", []float64{9, 9})
	table.SetNumeric(ColSpeed, []float64{1.25, math.NaN()})
	table.SetNumeric(ColFrame, FrameIndex(2))
	table.SetLabels(ColLayer1, labels.Stream{Layer: labels.Layer1, Values: []labels.Base{labels.Walk, labels.Missing}})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table, OutputColumns(nil)); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "frame,speed,layer1\n0,1.25,Layer1_Walk\n1,,\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestCropRenumbersFrames(t *testing.T) {
	table := NewTable(5)
	table.SetNumeric(ColFrame, FrameIndex(5))
	table.SetNumeric(ColSpeed, []float64{0, 1, 2, 3, 4})
	table.SetLabels(ColLayer2, labels.NewStream(labels.Layer2, 5))

	cropped := table.Crop(-3, 3)
	if cropped.Len() != 3 {
		t.Fatalf("Len = %d, want 3", cropped.Len())
	}
	cropped = table.Crop(2, 10)
	if cropped.Len() != 3 {
		t.Fatalf("Len = %d, want 3", cropped.Len())
	}
	if got := cropped.MustNumeric(ColFrame); got[0] != 0 || got[2] != 2 {
		t.Fatalf("expected renumbered frames, got %v", got)
	}
	if got := cropped.MustNumeric(ColSpeed); got[0] != 2 {
		t.Fatalf("expected speed to start at 2, got %v", got)
	}
	if s, ok := cropped.Labels(ColLayer2); !ok || s.Len() != 3 {
		t.Fatal("expected cropped label column")
	}
	if empty := table.Crop(4, 2); empty.Len() != 0 {
		t.Fatalf("expected empty crop, got %d", empty.Len())
	}
}

func TestOnsetsAndPulses(t *testing.T) {
	values := []float64{1, 1, 0, 0, 1, 1, 1, 0, 1, math.NaN(), 1}
	onsets := Onsets(values, 0, 1)
	if len(onsets) != 2 || onsets[0] != 4 || onsets[1] != 8 {
		t.Fatalf("unexpected onsets %v", onsets)
	}
	if got := FirstOnset(values, 0, 1); got != 4 {
		t.Fatalf("FirstOnset = %d", got)
	}
	pulses := PulseLengths(values, 0, 1)
	if len(pulses) != 2 || pulses[0] != 3 || pulses[1] != 1 {
		t.Fatalf("unexpected pulses %v", pulses)
	}
	if got := FirstOnset([]float64{0, 0}, 0, 1); got != -1 {
		t.Fatalf("expected -1 without onset, got %d", got)
	}
}

func TestRunsGroupsNaN(t *testing.T) {
	runs := Runs([]float64{math.NaN(), math.NaN(), 1, 1, 0})
	if len(runs) != 3 || runs[0].Len() != 2 || runs[1].Value != 1 || runs[2].Start != 4 {
		t.Fatalf("unexpected runs %+v", runs)
	}
}

func TestNaNFraction(t *testing.T) {
	table := NewTable(4)
	table.SetNumeric(ColX, []float64{1, math.NaN(), 1, 1})
	table.SetNumeric(ColY, []float64{1, 1, math.NaN(), 1})
	if got := table.NaNFraction(ColX, ColY); got != 0.5 {
		t.Fatalf("NaNFraction = %v, want 0.5", got)
	}
	if got := table.NaNFraction("absent"); got != 1 {
		t.Fatalf("absent column fraction = %v, want 1", got)
	}
}
