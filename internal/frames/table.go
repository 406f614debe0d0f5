package frames

import (
	"fmt"
	"math"
	"slices"

	"ethogram/internal/labels"
)

// Table is a zero-based, contiguous frame sequence for one subject. Numeric
// columns use NaN for missing samples; label columns hold one namespace each.
type Table struct {
	n       int
	order   []string
	numeric map[string][]float64
	labels  map[string]labels.Stream
	// Malformed counts cells per column that could not be parsed as numbers.
	Malformed map[string]int
}

// NewTable returns an empty table of n frames.
func NewTable(n int) *Table {
	return &Table{
		n:         n,
		numeric:   make(map[string][]float64),
		labels:    make(map[string]labels.Stream),
		Malformed: make(map[string]int),
	}
}

// Len returns the number of frames.
func (t *Table) Len() int { return t.n }

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string { return slices.Clone(t.order) }

// Has reports whether the column exists.
func (t *Table) Has(name string) bool {
	if _, ok := t.numeric[name]; ok {
		return true
	}
	_, ok := t.labels[name]
	return ok
}

// Numeric returns the numeric column. The slice is shared; the cleaner
// relies on that to repair channels in place.
func (t *Table) Numeric(name string) ([]float64, bool) {
	v, ok := t.numeric[name]
	return v, ok
}

// MustNumeric returns the numeric column or panics.
func (t *Table) MustNumeric(name string) []float64 {
	v, ok := t.numeric[name]
	if !ok {
		panic(fmt.Sprintf("frames: missing numeric column %q", name))
	}
	return v
}

// Labels returns a label column.
func (t *Table) Labels(name string) (labels.Stream, bool) {
	v, ok := t.labels[name]
	return v, ok
}

// SetNumeric adds or replaces a numeric column.
func (t *Table) SetNumeric(name string, values []float64) {
	if len(values) != t.n {
		panic(fmt.Sprintf("frames: column %q has %d rows, table has %d", name, len(values), t.n))
	}
	if !t.Has(name) {
		t.order = append(t.order, name)
	}
	t.numeric[name] = values
}

// SetLabels adds or replaces a label column.
func (t *Table) SetLabels(name string, stream labels.Stream) {
	if stream.Len() != t.n {
		panic(fmt.Sprintf("frames: column %q has %d rows, table has %d", name, stream.Len(), t.n))
	}
	if !t.Has(name) {
		t.order = append(t.order, name)
	}
	t.labels[name] = stream
}

// Crop returns a new table restricted to [start, end), clamped to bounds.
// The frame column, when present, is renumbered from zero.
func (t *Table) Crop(start, end int) *Table {
	start = max(start, 0)
	end = min(end, t.n)
	if end < start {
		end = start
	}
	out := NewTable(end - start)
	for _, name := range t.order {
		if v, ok := t.numeric[name]; ok {
			out.SetNumeric(name, slices.Clone(v[start:end]))
			continue
		}
		out.SetLabels(name, t.labels[name].Slice(start, end))
	}
	if _, ok := out.numeric[ColFrame]; ok {
		out.numeric[ColFrame] = FrameIndex(out.n)
	}
	for k, v := range t.Malformed {
		out.Malformed[k] = v
	}
	return out
}

// FrameIndex returns 0..n-1 as floats.
func FrameIndex(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// NaNFraction returns the fraction of rows where any of the named columns is
// missing. Absent columns count as fully missing.
func (t *Table) NaNFraction(names ...string) float64 {
	if t.n == 0 {
		return 0
	}
	missing := 0
	for i := 0; i < t.n; i++ {
		for _, name := range names {
			col, ok := t.numeric[name]
			if !ok || math.IsNaN(col[i]) {
				missing++
				break
			}
		}
	}
	return float64(missing) / float64(t.n)
}
