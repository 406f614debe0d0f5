package labels

import "fmt"

// Stream is a per-frame label channel. Every value belongs to Layer.
type Stream struct {
	Layer  Layer
	Values []Base
}

// NewStream returns an all-missing stream of length n.
func NewStream(layer Layer, n int) Stream {
	return Stream{Layer: layer, Values: make([]Base, n)}
}

// Len returns the number of frames in the stream.
func (s Stream) Len() int { return len(s.Values) }

// At returns the base label at frame i.
func (s Stream) At(i int) Base { return s.Values[i] }

// Set assigns frame i, rejecting values outside the layer vocabulary.
func (s Stream) Set(i int, b Base) {
	if !s.Layer.Allows(b) {
		panic(fmt.Sprintf("labels: cannot store %s in a %s stream", b, s.Layer))
	}
	s.Values[i] = b
}

// Label renders frame i in the stream's namespace.
func (s Stream) Label(i int) string { return s.Layer.Format(s.Values[i]) }

// Strings renders the whole stream.
func (s Stream) Strings() []string {
	out := make([]string, len(s.Values))
	for i, b := range s.Values {
		out[i] = s.Layer.Format(b)
	}
	return out
}

// Rebase copies the stream into another namespace. Values not allowed in the
// target layer cause a panic; callers convert deliberately.
func (s Stream) Rebase(layer Layer) Stream {
	out := NewStream(layer, len(s.Values))
	for i, b := range s.Values {
		out.Set(i, b)
	}
	return out
}

// Slice returns a stream restricted to [start, end).
func (s Stream) Slice(start, end int) Stream {
	values := make([]Base, end-start)
	copy(values, s.Values[start:end])
	return Stream{Layer: s.Layer, Values: values}
}

// MissingFraction returns the fraction of frames without a label. An empty
// stream reports 0.
func (s Stream) MissingFraction() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	missing := 0
	for _, b := range s.Values {
		if b == Missing {
			missing++
		}
	}
	return float64(missing) / float64(len(s.Values))
}

// ParseStream decodes rendered labels belonging to layer.
func ParseStream(layer Layer, values []string) (Stream, error) {
	out := NewStream(layer, len(values))
	for i, v := range values {
		b, err := Parse(layer, v)
		if err != nil {
			return Stream{}, fmt.Errorf("frame %d: %w", i, err)
		}
		out.Values[i] = b
	}
	return out, nil
}

// Bout is a maximal run of one label value over [Start, End).
type Bout struct {
	Start int
	End   int
	Label Base
}

// Len returns the bout length in frames.
func (b Bout) Len() int { return b.End - b.Start }

// Bouts segments the stream into maximal runs, missing runs included.
func (s Stream) Bouts() []Bout {
	if len(s.Values) == 0 {
		return nil
	}
	var bouts []Bout
	start := 0
	for i := 1; i <= len(s.Values); i++ {
		if i == len(s.Values) || s.Values[i] != s.Values[start] {
			bouts = append(bouts, Bout{Start: start, End: i, Label: s.Values[start]})
			start = i
		}
	}
	return bouts
}

// BoutsOf returns the runs carrying label b.
func (s Stream) BoutsOf(b Base) []Bout {
	var out []Bout
	for _, bout := range s.Bouts() {
		if bout.Label == b {
			out = append(out, bout)
		}
	}
	return out
}
