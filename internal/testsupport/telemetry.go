package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Session describes a synthetic telemetry file.
type Session struct {
	Frames      int
	Onsets      []int
	PulseFrames int
	// Speed, Motion and Centroid default to a steady walk at 10 mm/s with
	// motion and a valid centroid.
	Speed    func(i int) float64
	Motion   func(i int) float64
	Centroid func(i int) (float64, float64)
	// Extra adds columns after the tracking columns.
	Extra map[string]func(i int) float64
	// OmitSpeed drops the speed column so it has to be derived.
	OmitSpeed bool
}

// DefaultSession is 100 frames with one 10-frame looming pulse at frame 30,
// enough headroom and tail for the test timebase.
func DefaultSession() Session {
	return Session{Frames: 100, Onsets: []int{30}, PulseFrames: 10}
}

// WriteTelemetry renders s as CSV at path.
func WriteTelemetry(t testing.TB, path string, s Session) {
	t.Helper()

	speed := s.Speed
	if speed == nil {
		speed = func(int) float64 { return 10 }
	}
	motion := s.Motion
	if motion == nil {
		motion = func(int) float64 { return 1 }
	}
	centroid := s.Centroid
	if centroid == nil {
		centroid = func(i int) (float64, float64) { return float64(i), 50 }
	}
	stim := make([]float64, s.Frames)
	for _, onset := range s.Onsets {
		for i := onset; i < min(onset+s.PulseFrames, s.Frames); i++ {
			stim[i] = 1
		}
	}

	header := []string{"frame", StimulusColumn, "x", "y", "motion"}
	if !s.OmitSpeed {
		header = append(header, "speed")
	}
	extras := make([]string, 0, len(s.Extra))
	for name := range s.Extra {
		extras = append(extras, name)
	}
	header = append(header, extras...)

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')
	for i := 0; i < s.Frames; i++ {
		x, y := centroid(i)
		row := []string{strconv.Itoa(i), formatCell(stim[i]), formatCell(x), formatCell(y), formatCell(motion(i))}
		if !s.OmitSpeed {
			row = append(row, formatCell(speed(i)))
		}
		for _, name := range extras {
			row = append(row, formatCell(s.Extra[name](i)))
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	writeText(t, path, b.String())
}

// WritePose renders a pose table of n frames. Frames for which missing
// returns true have no view.
func WritePose(t testing.TB, path string, n int, missing func(i int) bool) {
	t.Helper()

	var b strings.Builder
	b.WriteString("frame,view,head_x,head_y,thorax_x,thorax_y,abdomen_x,abdomen_y\n")
	for i := 0; i < n; i++ {
		view := "1"
		if missing != nil && missing(i) {
			view = ""
		}
		b.WriteString(strconv.Itoa(i) + "," + view + ",1,2,3,4,5,6\n")
	}
	writeText(t, path, b.String())
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeText(t testing.TB, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
