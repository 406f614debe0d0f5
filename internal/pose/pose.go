// Package pose loads per-frame keypoint tables and scores their coverage.
package pose

import (
	"fmt"

	"ethogram/internal/frames"
)

// Pose table columns in canonical order.
const (
	ColView     = "view"
	ColHeadX    = "head_x"
	ColHeadY    = "head_y"
	ColThoraxX  = "thorax_x"
	ColThoraxY  = "thorax_y"
	ColAbdomenX = "abdomen_x"
	ColAbdomenY = "abdomen_y"
)

// Keypoints are the coordinate columns a usable pose row must fill.
var Keypoints = []string{ColHeadX, ColHeadY, ColThoraxX, ColThoraxY, ColAbdomenX, ColAbdomenY}

// Columns returns the fixed pose output schema.
func Columns() []string {
	out := []string{frames.ColFrame, ColView}
	return append(out, Keypoints...)
}

// Load reads a pose CSV.
func Load(path string) (*frames.Table, error) {
	t, err := frames.ReadCSVFile(path)
	if err != nil {
		return nil, fmt.Errorf("load pose table: %w", err)
	}
	return t, nil
}

// MissingColumns lists schema columns absent from t.
func MissingColumns(t *frames.Table) []string {
	var missing []string
	for _, name := range Columns() {
		if !t.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ViewMissingFraction returns the fraction of frames without a usable pose:
// no camera view or any missing keypoint coordinate.
func ViewMissingFraction(t *frames.Table) float64 {
	names := append([]string{ColView}, Keypoints...)
	return t.NaNFraction(names...)
}
