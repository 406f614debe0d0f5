// Package paths maps subject identifiers to the canonical input, output,
// quarantine and forensic locations.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"ethogram/internal/config"
)

// PoseSuffix marks pose tables that sit next to their telemetry file.
const PoseSuffix = "_pose"

const ext = ".csv"

// Layout resolves artifact locations from the configured directories.
type Layout struct {
	paths config.Paths
}

// New builds a layout from cfg.
func New(cfg *config.Config) Layout {
	return Layout{paths: cfg.Paths}
}

// SubjectID derives the identifier from a telemetry file name. Names are NFC
// normalized so the same subject typed on different systems maps to one id.
func SubjectID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return norm.NFC.String(strings.TrimSpace(stem))
}

// IsPoseFile reports whether path is a pose sidecar rather than telemetry.
func IsPoseFile(path string) bool {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.HasSuffix(stem, PoseSuffix)
}

// PoseInput returns the pose sidecar for a telemetry file.
func PoseInput(telemetryPath string) string {
	dir := filepath.Dir(telemetryPath)
	stem := strings.TrimSuffix(filepath.Base(telemetryPath), filepath.Ext(telemetryPath))
	return filepath.Join(dir, stem+PoseSuffix+ext)
}

// Primary is the scored output table.
func (l Layout) Primary(subject string) string {
	return filepath.Join(l.paths.OutputDir, subject+ext)
}

// PrimaryPose is the scored pose table.
func (l Layout) PrimaryPose(subject string) string {
	return filepath.Join(l.paths.OutputDir, subject+PoseSuffix+ext)
}

// Quarantine is the output table for flagged sessions.
func (l Layout) Quarantine(subject string) string {
	return filepath.Join(l.paths.QuarantineDir, subject+ext)
}

// QuarantinePose is the pose table for flagged sessions.
func (l Layout) QuarantinePose(subject string) string {
	return filepath.Join(l.paths.QuarantineDir, subject+PoseSuffix+ext)
}

// Forensic is the directory holding raw input copies for failed sessions.
func (l Layout) Forensic(subject string) string {
	return filepath.Join(l.paths.ErrorDir, subject)
}

// Existing returns the first artifact already present for subject, or "".
func (l Layout) Existing(subject string, exists func(string) bool) string {
	for _, p := range []string{l.Primary(subject), l.Quarantine(subject), l.Forensic(subject)} {
		if exists(p) {
			return p
		}
	}
	return ""
}

// Discover lists telemetry files in dir, sorted, excluding pose sidecars and
// hidden temp files.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		path := filepath.Join(dir, name)
		if IsPoseFile(path) {
			continue
		}
		out = append(out, path)
	}
	slices.Sort(out)
	return out, nil
}
