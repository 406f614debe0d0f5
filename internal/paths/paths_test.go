package paths

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"ethogram/internal/config"
)

func TestSubjectIDNormalizes(t *testing.T) {
	decomposed := "cafe\u0301_01.csv"
	composed := "caf\u00e9_01"
	if got := SubjectID("/in/" + decomposed); got != composed {
		t.Fatalf("SubjectID = %q, want %q", got, composed)
	}
}

func TestLayout(t *testing.T) {
	cfg := config.Default()
	cfg.Paths = config.Paths{OutputDir: "/out", QuarantineDir: "/q", ErrorDir: "/err"}
	l := New(&cfg)

	if got := l.Primary("fly01"); got != "/out/fly01.csv" {
		t.Fatalf("Primary = %s", got)
	}
	if got := l.PrimaryPose("fly01"); got != "/out/fly01_pose.csv" {
		t.Fatalf("PrimaryPose = %s", got)
	}
	if got := l.Quarantine("fly01"); got != "/q/fly01.csv" {
		t.Fatalf("Quarantine = %s", got)
	}
	if got := l.Forensic("fly01"); got != "/err/fly01" {
		t.Fatalf("Forensic = %s", got)
	}
	if got := PoseInput("/in/fly01.csv"); got != "/in/fly01_pose.csv" {
		t.Fatalf("PoseInput = %s", got)
	}

	present := map[string]bool{"/err/fly01": true}
	if got := l.Existing("fly01", func(p string) bool { return present[p] }); got != "/err/fly01" {
		t.Fatalf("Existing = %q", got)
	}
	if got := l.Existing("fly02", func(p string) bool { return present[p] }); got != "" {
		t.Fatalf("Existing = %q", got)
	}
}

func TestDiscoverSkipsPoseAndHidden(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.csv", "a_pose.csv", ".a.csv-123.tmp", "notes.txt", ".hidden.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}
	if !slices.Equal(got, want) {
		t.Fatalf("Discover = %v, want %v", got, want)
	}
}
