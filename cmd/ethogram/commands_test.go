package main

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"ethogram/internal/testsupport"
)

func writeInputs(t *testing.T, env *cliTestEnv) {
	t.Helper()
	testsupport.WriteTelemetry(t, filepath.Join(env.cfg.Paths.InputDir, "fly01.csv"), testsupport.DefaultSession())
	flagged := testsupport.DefaultSession()
	flagged.Speed = func(int) float64 { return math.NaN() }
	testsupport.WriteTelemetry(t, filepath.Join(env.cfg.Paths.InputDir, "fly02.csv"), flagged)
}

func TestScoreReportsAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	writeInputs(t, env)

	out, _, err := runCLI(t, []string{"score"}, env.configPath)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	requireContains(t, out, "fly01")
	requireContains(t, out, "1 scored, 1 flagged, 0 error, 0 skipped")

	out, _, err = runCLI(t, []string{"reports", "--kind", "flag"}, env.configPath)
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	requireContains(t, out, "fly02")
	requireContains(t, out, "low_baseline_exploration")

	out, _, err = runCLI(t, []string{"reports", "--summary"}, env.configPath)
	if err != nil {
		t.Fatalf("reports --summary: %v", err)
	}
	requireContains(t, out, "behavior_nan_exceeded")

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, `"Scored": 1`)
	requireContains(t, out, `"Flagged": 1`)

	out, _, err = runCLI(t, []string{"history", "--subject", "fly01"}, env.configPath)
	if err != nil {
		t.Fatalf("history --subject: %v", err)
	}
	requireContains(t, out, "scored")

	out, _, err = runCLI(t, []string{"score"}, env.configPath)
	if err != nil {
		t.Fatalf("second score: %v", err)
	}
	requireContains(t, out, "0 scored, 0 flagged, 0 error, 2 skipped")
}

func TestReportsRejectsUnknownKind(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"reports", "--kind", "warning"}, env.configPath); err == nil {
		t.Fatal("expected unknown kind to fail")
	}
}

func TestStatusShowsPendingInput(t *testing.T) {
	env := setupCLITestEnv(t)
	writeInputs(t, env)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Directories ==")
	requireContains(t, out, "2 files, 2 pending")
	requireContains(t, out, "none recorded")
}

func TestEmptyJSONListsPrintArrays(t *testing.T) {
	env := setupCLITestEnv(t)
	for _, args := range [][]string{
		{"history", "--json"},
		{"history", "--subject", "fly01", "--json"},
		{"reports", "--json"},
	} {
		out, _, err := runCLI(t, args, env.configPath)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if strings.TrimSpace(out) != "[]" {
			t.Fatalf("%v printed %q, want []", args, out)
		}
	}
}
