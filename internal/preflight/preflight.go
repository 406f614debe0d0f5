package preflight

import (
	"ethogram/internal/config"
)

// Result reports the outcome of a single readiness check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the free space below which an output directory is reported
// as not ready.
const minFreeBytes = 64 << 20

// RunAll executes the directory readiness checks for the given config.
// Optional directories are only checked when configured.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadable("Input directory", cfg.Paths.InputDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Quarantine directory", cfg.Paths.QuarantineDir),
		CheckDirectoryAccess("Error directory", cfg.Paths.ErrorDir),
		CheckDirectoryAccess("Report directory", cfg.Paths.ReportDir),
		CheckFreeSpace("Output free space", cfg.Paths.OutputDir, minFreeBytes),
	}
	if cfg.Mirror.Dir != "" {
		results = append(results, CheckDirectoryAccess("Mirror directory", cfg.Mirror.Dir))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
