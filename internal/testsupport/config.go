package testsupport

import (
	"path/filepath"
	"testing"

	"ethogram/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// Test timebase: 10 fps with a 20-frame baseline and a 70-frame span.
const (
	FPS            = 10
	BaselineFrames = 20
	SpanFrames     = 70
	StimulusColumn = "vis_stim"
)

// NewConfig produces a config seeded with unique temp directories per test
// and a compact timebase so synthetic sessions stay small.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths = config.Paths{
		InputDir:      filepath.Join(base, "input"),
		OutputDir:     filepath.Join(base, "scored"),
		QuarantineDir: filepath.Join(base, "flagged"),
		ErrorDir:      filepath.Join(base, "errors"),
		ReportDir:     filepath.Join(base, "reports"),
		LogDir:        filepath.Join(base, "logs"),
	}
	cfgVal.Timebase = config.Timebase{
		FPS: FPS,
		Periods: []config.Period{
			{Name: "baseline", Seconds: 2},
			{Name: "stimulus", Seconds: 3},
			{Name: "recovery", Seconds: 2},
		},
	}
	cfgVal.Stimuli = []config.Stimulus{{
		Name:      "looming",
		CSVColumn: StimulusColumn,
		Detection: &config.Detection{Off: 0, On: 1},
	}}
	cfgVal.Experiment.AlignmentStimulus = "looming"
	cfgVal.Classify.MicroBoutFrames = 2
	cfgVal.Resistant = config.Resistant{PreSeconds: 0.5, PostSeconds: 0.5}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithPoseRequired toggles the pose requirement.
func WithPoseRequired(required bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Experiment.PoseRequired = required
	}
}

// WithExpectedTrials sets expected trial count and pulse duration on the
// alignment stimulus.
func WithExpectedTrials(trials, durationFrames int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Stimuli[0].ExpectedTrials = trials
		b.cfg.Stimuli[0].ExpectedDurationFrames = durationFrames
	}
}

// WithStimulus appends a stimulus with a 0/1 mapping.
func WithStimulus(name, column string, ignore bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Stimuli = append(b.cfg.Stimuli, config.Stimulus{
			Name:      name,
			CSVColumn: column,
			Detection: &config.Detection{Off: 0, On: 1},
			Ignore:    ignore,
		})
	}
}

// WithWorkers sets the batch worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workers.Count = n
	}
}

// WithMirror enables the output mirror under the temp base.
func WithMirror(batchSize int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Mirror = config.Mirror{Dir: filepath.Join(b.baseDir, "mirror"), BatchSize: batchSize}
	}
}

// WithQC replaces the QC thresholds.
func WithQC(qc config.QC) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.QC = qc
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.InputDir)
}
