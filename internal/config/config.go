package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directory layout used for inputs, outputs and reports.
type Paths struct {
	InputDir      string `toml:"input_dir"`
	OutputDir     string `toml:"output_dir"`
	QuarantineDir string `toml:"quarantine_dir"`
	ErrorDir      string `toml:"error_dir"`
	ReportDir     string `toml:"report_dir"`
	LogDir        string `toml:"log_dir"`
}

// Period is one named segment of the experiment schedule.
type Period struct {
	Name    string  `toml:"name"`
	Seconds float64 `toml:"seconds"`
}

// Timebase contains the acquisition frame rate and the period schedule.
type Timebase struct {
	FPS     float64  `toml:"fps"`
	Periods []Period `toml:"periods"`
}

// Experiment contains session-level settings shared by every subject.
type Experiment struct {
	// AlignmentStimulus names the stimulus whose first onset anchors cropping
	// and baseline windows.
	AlignmentStimulus string `toml:"alignment_stimulus"`
	PoseRequired      bool   `toml:"pose_required"`
	// Arena dimensions convert tracker pixels to millimetres when the speed
	// column has to be derived from centroid positions.
	ArenaWidthMM float64 `toml:"arena_width_mm"`
	ArenaWidthPX float64 `toml:"arena_width_px"`
}

// Detection is the (off, on) encoding of a binary stimulus channel.
type Detection struct {
	Off float64 `toml:"off"`
	On  float64 `toml:"on"`
}

// Stimulus is one entry of the stimulus registry.
type Stimulus struct {
	Name                   string     `toml:"name"`
	CSVColumn              string     `toml:"csv_column"`
	Detection              *Detection `toml:"detection"`
	ExpectedTrials         int        `toml:"expected_trials"`
	ExpectedDurationFrames int        `toml:"expected_duration_frames"`
	Ignore                 bool       `toml:"ignore"`
}

// Mapping returns the channel's detection mapping. Stimuli without one are
// rejected by Validate, so reaching the panic means the config bypassed Load.
func (s Stimulus) Mapping() Detection {
	if s.Detection == nil {
		panic(fmt.Sprintf("config: stimulus %q has no detection mapping", s.Name))
	}
	return *s.Detection
}

// Cleaning contains stimulus glitch repair settings.
type Cleaning struct {
	MaxGlitchFrames int `toml:"max_glitch_frames"`
}

// Classify contains Layer1/Layer2 thresholds and windows.
type Classify struct {
	HighSpeed        float64  `toml:"high_speed"`
	LowSpeed         float64  `toml:"low_speed"`
	Layer2WindowSec  float64  `toml:"layer2_window_sec"`
	DenoiseWindowSec float64  `toml:"denoise_window_sec"`
	MicroBoutFrames  int      `toml:"micro_bout_frames"`
	TieBreak         []string `toml:"tie_break"`
	// ResponseGuard disables speed smoothing inside stimulus response windows.
	ResponseGuard bool `toml:"response_guard"`
}

// Resistant contains coverage window padding around stimulus onsets.
type Resistant struct {
	PreSeconds  float64 `toml:"pre_seconds"`
	PostSeconds float64 `toml:"post_seconds"`
}

// Behavior contains gap repair settings for the denoised behavior stream.
type Behavior struct {
	MaxGapSeconds  float64 `toml:"max_gap_seconds"`
	MinFlankFrames int     `toml:"min_flank_frames"`
	ResponseGuard  bool    `toml:"response_guard"`
}

// QC contains quality gate thresholds.
type QC struct {
	DurationJitterFrames int     `toml:"duration_jitter_frames"`
	CentroidNaNMax       float64 `toml:"centroid_nan_max"`
	BehaviorNaNMax       float64 `toml:"behavior_nan_max"`
	BaselineWalkMin      float64 `toml:"baseline_walk_min"`
	PoseViewNaNMax       float64 `toml:"pose_view_nan_max"`
}

// Workers controls batch parallelism.
type Workers struct {
	Count int `toml:"count"`
}

// Mirror contains the optional batched copy of published artifacts.
type Mirror struct {
	Dir       string `toml:"dir"`
	BatchSize int    `toml:"batch_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ethogram.
//
// Configuration sections by subsystem:
//   - Paths: input, output, quarantine, forensic and report directories
//   - Timebase: frame rate and period schedule
//   - Experiment: alignment stimulus, pose requirement, arena scale
//   - Stimuli: the stimulus registry
//   - Cleaning, Classify, Resistant, Behavior: algorithm knobs
//   - QC: pre-flight and post-score thresholds
//   - Workers, Mirror: batch execution
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Timebase   Timebase   `toml:"timebase"`
	Experiment Experiment `toml:"experiment"`
	Stimuli    []Stimulus `toml:"stimuli"`
	Cleaning   Cleaning   `toml:"cleaning"`
	Classify   Classify   `toml:"classify"`
	Resistant  Resistant  `toml:"resistant"`
	Behavior   Behavior   `toml:"behavior"`
	QC         QC         `toml:"qc"`
	Workers    Workers    `toml:"workers"`
	Mirror     Mirror     `toml:"mirror"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		// Slices decode by appending; start them empty so file entries replace
		// the defaults. normalize restores defaults for sections left unset.
		cfg.Stimuli = nil
		cfg.Timebase.Periods = nil
		cfg.Classify.TieBreak = nil

		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		if value, ok := os.LookupEnv("ETHOGRAM_CONFIG"); ok {
			path = strings.TrimSpace(value)
		}
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ethogram.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the input directory and the directories a batch
// run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.InputDir, c.Paths.OutputDir, c.Paths.QuarantineDir, c.Paths.ErrorDir, c.Paths.ReportDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Mirror.Dir) != "" {
		// Best-effort: a missing mirror mount must not block scoring.
		_ = os.MkdirAll(c.Mirror.Dir, 0o755)
	}
	return nil
}

// Stimulus returns the registry entry with the given name.
func (c *Config) Stimulus(name string) (Stimulus, bool) {
	for _, s := range c.Stimuli {
		if s.Name == name {
			return s, true
		}
	}
	return Stimulus{}, false
}

// ActiveStimuli returns the registry entries that are not ignored, in
// registry order.
func (c *Config) ActiveStimuli() []Stimulus {
	out := make([]Stimulus, 0, len(c.Stimuli))
	for _, s := range c.Stimuli {
		if !s.Ignore {
			out = append(out, s)
		}
	}
	return out
}

// AlignmentStimulus returns the stimulus that anchors cropping.
func (c *Config) AlignmentStimulus() Stimulus {
	s, ok := c.Stimulus(c.Experiment.AlignmentStimulus)
	if !ok {
		panic(fmt.Sprintf("config: alignment stimulus %q not in registry", c.Experiment.AlignmentStimulus))
	}
	return s
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}
