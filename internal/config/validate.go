package config

import (
	"errors"
	"fmt"
	"strings"

	"ethogram/internal/labels"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTimebase(); err != nil {
		return err
	}
	if err := c.validateStimuli(); err != nil {
		return err
	}
	if err := c.validateExperiment(); err != nil {
		return err
	}
	if err := c.validateClassify(); err != nil {
		return err
	}
	if err := c.validateWindows(); err != nil {
		return err
	}
	if err := c.validateQC(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTimebase() error {
	if c.Timebase.FPS <= 0 {
		return errors.New("timebase.fps must be positive")
	}
	if len(c.Timebase.Periods) == 0 {
		return errors.New("timebase.periods must include at least one period")
	}
	seen := make(map[string]struct{}, len(c.Timebase.Periods))
	for i, p := range c.Timebase.Periods {
		if p.Name == "" {
			return fmt.Errorf("timebase.periods[%d].name must be set", i)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("timebase.periods: duplicate period %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Seconds <= 0 {
			return fmt.Errorf("timebase.periods[%d].seconds must be positive", i)
		}
	}
	return nil
}

func (c *Config) validateStimuli() error {
	names := make(map[string]struct{}, len(c.Stimuli))
	columns := make(map[string]struct{}, len(c.Stimuli))
	for i, s := range c.Stimuli {
		if s.Name == "" {
			return fmt.Errorf("stimuli[%d].name must be set", i)
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("stimuli: duplicate stimulus %q", s.Name)
		}
		names[s.Name] = struct{}{}
		if _, dup := columns[s.CSVColumn]; dup {
			return fmt.Errorf("stimuli: csv_column %q used by more than one stimulus", s.CSVColumn)
		}
		columns[s.CSVColumn] = struct{}{}
		if isReservedColumn(s.CSVColumn) {
			return fmt.Errorf("stimuli[%d].csv_column %q collides with a tracking column", i, s.CSVColumn)
		}
		if s.Detection == nil {
			return fmt.Errorf("stimuli[%d].detection must be set for %q", i, s.Name)
		}
		if s.Detection.Off == s.Detection.On {
			return fmt.Errorf("stimuli[%d].detection off and on values must differ", i)
		}
		if s.ExpectedTrials < 0 {
			return fmt.Errorf("stimuli[%d].expected_trials must be >= 0", i)
		}
		if s.ExpectedDurationFrames < 0 {
			return fmt.Errorf("stimuli[%d].expected_duration_frames must be >= 0", i)
		}
	}
	return nil
}

func (c *Config) validateExperiment() error {
	if c.Experiment.AlignmentStimulus == "" {
		return errors.New("experiment.alignment_stimulus must be set")
	}
	s, ok := c.Stimulus(c.Experiment.AlignmentStimulus)
	if !ok {
		return fmt.Errorf("experiment.alignment_stimulus %q is not in the stimulus registry", c.Experiment.AlignmentStimulus)
	}
	if s.Ignore {
		return fmt.Errorf("experiment.alignment_stimulus %q is marked ignore", s.Name)
	}
	if c.Experiment.ArenaWidthMM <= 0 || c.Experiment.ArenaWidthPX <= 0 {
		return errors.New("experiment.arena_width_mm and experiment.arena_width_px must be positive")
	}
	return nil
}

func (c *Config) validateClassify() error {
	cl := c.Classify
	if cl.LowSpeed < 0 {
		return errors.New("classify.low_speed must be >= 0")
	}
	if cl.HighSpeed <= cl.LowSpeed {
		return errors.New("classify.high_speed must be greater than classify.low_speed")
	}
	if cl.Layer2WindowSec < 0 || cl.DenoiseWindowSec < 0 {
		return errors.New("classify window lengths must be >= 0")
	}
	if cl.MicroBoutFrames < 0 {
		return errors.New("classify.micro_bout_frames must be >= 0")
	}
	if _, err := parseTieBreak(cl.TieBreak); err != nil {
		return fmt.Errorf("classify.tie_break: %w", err)
	}
	return nil
}

func (c *Config) validateWindows() error {
	if c.Cleaning.MaxGlitchFrames < 0 {
		return errors.New("cleaning.max_glitch_frames must be >= 0")
	}
	if c.Resistant.PreSeconds < 0 || c.Resistant.PostSeconds < 0 {
		return errors.New("resistant.pre_seconds and resistant.post_seconds must be >= 0")
	}
	if c.Behavior.MaxGapSeconds < 0 {
		return errors.New("behavior.max_gap_seconds must be >= 0")
	}
	if c.Behavior.MinFlankFrames < 0 {
		return errors.New("behavior.min_flank_frames must be >= 0")
	}
	return nil
}

func (c *Config) validateQC() error {
	if c.QC.DurationJitterFrames < 0 {
		return errors.New("qc.duration_jitter_frames must be >= 0")
	}
	for key, value := range map[string]float64{
		"qc.centroid_nan_max":  c.QC.CentroidNaNMax,
		"qc.behavior_nan_max":  c.QC.BehaviorNaNMax,
		"qc.baseline_walk_min": c.QC.BaselineWalkMin,
		"qc.pose_view_nan_max": c.QC.PoseViewNaNMax,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	return nil
}

// TieBreakOrder returns the configured Layer2 tie-break priority.
func (c *Config) TieBreakOrder() []labels.Base {
	order, err := parseTieBreak(c.Classify.TieBreak)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return order
}

func parseTieBreak(tokens []string) ([]labels.Base, error) {
	if len(tokens) != 3 {
		return nil, fmt.Errorf("must list walk, stationary and freeze exactly once (got %s)", strings.Join(tokens, ", "))
	}
	order := make([]labels.Base, 0, 3)
	seen := make(map[labels.Base]struct{}, 3)
	for _, token := range tokens {
		b, err := labels.ParseBase(token)
		if err != nil {
			return nil, err
		}
		if b == labels.Jump {
			return nil, errors.New("jump is not a majority-vote class")
		}
		if _, dup := seen[b]; dup {
			return nil, fmt.Errorf("duplicate entry %q", token)
		}
		seen[b] = struct{}{}
		order = append(order, b)
	}
	return order, nil
}
