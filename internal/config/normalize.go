package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTimebase()
	c.normalizeStimuli()
	c.normalizeClassify()
	c.normalizeWorkers()
	if err := c.normalizeMirror(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.input_dir", &c.Paths.InputDir, defaultInputDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.quarantine_dir", &c.Paths.QuarantineDir, defaultQuarantineDir},
		{"paths.error_dir", &c.Paths.ErrorDir, defaultErrorDir},
		{"paths.report_dir", &c.Paths.ReportDir, defaultReportDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeTimebase() {
	if len(c.Timebase.Periods) == 0 {
		c.Timebase.Periods = Default().Timebase.Periods
	}
	for i := range c.Timebase.Periods {
		c.Timebase.Periods[i].Name = strings.ToLower(strings.TrimSpace(c.Timebase.Periods[i].Name))
	}
}

func (c *Config) normalizeStimuli() {
	if len(c.Stimuli) == 0 {
		c.Stimuli = Default().Stimuli
	}
	for i := range c.Stimuli {
		s := &c.Stimuli[i]
		s.Name = strings.TrimSpace(s.Name)
		s.CSVColumn = strings.TrimSpace(s.CSVColumn)
		if s.CSVColumn == "" {
			s.CSVColumn = s.Name
		}
	}
	c.Experiment.AlignmentStimulus = strings.TrimSpace(c.Experiment.AlignmentStimulus)
}

func (c *Config) normalizeClassify() {
	if len(c.Classify.TieBreak) == 0 {
		c.Classify.TieBreak = defaultTieBreak()
		return
	}
	order := make([]string, 0, len(c.Classify.TieBreak))
	for _, token := range c.Classify.TieBreak {
		token = strings.ToLower(strings.TrimSpace(token))
		if token != "" {
			order = append(order, token)
		}
	}
	c.Classify.TieBreak = order
}

func (c *Config) normalizeWorkers() {
	if c.Workers.Count <= 0 {
		c.Workers.Count = defaultWorkerCount
	}
}

func (c *Config) normalizeMirror() error {
	c.Mirror.Dir = strings.TrimSpace(c.Mirror.Dir)
	if c.Mirror.Dir != "" {
		expanded, err := expandPath(c.Mirror.Dir)
		if err != nil {
			return fmt.Errorf("mirror.dir: %w", err)
		}
		c.Mirror.Dir = expanded
	}
	if c.Mirror.BatchSize <= 0 {
		c.Mirror.BatchSize = defaultMirrorBatchSize
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
