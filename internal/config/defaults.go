package config

const (
	defaultConfigPath           = "~/.config/ethogram/config.toml"
	defaultInputDir             = "~/.local/share/ethogram/input"
	defaultOutputDir            = "~/.local/share/ethogram/scored"
	defaultQuarantineDir        = "~/.local/share/ethogram/flagged"
	defaultErrorDir             = "~/.local/share/ethogram/errors"
	defaultReportDir            = "~/.local/share/ethogram/reports"
	defaultLogDir               = "~/.local/share/ethogram/logs"
	defaultFPS                  = 60
	defaultAlignmentStimulus    = "looming"
	defaultArenaWidthMM         = 40
	defaultArenaWidthPX         = 400
	defaultMaxGlitchFrames      = 2
	defaultHighSpeed            = 75
	defaultLowSpeed             = 4
	defaultLayer2WindowSec      = 0.25
	defaultDenoiseWindowSec     = 0.2
	defaultMicroBoutFrames      = 6
	defaultResistantPreSeconds  = 0.5
	defaultResistantPostSeconds = 0.5
	defaultMaxGapSeconds        = 0.25
	defaultDurationJitterFrames = 2
	defaultCentroidNaNMax       = 0.05
	defaultBehaviorNaNMax       = 0.2
	defaultBaselineWalkMin      = 0.05
	defaultPoseViewNaNMax       = 0.2
	defaultWorkerCount          = 1
	defaultMirrorBatchSize      = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

func defaultTieBreak() []string {
	return []string{"walk", "stationary", "freeze"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:      defaultInputDir,
			OutputDir:     defaultOutputDir,
			QuarantineDir: defaultQuarantineDir,
			ErrorDir:      defaultErrorDir,
			ReportDir:     defaultReportDir,
			LogDir:        defaultLogDir,
		},
		Timebase: Timebase{
			FPS: defaultFPS,
			Periods: []Period{
				{Name: "baseline", Seconds: 60},
				{Name: "stimulus", Seconds: 120},
				{Name: "recovery", Seconds: 60},
			},
		},
		Experiment: Experiment{
			AlignmentStimulus: defaultAlignmentStimulus,
			ArenaWidthMM:      defaultArenaWidthMM,
			ArenaWidthPX:      defaultArenaWidthPX,
		},
		Stimuli: []Stimulus{
			{
				Name:      defaultAlignmentStimulus,
				CSVColumn: "vis_stim",
				Detection: &Detection{Off: 0, On: 1},
			},
		},
		Cleaning: Cleaning{
			MaxGlitchFrames: defaultMaxGlitchFrames,
		},
		Classify: Classify{
			HighSpeed:        defaultHighSpeed,
			LowSpeed:         defaultLowSpeed,
			Layer2WindowSec:  defaultLayer2WindowSec,
			DenoiseWindowSec: defaultDenoiseWindowSec,
			MicroBoutFrames:  defaultMicroBoutFrames,
			TieBreak:         defaultTieBreak(),
			ResponseGuard:    true,
		},
		Resistant: Resistant{
			PreSeconds:  defaultResistantPreSeconds,
			PostSeconds: defaultResistantPostSeconds,
		},
		Behavior: Behavior{
			MaxGapSeconds: defaultMaxGapSeconds,
			ResponseGuard: true,
		},
		QC: QC{
			DurationJitterFrames: defaultDurationJitterFrames,
			CentroidNaNMax:       defaultCentroidNaNMax,
			BehaviorNaNMax:       defaultBehaviorNaNMax,
			BaselineWalkMin:      defaultBaselineWalkMin,
			PoseViewNaNMax:       defaultPoseViewNaNMax,
		},
		Workers: Workers{
			Count: defaultWorkerCount,
		},
		Mirror: Mirror{
			BatchSize: defaultMirrorBatchSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
