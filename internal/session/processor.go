package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ethogram/internal/behavior"
	"ethogram/internal/classify"
	"ethogram/internal/cleaner"
	"ethogram/internal/config"
	"ethogram/internal/featurize"
	"ethogram/internal/fileutil"
	"ethogram/internal/frames"
	"ethogram/internal/ledger"
	"ethogram/internal/logging"
	"ethogram/internal/mirror"
	"ethogram/internal/paths"
	"ethogram/internal/pose"
	"ethogram/internal/qc"
	"ethogram/internal/report"
	"ethogram/internal/resistant"
	"ethogram/internal/runctx"
)

// Stage names used in logs and wrapped errors.
const (
	stagePreflight = "preflight"
	stageScore     = "score"
	stagePostscore = "postscore"
	stagePublish   = "publish"
)

// Options wires the processor's collaborators. Reports is required; the
// ledger and mirror are optional.
type Options struct {
	Reports *report.Store
	Ledger  *ledger.Store
	Mirror  *mirror.Mirror
	Logger  *slog.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Processor scores one telemetry file at a time. It holds no per-file state
// and is safe for concurrent use.
type Processor struct {
	cfg        *config.Config
	layout     paths.Layout
	gate       *qc.Gate
	classifier *classify.Classifier
	detector   *resistant.Detector
	publisher  *behavior.Publisher
	scale      featurize.Scale

	reports *report.Store
	ledger  *ledger.Store
	mirror  *mirror.Mirror
	logger  *slog.Logger
	now     func() time.Time
}

// NewProcessor resolves every algorithm from cfg.
func NewProcessor(cfg *config.Config, opts Options) (*Processor, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if opts.Reports == nil {
		return nil, errors.New("report store is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Processor{
		cfg:        cfg,
		layout:     paths.New(cfg),
		gate:       qc.NewGate(cfg),
		classifier: classify.New(cfg),
		detector:   resistant.New(cfg),
		publisher:  behavior.New(cfg),
		scale:      featurize.Scale{MMPerPixel: cfg.Experiment.MMPerPixel(), FPS: cfg.Timebase.FPS},
		reports:    opts.Reports,
		ledger:     opts.Ledger,
		mirror:     opts.Mirror,
		logger:     logging.NewComponentLogger(opts.Logger, "session"),
		now:        now,
	}, nil
}

// Process runs one telemetry file to a terminal outcome. QC failures are
// outcomes, not errors; the returned error reports infrastructure problems
// such as a report table or output that could not be written.
func (p *Processor) Process(ctx context.Context, path string) (Result, error) {
	started := p.now()
	subject := paths.SubjectID(path)
	ctx = runctx.WithSubject(ctx, subject)
	ctx = runctx.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, p.logger)

	res := Result{SubjectID: subject, Source: path}
	if existing := p.layout.Existing(subject, fileutil.Exists); existing != "" {
		logger.Info("session skipped",
			logging.String(logging.FieldEventType, "session_skipped"),
			logging.String("existing", existing),
		)
		res.Outcome = OutcomeSkipped
		return p.finish(ctx, logger, res, started), nil
	}

	posePath := paths.PoseInput(path)
	if !fileutil.Exists(posePath) {
		posePath = ""
	}

	in, failure := p.load(path, posePath)
	if failure != nil {
		return p.fail(ctx, logger, res, started, failure, path, posePath)
	}
	res.Frames = in.Table.Len()

	verdict := p.gate.Preflight(in)
	if verdict.State == qc.StateFailed {
		return p.fail(ctx, logger, res, started, verdict.Failure, path, posePath)
	}

	scored, filled := p.score(logger, in)
	res.Frames = scored.Table.Len()
	res.FilledGaps = filled

	post := p.gate.Postscore(scored)
	if !post.Clean {
		return p.flag(ctx, logger, res, started, scored, post)
	}
	return p.publish(ctx, logger, res, started, scored)
}

// load reads and cleans the telemetry and its optional pose sidecar.
func (p *Processor) load(path, posePath string) (qc.Input, *qc.Failure) {
	in := qc.Input{SubjectID: paths.SubjectID(path), PosePath: posePath}
	table, err := frames.ReadCSVFile(path)
	if err != nil {
		return in, qc.ReadFailure(path, err)
	}
	cleaner.CleanTable(table, p.cfg.Stimuli, p.cfg.Cleaning.MaxGlitchFrames)
	in.Table = table

	if posePath != "" {
		pt, err := pose.Load(posePath)
		if err != nil {
			return in, qc.ReadFailure(posePath, err)
		}
		in.Pose = pt
	}
	return in, nil
}

// score derives speed, runs every labeling layer over the full recording and
// crops the result to the aligned window.
func (p *Processor) score(logger *slog.Logger, in qc.Input) (qc.Scored, int) {
	logger = logger.With(logging.String(logging.FieldStage, stageScore))
	t := in.Table
	n := t.Len()

	if featurize.EnsureSpeed(t, p.scale) {
		logger.Debug("speed derived from centroid", logging.Float64("mm_per_px", p.scale.MMPerPixel))
	}
	speed := t.MustNumeric(frames.ColSpeed)
	motion, _ := t.Numeric(frames.ColMotion)

	response := p.detector.ResponseWindows(t)
	coverage := p.detector.CoverageWindows(t)

	layer1 := p.classifier.Layer1(speed, motion)
	denoised := p.classifier.Denoise(speed, motion, resistant.Mask(response, n))
	layer2 := p.classifier.Layer2(layer1)
	layer2d := p.classifier.Layer2Denoised(denoised.Labels)
	res := resistant.Detect(layer2, coverage)
	resd := resistant.Detect(layer2d, coverage)
	beh := p.publisher.Publish(layer2, res)
	behd, filled := p.publisher.PublishDenoised(layer2d, resd, response)

	t.SetNumeric(frames.ColSpeedSmoothed, denoised.Smoothed)
	t.SetLabels(frames.ColLayer1, layer1)
	t.SetLabels(frames.ColLayer1Denoised, denoised.Labels)
	t.SetLabels(frames.ColLayer2, layer2)
	t.SetLabels(frames.ColLayer2Denoised, layer2d)
	t.SetLabels(frames.ColResistant, res)
	t.SetLabels(frames.ColResistantDenoised, resd)
	t.SetLabels(frames.ColBehavior, beh)
	t.SetLabels(frames.ColBehaviorDenoised, behd)

	onset := qc.FirstAlignmentOnset(p.cfg, t)
	start := onset - p.cfg.Timebase.BaselineFrames()
	end := start + p.cfg.Timebase.SpanFrames()
	aligned := t.Crop(start, end)
	var alignedPose *frames.Table
	if in.Pose != nil {
		alignedPose = in.Pose.Crop(start, end)
	}

	logger.Debug("session scored",
		logging.Int("frames", n),
		logging.Int("aligned_frames", aligned.Len()),
		logging.Int("onset", onset),
		logging.Int("coverage_windows", len(coverage)),
		logging.Int("filled_gaps", filled),
	)
	return qc.Scored{
		SubjectID:  in.SubjectID,
		Table:      aligned,
		FirstOnset: onset - max(start, 0),
		Pose:       alignedPose,
	}, filled
}

// fail handles a fatal QC outcome: one error row, then a best-effort copy of
// the raw inputs into the forensic directory.
func (p *Processor) fail(ctx context.Context, logger *slog.Logger, res Result, started time.Time, f *qc.Failure, path, posePath string) (Result, error) {
	res.Outcome = OutcomeError
	res.Codes = []qc.Code{f.Code}
	res.Output = p.layout.Forensic(res.SubjectID)

	logging.WarnWithContext(logger, "session failed pre-flight", "session_error",
		logging.String("code", string(f.Code)),
		logging.String("metrics", f.MetricsJSON()),
		logging.String(logging.FieldErrorHint, "inspect the forensic copy and the errors report"),
		logging.String(logging.FieldImpact, "session was not scored"),
	)

	if err := p.reports.Append(ctx, report.FromFailure(res.SubjectID, f)); err != nil {
		return p.finish(ctx, logger, res, started), Wrap(ErrReport, stagePreflight, "append error row", res.SubjectID, err)
	}
	BestEffort(logger, "forensic copy", p.copyForensic(res.Output, path, posePath),
		logging.String(logging.FieldErrorHint, "check error_dir permissions"),
	)
	return p.finish(ctx, logger, res, started), nil
}

func (p *Processor) copyForensic(dir string, sources ...string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create forensic dir: %w", err)
	}
	var errs []error
	for _, src := range sources {
		if src == "" {
			continue
		}
		if err := fileutil.CopyFile(src, filepath.Join(dir, filepath.Base(src))); err != nil {
			errs = append(errs, fmt.Errorf("copy %s: %w", filepath.Base(src), err))
		}
	}
	return errors.Join(errs...)
}

// flag handles a non-fatal outcome: one flag row per code, then a best-effort
// write of the scored output into quarantine.
func (p *Processor) flag(ctx context.Context, logger *slog.Logger, res Result, started time.Time, scored qc.Scored, post qc.Result) (Result, error) {
	res.Outcome = OutcomeFlagged
	res.Codes = post.Codes()
	res.Output = p.layout.Quarantine(res.SubjectID)

	rows := make([]report.Row, 0, len(post.Failures))
	for _, f := range post.Failures {
		rows = append(rows, report.FromFailure(res.SubjectID, f))
	}
	codes := make([]string, 0, len(res.Codes))
	for _, c := range res.Codes {
		codes = append(codes, string(c))
	}
	logging.WarnWithContext(logger, "session flagged", "session_flagged",
		logging.Any("codes", codes),
		logging.String(logging.FieldErrorHint, "review the flags report before using this session"),
		logging.String(logging.FieldImpact, "output written to quarantine"),
	)

	if err := p.reports.Append(ctx, rows...); err != nil {
		return p.finish(ctx, logger, res, started), Wrap(ErrReport, stagePostscore, "append flag rows", res.SubjectID, err)
	}

	written, err := p.writeOutputs(scored, res.Output, p.layout.QuarantinePose(res.SubjectID))
	BestEffort(logger, "quarantine write", err,
		logging.String(logging.FieldErrorHint, "check quarantine_dir permissions"),
	)
	p.mirror.Enqueue(ctx, written...)
	return p.finish(ctx, logger, res, started), nil
}

// publish writes the scored session to the primary location.
func (p *Processor) publish(ctx context.Context, logger *slog.Logger, res Result, started time.Time, scored qc.Scored) (Result, error) {
	res.Output = p.layout.Primary(res.SubjectID)
	written, err := p.writeOutputs(scored, res.Output, p.layout.PrimaryPose(res.SubjectID))
	if err != nil {
		res.Outcome = OutcomeError
		return p.finish(ctx, logger, res, started), Wrap(ErrPublish, stagePublish, "write primary output", res.SubjectID, err)
	}
	res.Outcome = OutcomeScored
	logger.Info("session scored",
		logging.String(logging.FieldEventType, "session_scored"),
		logging.String("output", res.Output),
		logging.Int("frames", res.Frames),
	)
	p.mirror.Enqueue(ctx, written...)
	return p.finish(ctx, logger, res, started), nil
}

// writeOutputs writes the pose table first and the main table last, so the
// main table's presence implies a complete session.
func (p *Processor) writeOutputs(scored qc.Scored, tablePath, posePath string) ([]string, error) {
	var written []string
	if scored.Pose != nil {
		if err := writeTable(posePath, scored.Pose, pose.Columns()); err != nil {
			return written, fmt.Errorf("write pose table: %w", err)
		}
		written = append(written, posePath)
	}
	if err := writeTable(tablePath, scored.Table, frames.OutputColumns(p.stimulusColumns())); err != nil {
		return written, fmt.Errorf("write scored table: %w", err)
	}
	return append(written, tablePath), nil
}

func (p *Processor) stimulusColumns() []string {
	cols := make([]string, 0, len(p.cfg.Stimuli))
	for _, s := range p.cfg.Stimuli {
		cols = append(cols, s.CSVColumn)
	}
	return cols
}

func writeTable(path string, t *frames.Table, columns []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return frames.WriteCSV(w, t, columns)
	})
}

// finish stamps the duration and records the outcome in the ledger when the
// processor runs inside a batch.
func (p *Processor) finish(ctx context.Context, logger *slog.Logger, res Result, started time.Time) Result {
	finished := p.now()
	res.Duration = finished.Sub(started)
	if p.ledger == nil {
		return res
	}
	runID, ok := runctx.RunIDFromContext(ctx)
	if !ok {
		return res
	}
	BestEffort(logger, "ledger record", p.ledger.Record(ctx, res.entry(runID, finished)),
		logging.String(logging.FieldErrorHint, "check the ledger database in report_dir"),
	)
	return res
}
