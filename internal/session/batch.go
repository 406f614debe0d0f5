package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ethogram/internal/config"
	"ethogram/internal/ledger"
	"ethogram/internal/logging"
	"ethogram/internal/mirror"
	"ethogram/internal/paths"
	"ethogram/internal/runctx"
)

// LockFileName is the single-instance lock held for the duration of a batch.
const LockFileName = "ethogram.lock"

// Summary reports a finished batch.
type Summary struct {
	RunID   string
	Counts  ledger.Counts
	Results []Result
	Mirror  mirror.Stats
}

// Batch runs many files through a Processor with bounded parallelism.
type Batch struct {
	cfg       *config.Config
	processor *Processor
	ledger    *ledger.Store
	mirror    *mirror.Mirror
	logger    *slog.Logger
	lockPath  string
	now       func() time.Time
}

// NewBatch builds the processor and batch from the same options.
func NewBatch(cfg *config.Config, opts Options) (*Batch, error) {
	proc, err := NewProcessor(cfg, opts)
	if err != nil {
		return nil, err
	}
	return &Batch{
		cfg:       cfg,
		processor: proc,
		ledger:    opts.Ledger,
		mirror:    opts.Mirror,
		logger:    logging.NewComponentLogger(opts.Logger, "batch"),
		lockPath:  filepath.Join(cfg.Paths.ReportDir, LockFileName),
		now:       proc.now,
	}, nil
}

// Processor exposes the underlying single-file processor.
func (b *Batch) Processor() *Processor { return b.processor }

// RunDir discovers telemetry files in the configured input directory and runs
// them.
func (b *Batch) RunDir(ctx context.Context) (Summary, error) {
	files, err := paths.Discover(b.cfg.Paths.InputDir)
	if err != nil {
		return Summary{}, Wrap(ErrRead, "discover", "list input directory", b.cfg.Paths.InputDir, err)
	}
	return b.Run(ctx, files)
}

// Run processes files in parallel. Files share nothing but the report store,
// the ledger and the mirror queue. Cancelling ctx stops new files from being
// dispatched; files already running finish. The returned error joins every
// infrastructure failure; QC outcomes are reported in the summary only.
func (b *Batch) Run(ctx context.Context, files []string) (Summary, error) {
	lock := flock.New(b.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !ok {
		return Summary{}, fmt.Errorf("%w (lock: %s)", ErrLocked, b.lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			b.logger.Warn("failed to release batch lock", logging.Error(err))
		}
	}()

	runID := uuid.NewString()
	ctx = runctx.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, b.logger)
	started := b.now()

	// Sessions reference the run row, so a ledger that cannot open the run
	// is dropped for the whole batch.
	ledgerStore := b.ledger
	if ledgerStore != nil {
		if err := ledgerStore.BeginRun(ctx, runID, started); err != nil {
			BestEffort(logger, "ledger begin run", err)
			ledgerStore = nil
		}
	}
	proc := b.processor
	if ledgerStore == nil && proc.ledger != nil {
		clone := *proc
		clone.ledger = nil
		proc = &clone
	}

	workers := max(b.cfg.Workers.Count, 1)
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("files", len(files)),
		logging.Int("workers", workers),
	)

	results := make([]Result, len(files))
	dispatched := make([]bool, len(files))
	var (
		errMu sync.Mutex
		errs  []error
	)
	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range files {
		if ctx.Err() != nil {
			break
		}
		dispatched[i] = true
		g.Go(func() error {
			res, err := proc.Process(context.WithoutCancel(ctx), path)
			results[i] = res
			if err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
				logging.ErrorWithContext(logger, "session infrastructure failure", "session_failure",
					logging.String("source", path),
					logging.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{RunID: runID}
	for i, res := range results {
		if !dispatched[i] {
			continue
		}
		summary.Results = append(summary.Results, res)
		Tally(&summary.Counts, res)
	}
	summary.Mirror = b.mirror.Flush(ctx)

	if ledgerStore != nil {
		BestEffort(logger, "ledger finish run", ledgerStore.FinishRun(context.WithoutCancel(ctx), runID, b.now(), summary.Counts))
	}

	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_finish"),
		logging.Int("files", summary.Counts.Files),
		logging.Int("scored", summary.Counts.Scored),
		logging.Int("flagged", summary.Counts.Flagged),
		logging.Int("errored", summary.Counts.Errored),
		logging.Int("skipped", summary.Counts.Skipped),
		logging.Duration("elapsed", b.now().Sub(started)),
	)

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return summary, errors.Join(errs...)
}
