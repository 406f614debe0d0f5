package mirror

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"

	"ethogram/internal/config"
	"ethogram/internal/fileutil"
	"ethogram/internal/logging"
)

// Stats summarizes one flushed batch.
type Stats struct {
	Copied int
	Failed int
	Bytes  int64
}

// Mirror queues artifact paths and copies them once a batch fills. A nil
// Mirror is valid and does nothing.
type Mirror struct {
	dir       string
	batchSize int
	logger    *slog.Logger

	mu      sync.Mutex
	pending []string

	// flushMu keeps batches from interleaving on the destination.
	flushMu sync.Mutex
	total   Stats
}

// New returns nil when no mirror directory is configured.
func New(cfg *config.Config, logger *slog.Logger) *Mirror {
	if cfg == nil || cfg.Mirror.Dir == "" {
		return nil
	}
	size := cfg.Mirror.BatchSize
	if size <= 0 {
		size = 1
	}
	return &Mirror{
		dir:       cfg.Mirror.Dir,
		batchSize: size,
		logger:    logging.NewComponentLogger(logger, "mirror"),
	}
}

// Dir returns the mirror root.
func (m *Mirror) Dir() string {
	if m == nil {
		return ""
	}
	return m.dir
}

// Destination maps a published artifact to its mirror location. The parent
// directory name is kept so scored and flagged outputs stay apart.
func (m *Mirror) Destination(src string) string {
	return filepath.Join(m.dir, filepath.Base(filepath.Dir(src)), filepath.Base(src))
}

// Enqueue adds artifacts to the pending batch and flushes when it is full.
func (m *Mirror) Enqueue(ctx context.Context, paths ...string) {
	if m == nil || len(paths) == 0 {
		return
	}
	m.mu.Lock()
	m.pending = append(m.pending, paths...)
	full := len(m.pending) >= m.batchSize
	m.mu.Unlock()
	if full {
		m.Flush(ctx)
	}
}

// Pending returns the number of queued artifacts.
func (m *Mirror) Pending() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Flush copies every queued artifact and returns the batch stats.
func (m *Mirror) Flush(ctx context.Context) Stats {
	if m == nil {
		return Stats{}
	}
	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()
	if len(batch) == 0 {
		return Stats{}
	}

	logger := logging.WithContext(ctx, m.logger)
	var stats Stats
	for _, src := range batch {
		dst := m.Destination(src)
		if err := m.copy(src, dst); err != nil {
			stats.Failed++
			logging.WarnWithContext(logger, "mirror copy failed", "mirror_copy_failed",
				logging.String("source", src),
				logging.String("destination", dst),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the mirror directory is mounted and writable"),
				logging.String(logging.FieldImpact, "artifact is only stored in the primary location"),
			)
			continue
		}
		stats.Copied++
		if info, err := os.Stat(dst); err == nil {
			stats.Bytes += info.Size()
		}
	}

	m.total.Copied += stats.Copied
	m.total.Failed += stats.Failed
	m.total.Bytes += stats.Bytes

	logger.Info("mirror batch flushed",
		logging.String(logging.FieldEventType, "mirror_flush"),
		logging.Int("copied", stats.Copied),
		logging.Int("failed", stats.Failed),
		logging.String("size", humanize.Bytes(uint64(stats.Bytes))),
	)
	return stats
}

// Totals returns the cumulative stats across all flushed batches.
func (m *Mirror) Totals() Stats {
	if m == nil {
		return Stats{}
	}
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	return m.total
}

func (m *Mirror) copy(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return fileutil.CopyFileVerified(src, dst)
}
