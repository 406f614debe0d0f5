package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"ethogram/internal/fileutil"
	"ethogram/internal/qc"
)

// Kind distinguishes fatal error rows from non-fatal flag rows.
type Kind string

const (
	KindError Kind = "error"
	KindFlag  Kind = "flag"
)

// Header is the column layout shared by both report tables.
var Header = []string{"kind", "code", "subject_id", "metrics_blob"}

// Row is one append-only report record.
type Row struct {
	Kind      Kind
	Code      qc.Code
	SubjectID string
	Metrics   string
}

// FromFailure builds the report row for a QC failure.
func FromFailure(subjectID string, f *qc.Failure) Row {
	kind := KindFlag
	if f.Fatal() {
		kind = KindError
	}
	return Row{Kind: kind, Code: f.Code, SubjectID: subjectID, Metrics: f.MetricsJSON()}
}

// Validate rejects rows whose code is not in the registry for their kind.
func (r Row) Validate() error {
	switch r.Kind {
	case KindError:
		if !r.Code.IsFatal() {
			return fmt.Errorf("code %q is not a fatal code", r.Code)
		}
	case KindFlag:
		if !r.Code.IsFlag() {
			return fmt.Errorf("code %q is not a flag code", r.Code)
		}
	default:
		return fmt.Errorf("unknown report kind %q", r.Kind)
	}
	if r.SubjectID == "" {
		return errors.New("subject id is required")
	}
	return nil
}

const lockRetry = 25 * time.Millisecond

// Store persists the error and flag tables under one directory. Appends
// rewrite the whole table, so they are serialized in-process by a mutex and
// across processes by a lock file next to each table.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open prepares the report directory.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the CSV backing kind.
func (s *Store) Path(kind Kind) string {
	switch kind {
	case KindError:
		return filepath.Join(s.dir, "errors.csv")
	default:
		return filepath.Join(s.dir, "flags.csv")
	}
}

// Append adds rows to their tables. Rows must share one kind.
func (s *Store) Append(ctx context.Context, rows ...Row) error {
	if len(rows) == 0 {
		return nil
	}
	kind := rows[0].Kind
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("invalid report row: %w", err)
		}
		if r.Kind != kind {
			return errors.New("report rows must share one kind")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(kind)
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("lock %s: %w", filepath.Base(path), err)
	}
	if !ok {
		return fmt.Errorf("lock %s: not acquired", filepath.Base(path))
	}
	defer lock.Unlock()

	existing, err := readRows(path)
	if err != nil {
		return err
	}
	all := append(existing, rows...)
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return writeRows(w, all)
	})
}

// Rows returns every row of kind in append order.
func (s *Store) Rows(kind Kind) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readRows(s.Path(kind))
}

// Subjects returns the set of subject ids with at least one row of kind.
func (s *Store) Subjects(kind Kind) (map[string]struct{}, error) {
	rows, err := s.Rows(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		out[r.SubjectID] = struct{}{}
	}
	return out, nil
}

// CountByCode tallies rows of kind per code.
func (s *Store) CountByCode(kind Kind) (map[qc.Code]int, error) {
	rows, err := s.Rows(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[qc.Code]int)
	for _, r := range rows {
		out[r.Code]++
	}
	return out, nil
}

func readRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(Header)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, Row{
			Kind:      Kind(rec[0]),
			Code:      qc.Code(rec[1]),
			SubjectID: rec[2],
			Metrics:   rec[3],
		})
	}
	return rows, nil
}

func writeRows(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write([]string{string(r.Kind), string(r.Code), r.SubjectID, r.Metrics}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
