package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BeginRun records the start of a batch.
func (s *Store) BeginRun(ctx context.Context, id string, started time.Time) error {
	if err := s.exec(ctx, "INSERT INTO runs (id, started_at) VALUES (?, ?)", id, formatTime(started)); err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun stores the final tallies for a batch.
func (s *Store) FinishRun(ctx context.Context, id string, finished time.Time, c Counts) error {
	err := s.exec(ctx, `UPDATE runs
		SET finished_at = ?, files = ?, scored = ?, flagged = ?, errored = ?, skipped = ?
		WHERE id = ?`,
		formatTime(finished), c.Files, c.Scored, c.Flagged, c.Errored, c.Skipped, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Record appends a session outcome.
func (s *Store) Record(ctx context.Context, e Entry) error {
	recorded := e.RecordedAt
	if recorded.IsZero() {
		recorded = time.Now()
	}
	err := s.exec(ctx, `INSERT INTO sessions
		(run_id, subject_id, source_path, outcome, codes, frames, duration_ms, output_path, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.SubjectID, e.Source, e.Outcome, joinCodes(e.Codes), e.Frames,
		e.Duration.Milliseconds(), e.Output, formatTime(recorded))
	if err != nil {
		return fmt.Errorf("record session %s: %w", e.SubjectID, err)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, started_at, COALESCE(finished_at, ''),
		files, scored, flagged, errored, skipped
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(&r.ID, &started, &finished,
			&r.Counts.Files, &r.Counts.Scored, &r.Counts.Flagged, &r.Counts.Errored, &r.Counts.Skipped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LastRun returns the newest run, or nil when none exist.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	runs, err := s.Runs(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// Sessions returns session outcomes, newest first. An empty subject returns
// every subject.
func (s *Store) Sessions(ctx context.Context, subject string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT run_id, subject_id, source_path, outcome, codes, frames, duration_ms, output_path, recorded_at
		FROM sessions`
	args := []any{}
	if subject != "" {
		query += " WHERE subject_id = ?"
		args = append(args, subject)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                 Entry
			codes, recordedAt string
			durationMS        int64
		)
		if err := rows.Scan(&e.RunID, &e.SubjectID, &e.Source, &e.Outcome, &codes,
			&e.Frames, &durationMS, &e.Output, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		e.Codes = splitCodes(codes)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.RecordedAt = parseTime(recordedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// OutcomeCounts tallies every recorded session by outcome.
func (s *Store) OutcomeCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT outcome, COUNT(1) FROM sessions GROUP BY outcome")
	if err != nil {
		return nil, fmt.Errorf("query outcome counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		out[outcome] = n
	}
	return out, rows.Err()
}

// RunByID fetches a single run.
func (s *Store) RunByID(ctx context.Context, id string) (*Run, error) {
	var (
		r                 Run
		started, finished string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, started_at, COALESCE(finished_at, ''),
		files, scored, flagged, errored, skipped FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &started, &finished,
			&r.Counts.Files, &r.Counts.Scored, &r.Counts.Flagged, &r.Counts.Errored, &r.Counts.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return &r, nil
}
