package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StartRun inserts a new run in StatusRunning and returns it. batchID may be
// empty for standalone runs.
func (s *Store) StartRun(ctx context.Context, source, batchID string) (*Run, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (
            id, source_path, status, subtitle_count, batch_id, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		source,
		StatusRunning,
		0,
		nullableString(batchID),
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return s.GetRun(ctx, id)
}

// GetRun fetches a run by identifier. Returns (nil, nil) when no run matches.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// UpdateRun persists changes to an existing run.
func (s *Store) UpdateRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	run.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE runs
         SET source_path = ?, status = ?, transcription_method = ?, subtitle_count = ?,
             json_path = ?, text_path = ?, error_message = ?, batch_id = ?, updated_at = ?
         WHERE id = ?`,
		run.Source,
		run.Status,
		nullableString(run.Method),
		run.SubtitleCount,
		nullableString(run.JSONPath),
		nullableString(run.TextPath),
		nullableString(run.ErrorMessage),
		nullableString(run.BatchID),
		run.UpdatedAt.Format(time.RFC3339Nano),
		run.ID,
	); err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// ListRuns returns runs filtered by status set (or all runs when no status is
// provided), oldest first.
func (s *Store) ListRuns(ctx context.Context, statuses ...Status) ([]*Run, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + runColumns + ` FROM runs`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunsForBatch returns the runs recorded under a batch session, oldest first.
func (s *Store) RunsForBatch(ctx context.Context, batchID string) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE batch_id = ? ORDER BY created_at`, batchID)
	if err != nil {
		return nil, fmt.Errorf("runs for batch: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ClearRuns removes all recorded runs and batch sessions.
func (s *Store) ClearRuns(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	if err := s.execWithoutResultRetry(ctx, `DELETE FROM batches`); err != nil {
		return 0, fmt.Errorf("clear batches: %w", err)
	}
	return res.RowsAffected()
}
