package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StartBatch inserts a new batch session and returns it.
func (s *Store) StartBatch(ctx context.Context, inputDir string, total int) (*Batch, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO batches (
            id, input_dir, total, succeeded, failed, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		inputDir,
		total,
		0,
		0,
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	return s.GetBatch(ctx, id)
}

// GetBatch fetches a batch session by identifier. Returns (nil, nil) when no
// batch matches.
func (s *Store) GetBatch(ctx context.Context, id string) (*Batch, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = ?`, id)
	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return batch, nil
}

// UpdateBatch persists counts and the report location for a batch session.
func (s *Store) UpdateBatch(ctx context.Context, batch *Batch) error {
	if batch == nil {
		return errors.New("batch is nil")
	}
	batch.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE batches
         SET input_dir = ?, total = ?, succeeded = ?, failed = ?, report_path = ?, updated_at = ?
         WHERE id = ?`,
		batch.InputDir,
		batch.Total,
		batch.Succeeded,
		batch.Failed,
		nullableString(batch.ReportPath),
		batch.UpdatedAt.Format(time.RFC3339Nano),
		batch.ID,
	); err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// ListBatches returns batch sessions oldest first.
func (s *Store) ListBatches(ctx context.Context) ([]*Batch, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+batchColumns+` FROM batches ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []*Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}
