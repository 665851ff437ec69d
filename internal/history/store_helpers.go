package history

import (
	"database/sql"
	"errors"
	"time"
)

const runColumns = "id, source_path, status, transcription_method, subtitle_count, json_path, text_path, error_message, batch_id, created_at, updated_at"

const batchColumns = "id, input_dir, total, succeeded, failed, report_path, created_at, updated_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id            string
		sourcePath    string
		statusStr     string
		method        sql.NullString
		subtitleCount sql.NullInt64
		jsonPath      sql.NullString
		textPath      sql.NullString
		errorMessage  sql.NullString
		batchID       sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&statusStr,
		&method,
		&subtitleCount,
		&jsonPath,
		&textPath,
		&errorMessage,
		&batchID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		Source:       sourcePath,
		Status:       Status(statusStr),
		Method:       method.String,
		JSONPath:     jsonPath.String,
		TextPath:     textPath.String,
		ErrorMessage: errorMessage.String,
		BatchID:      batchID.String,
	}
	if subtitleCount.Valid {
		run.SubtitleCount = int(subtitleCount.Int64)
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		run.UpdatedAt = updated
	}
	return run, nil
}

func scanBatch(scanner interface{ Scan(dest ...any) error }) (*Batch, error) {
	var (
		id         string
		inputDir   string
		total      sql.NullInt64
		succeeded  sql.NullInt64
		failed     sql.NullInt64
		reportPath sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&inputDir,
		&total,
		&succeeded,
		&failed,
		&reportPath,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	batch := &Batch{
		ID:         id,
		InputDir:   inputDir,
		Total:      int(total.Int64),
		Succeeded:  int(succeeded.Int64),
		Failed:     int(failed.Int64),
		ReportPath: reportPath.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		batch.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		batch.UpdatedAt = updated
	}
	return batch, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
