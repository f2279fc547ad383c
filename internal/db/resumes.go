package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const resumeColumns = `id, user_id, file_name, file_path, content_type, size_bytes, skills,
	summary, word_count, uploaded_at`

func scanResume(row pgx.Row) (*Resume, error) {
	var r Resume
	err := row.Scan(&r.ID, &r.UserID, &r.FileName, &r.FilePath, &r.ContentType, &r.SizeBytes,
		&r.Skills, &r.Summary, &r.WordCount, &r.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateResume records an uploaded resume and its parse results.
func (db *DB) CreateResume(ctx context.Context, input *ResumeInput) (*Resume, error) {
	r, err := scanResume(db.pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, file_name, file_path, content_type, size_bytes, skills,
			summary, word_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+resumeColumns,
		input.UserID, input.FileName, input.FilePath, input.ContentType, input.SizeBytes,
		jsonArray(input.Skills), input.Summary, input.WordCount,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}
	return r, nil
}

// GetLatestResume returns the most recent upload of a user. Returns nil, nil when the user
// has none.
func (db *DB) GetLatestResume(ctx context.Context, userID uuid.UUID) (*Resume, error) {
	r, err := scanResume(db.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1
		 ORDER BY uploaded_at DESC LIMIT 1`,
		userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return r, nil
}
