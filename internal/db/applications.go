package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Application Methods
// -----------------------------------------------------------------------------

const applicationColumns = `a.id, a.job_id, a.user_id, a.name, a.email, a.message, a.resume_path,
	a.status, a.stage, a.interview_date, a.applied_at, a.updated_at`

func applicationFields(a *Application) []any {
	return []any{&a.ID, &a.JobID, &a.UserID, &a.Name, &a.Email, &a.Message, &a.ResumePath,
		&a.Status, &a.Stage, &a.InterviewDate, &a.AppliedAt, &a.UpdatedAt}
}

// CreateApplication inserts an application. A second application by the same user to the
// same posting returns ErrUniqueViolation.
func (db *DB) CreateApplication(ctx context.Context, input *ApplicationInput) (*Application, error) {
	var a Application
	err := db.pool.QueryRow(ctx,
		`INSERT INTO applications AS a (job_id, user_id, name, email, message, resume_path)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+applicationColumns,
		input.JobID, input.UserID, input.Name, input.Email, input.Message, input.ResumePath,
	).Scan(applicationFields(&a)...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUniqueViolation
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return &a, nil
}

// HasApplied reports whether the user already applied to the posting.
func (db *DB) HasApplied(ctx context.Context, jobID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1 AND user_id = $2)`,
		jobID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check application: %w", err)
	}
	return exists, nil
}

// ListApplicationsByUser returns a user's applications joined with their postings, newest
// first.
func (db *DB) ListApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]ApplicationWithJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+`, j.id, j.title, j.company, j.location, j.job_type, j.logo
		 FROM applications a
		 JOIN job_postings j ON j.id = a.job_id
		 WHERE a.user_id = $1
		 ORDER BY a.applied_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	result := []ApplicationWithJob{}
	for rows.Next() {
		var item ApplicationWithJob
		var locationJSON []byte
		dest := append(applicationFields(&item.Application),
			&item.Job.ID, &item.Job.Title, &item.Job.Company, &locationJSON, &item.Job.Type, &item.Job.Logo)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		if locationJSON != nil {
			_ = json.Unmarshal(locationJSON, &item.Job.Location)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return result, nil
}

// ListApplicationsByJob returns the applications to one posting with applicant details,
// newest first.
func (db *DB) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]ApplicationWithApplicant, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+`, u.id, u.name, u.email
		 FROM applications a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.job_id = $1
		 ORDER BY a.applied_at DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job applications: %w", err)
	}
	defer rows.Close()

	result := []ApplicationWithApplicant{}
	for rows.Next() {
		var item ApplicationWithApplicant
		dest := append(applicationFields(&item.Application),
			&item.Applicant.ID, &item.Applicant.Name, &item.Applicant.Email)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan job application: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job applications: %w", err)
	}
	return result, nil
}

// CountApplications counts a user's applications. An empty status counts all of them.
func (db *DB) CountApplications(ctx context.Context, userID uuid.UUID, status string) (int, error) {
	var (
		count int
		row   pgx.Row
	)
	if status == "" {
		row = db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE user_id = $1`, userID)
	} else {
		row = db.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM applications WHERE user_id = $1 AND status = $2`, userID, status)
	}
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}
