package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Job Posting Methods
// -----------------------------------------------------------------------------

const jobPostingColumns = `id, title, company, logo, company_website, description, requirements,
	location, salary, job_type, experience_level, category, skills, posted_by, posted_at,
	created_at, updated_at`

func scanJobPosting(row pgx.Row) (*JobPosting, error) {
	var p JobPosting
	var locationJSON, salaryJSON []byte
	err := row.Scan(&p.ID, &p.Title, &p.Company, &p.Logo, &p.CompanyWebsite, &p.Description,
		&p.Requirements, &locationJSON, &salaryJSON, &p.Type, &p.ExperienceLevel, &p.Category,
		&p.Skills, &p.PostedBy, &p.PostedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	// Parse JSONB fields
	if locationJSON != nil {
		_ = json.Unmarshal(locationJSON, &p.Location)
	}
	if salaryJSON != nil {
		_ = json.Unmarshal(salaryJSON, &p.Salary)
	}
	return &p, nil
}

func collectJobPostings(rows pgx.Rows) ([]JobPosting, error) {
	defer rows.Close()

	postings := []JobPosting{}
	for rows.Next() {
		p, err := scanJobPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		postings = append(postings, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job postings: %w", err)
	}
	return postings, nil
}

func jobPostingArgs(input *JobPostingInput) ([]any, error) {
	locationJSON, err := json.Marshal(input.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal location: %w", err)
	}
	salaryJSON, err := json.Marshal(input.Salary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal salary: %w", err)
	}
	postedAt := time.Now().UTC()
	if input.PostedAt != nil {
		postedAt = *input.PostedAt
	}
	return []any{
		input.Title, input.Company, input.Logo, input.CompanyWebsite, input.Description,
		input.Requirements, locationJSON, salaryJSON, jsonArray(input.Type),
		jsonArray(input.ExperienceLevel), jsonArray(input.Category), jsonArray(input.Skills),
		input.PostedBy, postedAt,
	}, nil
}

const insertJobPostingSQL = `INSERT INTO job_postings (title, company, logo, company_website,
		description, requirements, location, salary, job_type, experience_level, category,
		skills, posted_by, posted_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	 RETURNING ` + jobPostingColumns

// CreateJobPosting inserts a posting and returns the stored row.
func (db *DB) CreateJobPosting(ctx context.Context, input *JobPostingInput) (*JobPosting, error) {
	args, err := jobPostingArgs(input)
	if err != nil {
		return nil, err
	}
	p, err := scanJobPosting(db.pool.QueryRow(ctx, insertJobPostingSQL, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to create job posting: %w", err)
	}
	return p, nil
}

// InsertJobPostings inserts several postings in one transaction.
func (db *DB) InsertJobPostings(ctx context.Context, inputs []JobPostingInput) ([]JobPosting, error) {
	var created []JobPosting
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		var err error
		created, err = insertJobPostings(ctx, tx, inputs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReplaceJobPostings removes every posting (and, by cascade, every application) and
// inserts inputs in its place. Both steps share one transaction, so a failed insert leaves
// the stored postings as they were.
func (db *DB) ReplaceJobPostings(ctx context.Context, inputs []JobPostingInput) (int64, []JobPosting, error) {
	var deleted int64
	var created []JobPosting
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM job_postings`)
		if err != nil {
			return fmt.Errorf("failed to clear job postings: %w", err)
		}
		deleted = tag.RowsAffected()

		created, err = insertJobPostings(ctx, tx, inputs)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	return deleted, created, nil
}

func insertJobPostings(ctx context.Context, tx pgx.Tx, inputs []JobPostingInput) ([]JobPosting, error) {
	created := make([]JobPosting, 0, len(inputs))
	for i := range inputs {
		args, err := jobPostingArgs(&inputs[i])
		if err != nil {
			return nil, err
		}
		p, err := scanJobPosting(tx.QueryRow(ctx, insertJobPostingSQL, args...))
		if err != nil {
			return nil, fmt.Errorf("failed to insert job posting %d: %w", i, err)
		}
		created = append(created, *p)
	}
	return created, nil
}

// GetJobPostingByID retrieves a posting by its ID. Returns nil, nil when absent.
func (db *DB) GetJobPostingByID(ctx context.Context, id uuid.UUID) (*JobPosting, error) {
	p, err := scanJobPosting(db.pool.QueryRow(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	return p, nil
}

// ListJobPostings returns every posting, newest first.
func (db *DB) ListJobPostings(ctx context.Context) ([]JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings ORDER BY posted_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	return collectJobPostings(rows)
}

// ListJobPostingsByPoster returns the postings published by one account, newest first.
func (db *DB) ListJobPostingsByPoster(ctx context.Context, postedBy string) ([]JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE posted_by = $1
		 ORDER BY posted_at DESC, id`,
		postedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings by poster: %w", err)
	}
	return collectJobPostings(rows)
}
