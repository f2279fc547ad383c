package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/talenttrek/internal/db"
)

// Store is the persistence the API needs. *db.DB implements it.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, input *db.UserCreateInput) (*db.UserRecord, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*db.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*db.UserRecord, error)
	ModifyUser(ctx context.Context, id uuid.UUID, fn func(u *db.UserRecord) error) (*db.UserRecord, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateJobPosting(ctx context.Context, input *db.JobPostingInput) (*db.JobPosting, error)
	InsertJobPostings(ctx context.Context, inputs []db.JobPostingInput) ([]db.JobPosting, error)
	GetJobPostingByID(ctx context.Context, id uuid.UUID) (*db.JobPosting, error)
	ListJobPostings(ctx context.Context) ([]db.JobPosting, error)
	ListJobPostingsByPoster(ctx context.Context, postedBy string) ([]db.JobPosting, error)
	ReplaceJobPostings(ctx context.Context, inputs []db.JobPostingInput) (int64, []db.JobPosting, error)

	CreateApplication(ctx context.Context, input *db.ApplicationInput) (*db.Application, error)
	HasApplied(ctx context.Context, jobID, userID uuid.UUID) (bool, error)
	ListApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]db.ApplicationWithJob, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]db.ApplicationWithApplicant, error)
	CountApplications(ctx context.Context, userID uuid.UUID, status string) (int, error)

	CreateResume(ctx context.Context, input *db.ResumeInput) (*db.Resume, error)
	GetLatestResume(ctx context.Context, userID uuid.UUID) (*db.Resume, error)
}

var _ Store = (*db.DB)(nil)
