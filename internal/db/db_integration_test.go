package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talenttrek/internal/types"
)

// setupTestDB connects to the local DB for integration testing and applies the schema.
// Skipped if DATABASE_URL is not set or connection fails
func setupTestDB(t *testing.T) *DB {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))
	return db
}

func createTestUser(t *testing.T, db *DB, role string) *UserRecord {
	t.Helper()
	u, err := db.CreateUser(context.Background(), &UserCreateInput{
		Name:         "Test User",
		Email:        "test-" + uuid.New().String() + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.DeleteUser(context.Background(), u.ID) })
	return u
}

func TestIntegration_UserCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	u := createTestUser(t, db, types.RoleJobSeeker)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.True(t, u.IsActive)

	// Email lookup is case-insensitive
	got, err := db.GetUserByEmail(ctx, "  "+u.Email+" ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	// Duplicate email
	_, err = db.CreateUser(ctx, &UserCreateInput{Name: "Dup", Email: u.Email, PasswordHash: "x", Role: types.RoleJobSeeker})
	assert.ErrorIs(t, err, ErrUniqueViolation)

	// Profile round trip
	updated, err := db.ModifyUser(ctx, u.ID, func(rec *UserRecord) error {
		rec.Name = "Renamed"
		rec.Profile.FirstName = "Asha"
		rec.Profile.EnsureJobSeeker().Skills = []string{"Go", "SQL"}
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, []string{"Go", "SQL"}, updated.Profile.JobSeeker.Skills)

	require.NoError(t, db.UpdatePassword(ctx, u.ID, "new-hash"))
	require.NoError(t, db.TouchLastLogin(ctx, u.ID))
	got, err = db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.NotNil(t, got.LastLoginAt)

	// Not found is nil, nil
	missing, err := db.GetUserByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = db.ModifyUser(ctx, uuid.New(), func(*UserRecord) error { return nil })
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIntegration_ModifyUserSerializesWriters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	u := createTestUser(t, db, types.RoleJobSeeker)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := db.ModifyUser(ctx, u.ID, func(rec *UserRecord) error {
				js := rec.Profile.EnsureJobSeeker()
				js.Skills = append(js.Skills, fmt.Sprintf("skill-%d", i))
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile.JobSeeker)
	assert.Len(t, got.Profile.JobSeeker.Skills, 8)

	// An error from fn writes nothing
	boom := errors.New("boom")
	_, err = db.ModifyUser(ctx, u.ID, func(rec *UserRecord) error {
		rec.Name = "Discarded"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	got, err = db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test User", got.Name)
}

func TestIntegration_JobPostingsAndApplications(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	recruiter := createTestUser(t, db, types.RoleRecruiter)
	seeker := createTestUser(t, db, types.RoleJobSeeker)

	job, err := db.CreateJobPosting(ctx, &JobPostingInput{
		Title:    "Backend Engineer",
		Company:  "Acme",
		Location: types.Location{Country: "India", City: "Pune"},
		Type:     []string{"Full Time"},
		Skills:   []string{"Go", "PostgreSQL"},
		PostedBy: recruiter.Email,
	})
	require.NoError(t, err)
	defer func() { _, _ = db.pool.Exec(ctx, `DELETE FROM job_postings WHERE id = $1`, job.ID) }()

	assert.Equal(t, StringArray{"Go", "PostgreSQL"}, job.Skills)
	assert.Equal(t, "Pune", job.Location.City)
	assert.Equal(t, StringArray{}, job.Category)

	mine, err := db.ListJobPostingsByPoster(ctx, recruiter.Email)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, job.ID, mine[0].ID)

	app, err := db.CreateApplication(ctx, &ApplicationInput{JobID: job.ID, UserID: seeker.ID, Name: seeker.Name, Email: seeker.Email})
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, app.Status)
	assert.Equal(t, types.DefaultStage, app.Stage)

	_, err = db.CreateApplication(ctx, &ApplicationInput{JobID: job.ID, UserID: seeker.ID})
	assert.ErrorIs(t, err, ErrUniqueViolation)

	applied, err := db.HasApplied(ctx, job.ID, seeker.ID)
	require.NoError(t, err)
	assert.True(t, applied)

	byUser, err := db.ListApplicationsByUser(ctx, seeker.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "Acme", byUser[0].Job.Company)

	byJob, err := db.ListApplicationsByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, byJob, 1)
	assert.Equal(t, seeker.Email, byJob[0].Applicant.Email)

	total, err := db.CountApplications(ctx, seeker.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	pending, err := db.CountApplications(ctx, seeker.ID, types.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestIntegration_Resumes(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	u := createTestUser(t, db, types.RoleJobSeeker)

	none, err := db.GetLatestResume(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = db.CreateResume(ctx, &ResumeInput{
		UserID: u.ID, FileName: "cv.txt", FilePath: "/uploads/cv.txt",
		Skills: []string{"Python"}, Summary: "Python dev", WordCount: 2,
	})
	require.NoError(t, err)

	latest, err := db.GetLatestResume(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, StringArray{"Python"}, latest.Skills)
	assert.Equal(t, 2, latest.WordCount)
}
