package server

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/talenttrek/internal/db"
	"github.com/jonathan/talenttrek/internal/types"
)

// memStore is an in-memory Store. Profiles round-trip through JSON like the JSONB column.
type memStore struct {
	mu           sync.Mutex
	clock        time.Time
	users        map[uuid.UUID]*db.UserRecord
	postings     []db.JobPosting
	applications []db.Application
	resumes      []db.Resume

	// failWith makes every call return the error.
	failWith error
	// failCounts makes CountApplications fail.
	failCounts error
	// failInserts makes CreateJobPosting and CreateApplication fail.
	failInserts error

	calls map[string]int
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		users: make(map[uuid.UUID]*db.UserRecord),
		calls: make(map[string]int),
	}
}

// enter records the call and reports the configured failure. Callers hold no lock.
func (m *memStore) enter(name string) error {
	m.mu.Lock()
	m.calls[name]++
	m.mu.Unlock()
	return m.failWith
}

func (m *memStore) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func cloneProfile(p types.Profile) types.Profile {
	raw, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	var out types.Profile
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

func cloneUser(u *db.UserRecord) *db.UserRecord {
	c := *u
	c.Profile = cloneProfile(u.Profile)
	return &c
}

func (m *memStore) Ping(context.Context) error {
	return m.enter("Ping")
}

func (m *memStore) CreateUser(_ context.Context, input *db.UserCreateInput) (*db.UserRecord, error) {
	if err := m.enter("CreateUser"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	for _, u := range m.users {
		if u.Email == email {
			return nil, db.ErrUniqueViolation
		}
	}
	now := m.tick()
	u := &db.UserRecord{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        email,
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
		Profile:      cloneProfile(input.Profile),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	return cloneUser(u), nil
}

func (m *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*db.UserRecord, error) {
	if err := m.enter("GetUserByID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*db.UserRecord, error) {
	if err := m.enter("GetUserByEmail"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

// ModifyUser holds the store lock while fn runs, like the row lock of the real store.
func (m *memStore) ModifyUser(_ context.Context, id uuid.UUID, fn func(u *db.UserRecord) error) (*db.UserRecord, error) {
	if err := m.enter("ModifyUser"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	working := cloneUser(u)
	if err := fn(working); err != nil {
		return nil, err
	}
	u.Name = working.Name
	u.Profile = cloneProfile(working.Profile)
	u.UpdatedAt = m.tick()
	return cloneUser(u), nil
}

func (m *memStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	if err := m.enter("UpdatePassword"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memStore) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	if err := m.enter("TouchLastLogin"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		now := m.tick()
		u.LastLoginAt = &now
	}
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	if err := m.enter("DeleteUser"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	kept := m.applications[:0]
	for _, a := range m.applications {
		if a.UserID != id {
			kept = append(kept, a)
		}
	}
	m.applications = kept
	resumes := m.resumes[:0]
	for _, r := range m.resumes {
		if r.UserID != id {
			resumes = append(resumes, r)
		}
	}
	m.resumes = resumes
	return nil
}

func (m *memStore) insertPosting(input *db.JobPostingInput) db.JobPosting {
	now := m.tick()
	postedAt := now
	if input.PostedAt != nil {
		postedAt = *input.PostedAt
	}
	p := db.JobPosting{
		ID:              uuid.New(),
		Title:           input.Title,
		Company:         input.Company,
		Logo:            input.Logo,
		CompanyWebsite:  input.CompanyWebsite,
		Description:     input.Description,
		Requirements:    input.Requirements,
		Location:        input.Location,
		Salary:          input.Salary,
		Type:            db.StringArray(input.Type),
		ExperienceLevel: db.StringArray(input.ExperienceLevel),
		Category:        db.StringArray(input.Category),
		Skills:          db.StringArray(input.Skills),
		PostedBy:        input.PostedBy,
		PostedAt:        postedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.postings = append(m.postings, p)
	return p
}

func (m *memStore) CreateJobPosting(_ context.Context, input *db.JobPostingInput) (*db.JobPosting, error) {
	if err := m.enter("CreateJobPosting"); err != nil {
		return nil, err
	}
	if m.failInserts != nil {
		return nil, m.failInserts
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.insertPosting(input)
	return &p, nil
}

func (m *memStore) InsertJobPostings(_ context.Context, inputs []db.JobPostingInput) ([]db.JobPosting, error) {
	if err := m.enter("InsertJobPostings"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]db.JobPosting, 0, len(inputs))
	for i := range inputs {
		out = append(out, m.insertPosting(&inputs[i]))
	}
	return out, nil
}

func (m *memStore) GetJobPostingByID(_ context.Context, id uuid.UUID) (*db.JobPosting, error) {
	if err := m.enter("GetJobPostingByID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.postings {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memStore) newestFirst(keep func(db.JobPosting) bool) []db.JobPosting {
	out := []db.JobPosting{}
	for _, p := range m.postings {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PostedAt.After(out[j].PostedAt) })
	return out
}

func (m *memStore) ListJobPostings(context.Context) ([]db.JobPosting, error) {
	if err := m.enter("ListJobPostings"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newestFirst(func(db.JobPosting) bool { return true }), nil
}

func (m *memStore) ListJobPostingsByPoster(_ context.Context, postedBy string) ([]db.JobPosting, error) {
	if err := m.enter("ListJobPostingsByPoster"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newestFirst(func(p db.JobPosting) bool { return p.PostedBy == postedBy }), nil
}

func (m *memStore) ReplaceJobPostings(_ context.Context, inputs []db.JobPostingInput) (int64, []db.JobPosting, error) {
	if err := m.enter("ReplaceJobPostings"); err != nil {
		return 0, nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.postings))
	m.postings = nil
	m.applications = nil
	out := make([]db.JobPosting, 0, len(inputs))
	for i := range inputs {
		out = append(out, m.insertPosting(&inputs[i]))
	}
	return n, out, nil
}

func (m *memStore) CreateApplication(_ context.Context, input *db.ApplicationInput) (*db.Application, error) {
	if err := m.enter("CreateApplication"); err != nil {
		return nil, err
	}
	if m.failInserts != nil {
		return nil, m.failInserts
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.applications {
		if a.JobID == input.JobID && a.UserID == input.UserID {
			return nil, db.ErrUniqueViolation
		}
	}
	now := m.tick()
	a := db.Application{
		ID:         uuid.New(),
		JobID:      input.JobID,
		UserID:     input.UserID,
		Name:       input.Name,
		Email:      input.Email,
		Message:    input.Message,
		ResumePath: input.ResumePath,
		Status:     types.StatusPending,
		Stage:      types.DefaultStage,
		AppliedAt:  now,
		UpdatedAt:  now,
	}
	m.applications = append(m.applications, a)
	return &a, nil
}

// setStatus changes an application's status, as a recruiter tool would.
func (m *memStore) setStatus(id uuid.UUID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.applications {
		if m.applications[i].ID == id {
			m.applications[i].Status = status
		}
	}
}

func (m *memStore) HasApplied(_ context.Context, jobID, userID uuid.UUID) (bool, error) {
	if err := m.enter("HasApplied"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.applications {
		if a.JobID == jobID && a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) posting(id uuid.UUID) db.JobPosting {
	for _, p := range m.postings {
		if p.ID == id {
			return p
		}
	}
	return db.JobPosting{}
}

func (m *memStore) ListApplicationsByUser(_ context.Context, userID uuid.UUID) ([]db.ApplicationWithJob, error) {
	if err := m.enter("ListApplicationsByUser"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.ApplicationWithJob{}
	for i := len(m.applications) - 1; i >= 0; i-- {
		a := m.applications[i]
		if a.UserID != userID {
			continue
		}
		p := m.posting(a.JobID)
		out = append(out, db.ApplicationWithJob{
			Application: a,
			Job: db.JobSummary{
				ID:       p.ID,
				Title:    p.Title,
				Company:  p.Company,
				Location: p.Location,
				Type:     p.Type,
				Logo:     p.Logo,
			},
		})
	}
	return out, nil
}

func (m *memStore) ListApplicationsByJob(_ context.Context, jobID uuid.UUID) ([]db.ApplicationWithApplicant, error) {
	if err := m.enter("ListApplicationsByJob"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.ApplicationWithApplicant{}
	for _, a := range m.applications {
		if a.JobID != jobID {
			continue
		}
		applicant := db.ApplicantSummary{ID: a.UserID}
		if u, ok := m.users[a.UserID]; ok {
			applicant.Name = u.Name
			applicant.Email = u.Email
		}
		out = append(out, db.ApplicationWithApplicant{Application: a, Applicant: applicant})
	}
	return out, nil
}

func (m *memStore) CountApplications(_ context.Context, userID uuid.UUID, status string) (int, error) {
	if err := m.enter("CountApplications"); err != nil {
		return 0, err
	}
	if m.failCounts != nil {
		return 0, m.failCounts
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.applications {
		if a.UserID == userID && (status == "" || a.Status == status) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CreateResume(_ context.Context, input *db.ResumeInput) (*db.Resume, error) {
	if err := m.enter("CreateResume"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := db.Resume{
		ID:          uuid.New(),
		UserID:      input.UserID,
		FileName:    input.FileName,
		FilePath:    input.FilePath,
		ContentType: input.ContentType,
		SizeBytes:   input.SizeBytes,
		Skills:      db.StringArray(input.Skills),
		Summary:     input.Summary,
		WordCount:   input.WordCount,
		UploadedAt:  m.tick(),
	}
	m.resumes = append(m.resumes, r)
	return &r, nil
}

func (m *memStore) GetLatestResume(_ context.Context, userID uuid.UUID) (*db.Resume, error) {
	if err := m.enter("GetLatestResume"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.resumes) - 1; i >= 0; i-- {
		if m.resumes[i].UserID == userID {
			r := m.resumes[i]
			return &r, nil
		}
	}
	return nil, nil
}
