package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/talenttrek/internal/db"
	"github.com/jonathan/talenttrek/internal/events"
	"github.com/jonathan/talenttrek/internal/schemas"
	"github.com/jonathan/talenttrek/internal/seed"
	"github.com/jonathan/talenttrek/internal/storage"
	"github.com/jonathan/talenttrek/internal/types"
)

// maxSeedBody bounds seed payloads.
const maxSeedBody = 8 << 20

const msgInvalidDataFormat = "Invalid data format"

type jobPostedEvent struct {
	JobID    string   `json:"jobId"`
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	Skills   []string `json:"skills"`
	PostedBy string   `json:"postedBy"`
}

// jobRequestFromForm reads a posting from multipart fields. Nested fields arrive as JSON
// strings.
func jobRequestFromForm(r *http.Request) (*types.CreateJobRequest, error) {
	req := &types.CreateJobRequest{
		Title:          r.FormValue("title"),
		Company:        r.FormValue("company"),
		Description:    r.FormValue("description"),
		Requirements:   r.FormValue("requirements"),
		CompanyWebsite: r.FormValue("companyWebsite"),
	}

	if v := r.FormValue("location"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Location); err != nil {
			return nil, &ErrValidation{Message: msgInvalidDataFormat}
		}
	}
	if v := r.FormValue("salary"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Salary); err != nil {
			return nil, &ErrValidation{Message: msgInvalidDataFormat}
		}
	}
	for field, dst := range map[string]*[]string{
		"type":            &req.Type,
		"experienceLevel": &req.ExperienceLevel,
		"category":        &req.Category,
	} {
		values, err := jsonList(r.FormValue(field))
		if err != nil {
			return nil, &ErrValidation{Message: msgInvalidDataFormat}
		}
		*dst = values
	}
	return req, nil
}

// jsonList decodes a JSON array of strings or a single JSON string.
func jsonList(v string) ([]string, error) {
	if v == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(v), &list); err == nil {
		return list, nil
	}
	var single string
	if err := json.Unmarshal([]byte(v), &single); err != nil {
		return nil, err
	}
	if single == "" {
		return nil, nil
	}
	return []string{single}, nil
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	var (
		req      *types.CreateJobRequest
		logoFile *storage.File
		logo     string
	)
	if isMultipart(r) {
		if err := s.parseMultipart(w, r); err != nil {
			s.fail(w, r, err, "Error posting job")
			return
		}
		var err error
		if req, err = jobRequestFromForm(r); err != nil {
			s.fail(w, r, err, "Error posting job")
			return
		}
		if logoFile, err = s.saveUpload(w, r, "logo", storage.KindImage); err != nil {
			s.fail(w, r, err, "Error posting job")
			return
		}
		if logoFile != nil {
			logo = logoFile.Path
		}
	} else {
		req = &types.CreateJobRequest{}
		if err := decodeJSON(w, r, req); err != nil {
			s.fail(w, r, &ErrValidation{Message: msgInvalidDataFormat}, "Error posting job")
			return
		}
	}

	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		s.discardUpload(r.Context(), logoFile)
		s.fail(w, r, validationError(err), "Error posting job")
		return
	}

	job, err := s.db.CreateJobPosting(r.Context(), &db.JobPostingInput{
		Title:           strings.TrimSpace(req.Title),
		Company:         strings.TrimSpace(req.Company),
		Logo:            logo,
		CompanyWebsite:  req.CompanyWebsite,
		Description:     req.Description,
		Requirements:    req.Requirements,
		Location:        *req.Location,
		Salary:          *req.Salary,
		Type:            req.Type,
		ExperienceLevel: req.ExperienceLevel,
		Category:        req.Category,
		Skills:          s.extractor.ExtractFields(req.Requirements, req.Description).Strings(),
		PostedBy:        user.Email,
	})
	if err != nil {
		s.discardUpload(r.Context(), logoFile)
		s.fail(w, r, err, "Error posting job")
		return
	}
	s.postings.Invalidate(r.Context())

	s.logger.Info("job posted",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.Int("skills", len(job.Skills)),
	)
	_ = s.events.Publish(r.Context(), events.JobPosted, jobPostedEvent{
		JobID:    job.ID.String(),
		Title:    job.Title,
		Company:  job.Company,
		Skills:   job.Skills,
		PostedBy: job.PostedBy,
	})

	s.ok(w, http.StatusOK, map[string]any{"message": "Job posted successfully", "job": job})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.postings.ListJobPostings(r.Context())
	if err != nil {
		s.fail(w, r, err, "Error fetching jobs")
		return
	}
	s.ok(w, http.StatusOK, map[string]any{"jobs": nonNil(jobs)})
}

// loadJob resolves a posting from a path value.
func (s *Server) loadJob(r *http.Request, name string) (*db.JobPosting, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return nil, &ErrInvalidID{Kind: "job"}
	}
	job, err := s.db.GetJobPostingByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &ErrJobNotFound{JobID: id}
	}
	return job, nil
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.loadJob(r, "id")
	if err != nil {
		s.fail(w, r, err, "Error fetching job")
		return
	}
	s.ok(w, http.StatusOK, map[string]any{"job": job})
}

func (s *Server) handleMyJobs(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	jobs, err := s.db.ListJobPostingsByPoster(r.Context(), user.Email)
	if err != nil {
		s.fail(w, r, err, "Error fetching recruiter jobs")
		return
	}
	s.ok(w, http.StatusOK, map[string]any{"jobs": nonNil(jobs)})
}

func (s *Server) handleJobApplications(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	job, err := s.loadJob(r, "id")
	if err != nil {
		s.fail(w, r, err, "Error fetching applications")
		return
	}
	if !strings.EqualFold(job.PostedBy, user.Email) {
		s.fail(w, r, &ErrForbidden{Message: "Access denied. Only the job poster can view applications."}, "")
		return
	}

	applications, err := s.db.ListApplicationsByJob(r.Context(), job.ID)
	if err != nil {
		s.fail(w, r, err, "Error fetching applications")
		return
	}
	s.ok(w, http.StatusOK, map[string]any{"applications": nonNil(applications)})
}

func (s *Server) handleUploadJobLogo(w http.ResponseWriter, r *http.Request) {
	file, err := s.saveUpload(w, r, "logo", storage.KindImage)
	if err != nil {
		s.fail(w, r, err, "Error uploading logo")
		return
	}
	if file == nil {
		s.reject(w, http.StatusBadRequest, "No logo file uploaded")
		return
	}
	s.ok(w, http.StatusOK, map[string]any{
		"message":      "Logo uploaded successfully",
		"logoPath":     file.Path,
		"logoFilename": path.Base(file.Key),
	})
}

func (s *Server) handleClearJobs(w http.ResponseWriter, r *http.Request) {
	if s.config.Server.IsProduction() {
		s.reject(w, http.StatusForbidden, "Clearing jobs not allowed in production")
		return
	}

	res, err := s.seeder.Run(r.Context(), nil, true)
	if err != nil {
		s.fail(w, r, err, "Error clearing jobs")
		return
	}
	s.postings.Invalidate(r.Context())

	s.ok(w, http.StatusOK, map[string]any{
		"message":      "All jobs cleared successfully",
		"deletedCount": res.Deleted,
	})
}

func (s *Server) handleSeedJobs(w http.ResponseWriter, r *http.Request) {
	if s.config.Server.IsProduction() {
		s.reject(w, http.StatusForbidden, "Seeding not allowed in production")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSeedBody))
	if err != nil {
		s.fail(w, r, &ErrValidation{Message: "Invalid seed data"}, "Error seeding jobs")
		return
	}

	inputs, err := seed.Parse(data, s.extractor)
	if err != nil {
		s.fail(w, r, seedError(err), "Error seeding jobs")
		return
	}

	res, err := s.seeder.Run(r.Context(), inputs, true)
	if err != nil {
		s.fail(w, r, err, "Error seeding jobs")
		return
	}
	s.postings.Invalidate(r.Context())

	s.ok(w, http.StatusOK, map[string]any{
		"message":      "Sample jobs seeded successfully",
		"count":        len(res.Inserted),
		"deletedCount": res.Deleted,
	})
}

// seedError turns schema failures into client errors.
func seedError(err error) error {
	var invalid *schemas.ValidationError
	if errors.As(err, &invalid) {
		return &ErrValidation{Message: "Invalid seed data: " + invalid.Summary(3)}
	}
	var malformed *schemas.SchemaLoadError
	if errors.As(err, &malformed) {
		return &ErrValidation{Message: "Invalid seed data"}
	}
	return err
}
