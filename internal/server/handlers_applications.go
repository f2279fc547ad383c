package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/talenttrek/internal/db"
	"github.com/jonathan/talenttrek/internal/events"
	"github.com/jonathan/talenttrek/internal/storage"
	"github.com/jonathan/talenttrek/internal/types"
)

type applicationSubmittedEvent struct {
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	UserID        string `json:"userId"`
	HasResume     bool   `json:"hasResume"`
}

func (s *Server) decodeApplyRequest(w http.ResponseWriter, r *http.Request) (*types.ApplyRequest, error) {
	req := &types.ApplyRequest{}
	if isMultipart(r) {
		if err := s.parseMultipart(w, r); err != nil {
			return nil, err
		}
		req.JobID = r.FormValue("jobId")
		req.Name = r.FormValue("name")
		req.Email = r.FormValue("email")
		req.Message = r.FormValue("message")
		return req, nil
	}
	if err := decodeJSON(w, r, req); err != nil {
		return nil, err
	}
	return req, nil
}

// resumeForApplication picks the resume attached to an application: an uploaded file
// first, then the caller's latest stored resume. The stored upload, if any, is returned so a
// failed application can discard it.
func (s *Server) resumeForApplication(w http.ResponseWriter, r *http.Request, user *types.User) (string, *storage.File, error) {
	file, err := s.saveUpload(w, r, "resume", storage.KindResume)
	if err != nil {
		return "", nil, err
	}
	if file != nil {
		return file.Path, file, nil
	}

	latest, err := s.db.GetLatestResume(r.Context(), user.ID)
	if err != nil {
		return "", nil, err
	}
	if latest != nil {
		return latest.FilePath, nil, nil
	}
	if user.Profile != nil && user.Profile.JobSeeker != nil {
		return user.Profile.JobSeeker.ResumePath, nil, nil
	}
	return "", nil, nil
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	req, err := s.decodeApplyRequest(w, r)
	if err != nil {
		s.fail(w, r, err, "Error applying to job")
		return
	}
	if strings.TrimSpace(req.JobID) == "" {
		s.reject(w, http.StatusBadRequest, "Job ID is required")
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, validationError(err), "Error applying to job")
		return
	}

	jobID, err := uuid.Parse(strings.TrimSpace(req.JobID))
	if err != nil {
		s.fail(w, r, &ErrInvalidID{Kind: "job"}, "Error applying to job")
		return
	}
	job, err := s.db.GetJobPostingByID(r.Context(), jobID)
	if err != nil {
		s.fail(w, r, err, "Error applying to job")
		return
	}
	if job == nil {
		s.fail(w, r, &ErrJobNotFound{JobID: jobID}, "Error applying to job")
		return
	}

	applied, err := s.db.HasApplied(r.Context(), jobID, user.ID)
	if err != nil {
		s.fail(w, r, err, "Error applying to job")
		return
	}
	if applied {
		s.fail(w, r, &ErrAlreadyApplied{JobID: jobID}, "Error applying to job")
		return
	}

	resumePath, uploaded, err := s.resumeForApplication(w, r, user)
	if err != nil {
		s.fail(w, r, err, "Error applying to job")
		return
	}

	input := &db.ApplicationInput{
		JobID:      jobID,
		UserID:     user.ID,
		Name:       strings.TrimSpace(req.Name),
		Email:      normalizeEmail(req.Email),
		Message:    req.Message,
		ResumePath: resumePath,
	}
	if input.Name == "" {
		input.Name = user.Name
	}
	if input.Email == "" {
		input.Email = user.Email
	}

	application, err := s.db.CreateApplication(r.Context(), input)
	if err != nil {
		s.discardUpload(r.Context(), uploaded)
		// A concurrent request for the same job won the insert.
		if errors.Is(err, db.ErrUniqueViolation) {
			err = &ErrAlreadyApplied{JobID: jobID}
		}
		s.fail(w, r, err, "Error applying to job")
		return
	}

	s.logger.Info("application submitted",
		zap.String("job_id", jobID.String()),
		zap.String("user_id", user.ID.String()),
	)
	_ = s.events.Publish(r.Context(), events.ApplicationSubmitted, applicationSubmittedEvent{
		ApplicationID: application.ID.String(),
		JobID:         jobID.String(),
		UserID:        user.ID.String(),
		HasResume:     resumePath != "",
	})

	s.ok(w, http.StatusOK, map[string]any{"message": "Application submitted!", "application": application})
}

func (s *Server) handleMyApplications(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	applications, err := s.db.ListApplicationsByUser(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err, "Error fetching applications")
		return
	}
	s.ok(w, http.StatusOK, map[string]any{"applications": nonNil(applications)})
}

func (s *Server) handleCheckApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	jobID, err := uuid.Parse(r.PathValue("jobId"))
	if err != nil {
		s.fail(w, r, &ErrInvalidID{Kind: "job"}, "Error checking application status")
		return
	}
	applied, err := s.db.HasApplied(r.Context(), jobID, user.ID)
	if err != nil {
		s.fail(w, r, err, "Error checking application status")
		return
	}
	s.ok(w, http.StatusOK, map[string]any{"hasApplied": applied})
}
