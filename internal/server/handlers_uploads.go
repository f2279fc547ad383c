package server

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/talenttrek/internal/db"
	"github.com/jonathan/talenttrek/internal/events"
	"github.com/jonathan/talenttrek/internal/server/middleware"
	"github.com/jonathan/talenttrek/internal/storage"
	"github.com/jonathan/talenttrek/internal/types"
)

const (
	defaultMaxUpload   = 5 << 20
	multipartMemory    = 8 << 20
	multipartOverheads = 1 << 20
)

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}

func (s *Server) maxUpload() int64 {
	if s.config.Uploads.MaxBytes > 0 {
		return s.config.Uploads.MaxBytes
	}
	return defaultMaxUpload
}

// parseMultipart parses a multipart body once, bounding its total size.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if r.MultipartForm != nil {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload()+multipartOverheads)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return &storage.FileTooLargeError{Limit: s.maxUpload()}
		}
		return &ErrValidation{Message: "Invalid form data"}
	}
	return nil
}

// formFile returns the named file part, or nil when the request carries none.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if !isMultipart(r) {
		return nil, nil, nil
	}
	if err := s.parseMultipart(w, r); err != nil {
		return nil, nil, err
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, &ErrValidation{Message: "Invalid form data"}
	}
	return file, header, nil
}

// saveUpload stores the named file part. It returns nil, nil when there is none.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request, field string, kind storage.Kind) (*storage.File, error) {
	file, header, err := s.formFile(w, r, field)
	if err != nil || file == nil {
		return nil, err
	}
	defer file.Close()

	stored, err := s.uploads.Save(r.Context(), kind, header.Filename, file)
	if err != nil {
		return nil, err
	}
	s.logger.Info("upload stored",
		zap.String("kind", string(kind)),
		zap.String("key", stored.Key),
		zap.Int64("size", stored.Size),
	)
	return stored, nil
}

// discardUpload removes a stored file whose owning write failed.
func (s *Server) discardUpload(ctx context.Context, file *storage.File) {
	if file == nil {
		return
	}
	if err := s.uploads.Delete(context.WithoutCancel(ctx), file.Key); err != nil {
		s.logger.Warn("failed to discard upload", zap.String("key", file.Key), zap.Error(err))
	}
}

// caller returns the authenticated account. It writes the failure itself.
func (s *Server) caller(w http.ResponseWriter, r *http.Request) (*types.User, bool) {
	user, err := middleware.GetUser(r)
	if err != nil {
		s.fail(w, r, err, msgServerError)
		return nil, false
	}
	return user, true
}

type resumeParsedEvent struct {
	UserID   string   `json:"userId"`
	ResumeID string   `json:"resumeId"`
	Skills   []string `json:"skills"`
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	file, err := s.saveUpload(w, r, "resume", storage.KindResume)
	if err != nil {
		s.fail(w, r, err, "Error uploading resume")
		return
	}
	if file == nil {
		s.reject(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	parsed, err := s.parser.Parse(file.Extension, file.Data)
	if err != nil {
		// The file is kept; it just contributes no skills.
		s.logger.Warn("resume text extraction failed",
			zap.String("user_id", user.ID.String()),
			zap.String("extension", file.Extension),
			zap.Error(err),
		)
		parsed = s.parser.ParseText("")
	}

	record, err := s.db.CreateResume(r.Context(), &db.ResumeInput{
		UserID:      user.ID,
		FileName:    file.OriginalName,
		FilePath:    file.Path,
		ContentType: file.ContentType,
		SizeBytes:   file.Size,
		Skills:      parsed.Skills,
		Summary:     parsed.Summary,
		WordCount:   parsed.WordCount,
	})
	if err != nil {
		s.discardUpload(r.Context(), file)
		s.fail(w, r, err, "Error uploading resume")
		return
	}

	parsedResume := &types.ParsedResume{
		Skills:    parsed.Skills,
		Summary:   parsed.Summary,
		WordCount: parsed.WordCount,
		FileName:  file.OriginalName,
		ParsedAt:  record.UploadedAt,
	}
	if _, err := s.userService.AttachResume(r.Context(), user.ID, file.Path, parsedResume); err != nil {
		s.fail(w, r, err, "Error uploading resume")
		return
	}

	_ = s.events.Publish(r.Context(), events.ResumeParsed, resumeParsedEvent{
		UserID:   user.ID.String(),
		ResumeID: record.ID.String(),
		Skills:   parsed.Skills,
	})

	s.ok(w, http.StatusOK, map[string]any{
		"message":    "Resume uploaded successfully",
		"resumePath": file.Path,
		"parsedData": parsedResume,
	})
}
