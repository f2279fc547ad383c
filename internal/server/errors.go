// Package server provides the TalentTrek HTTP REST API.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/talenttrek/internal/storage"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return "Email already exists"
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "Invalid credentials"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return "User not found"
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "Current password is incorrect"
}

// ErrJobNotFound indicates a job posting was not found
type ErrJobNotFound struct {
	JobID uuid.UUID
}

func (e *ErrJobNotFound) Error() string {
	return "Job not found"
}

// ErrAlreadyApplied indicates the user already applied to the posting
type ErrAlreadyApplied struct {
	JobID uuid.UUID
}

func (e *ErrAlreadyApplied) Error() string {
	return "Already applied to this job."
}

// ErrEntryNotFound indicates a profile sub-entry (experience, education) was not found
type ErrEntryNotFound struct {
	Kind string
	ID   string
}

func (e *ErrEntryNotFound) Error() string {
	return fmt.Sprintf("%s not found", e.Kind)
}

// ErrInvalidID indicates a path or body identifier is not a valid UUID
type ErrInvalidID struct {
	Kind string
}

func (e *ErrInvalidID) Error() string {
	return fmt.Sprintf("Invalid %s ID format", e.Kind)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrForbidden indicates the caller may not perform the operation
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists   *ErrEmailAlreadyExists
		invalidCreds  *ErrInvalidCredentials
		mismatch      *ErrPasswordMismatch
		userNotFound  *ErrUserNotFound
		jobNotFound   *ErrJobNotFound
		entryNotFound *ErrEntryNotFound
		applied       *ErrAlreadyApplied
		invalidID     *ErrInvalidID
		validation    *ErrValidation
		forbidden     *ErrForbidden
		unsupported   *storage.UnsupportedFileError
		tooLarge      *storage.FileTooLargeError
	)

	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &emailExists), errors.As(err, &invalidCreds), errors.As(err, &mismatch),
		errors.As(err, &applied), errors.As(err, &invalidID), errors.As(err, &validation),
		errors.As(err, &unsupported), errors.As(err, &tooLarge):
		return http.StatusBadRequest
	case errors.As(err, &userNotFound), errors.As(err, &jobNotFound), errors.As(err, &entryNotFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage returns the message shown for err. Only 4xx errors expose their text.
func clientMessage(err error) (string, bool) {
	var tooLarge *storage.FileTooLargeError
	if errors.As(err, &tooLarge) {
		return fmt.Sprintf("File too large. Maximum size is %dMB.", tooLarge.Limit>>20), true
	}
	var unsupported *storage.UnsupportedFileError
	if errors.As(err, &unsupported) {
		return "File upload error: " + unsupported.Error(), true
	}
	if HTTPStatus(err) < http.StatusInternalServerError {
		return err.Error(), true
	}
	return "", false
}
