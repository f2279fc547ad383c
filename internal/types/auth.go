// Package types provides request, response and document types shared by the HTTP layer
// and the store.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Account roles.
const (
	RoleJobSeeker = "jobseeker"
	RoleRecruiter = "recruiter"
	RoleEmployer  = "employer"
)

// SignupRequest represents the request to create a new account.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=jobseeker recruiter employer"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User is the public view of an account: it never carries the password hash.
type User struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Profile    *Profile   `json:"profile,omitempty"`
	IsActive   bool       `json:"isActive"`
	IsVerified bool       `json:"isVerified"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// IsJobSeeker reports whether the account looks for jobs.
func (u *User) IsJobSeeker() bool {
	return u.Role == RoleJobSeeker
}

// CanPostJobs reports whether the account may publish job postings.
func (u *User) CanPostJobs() bool {
	return u.Role == RoleRecruiter || u.Role == RoleEmployer
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

// UpdatePasswordRequest represents a password update request.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

var validate = validator.New()

// Validate validates the SignupRequest.
func (r *SignupRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the LoginRequest.
func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the UpdatePasswordRequest.
func (r *UpdatePasswordRequest) Validate() error {
	return validate.Struct(r)
}
