//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/google/uuid"
)

// Defaults applied to new postings when the poster leaves a field out.
const (
	DefaultCountry         = "India"
	DefaultCity            = "Bangalore"
	DefaultJobType         = "Full Time"
	DefaultExperienceLevel = "Freshers"
	DefaultCategory        = "Development"
)

// Application statuses.
const (
	StatusPending   = "pending"
	StatusReviewed  = "reviewed"
	StatusInterview = "interview"
	StatusRejected  = "rejected"
	StatusOffer     = "offer"

	DefaultStage = "Resume Screening"
)

// Location is where a job is based.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// Salary is a posting's advertised range. Values are free-form strings.
type Salary struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// CreateJobRequest is the body of a job posting.
type CreateJobRequest struct {
	Title           string    `json:"title" validate:"max=200"`
	Company         string    `json:"company" validate:"max=200"`
	Description     string    `json:"description"`
	Requirements    string    `json:"requirements"`
	CompanyWebsite  string    `json:"companyWebsite" validate:"omitempty,url"`
	Location        *Location `json:"location"`
	Salary          *Salary   `json:"salary"`
	Type            []string  `json:"type"`
	ExperienceLevel []string  `json:"experienceLevel"`
	Category        []string  `json:"category"`
}

// ApplyDefaults fills missing fields with the posting defaults.
func (r *CreateJobRequest) ApplyDefaults() {
	if r.Location == nil {
		r.Location = &Location{}
	}
	if strings.TrimSpace(r.Location.Country) == "" {
		r.Location.Country = DefaultCountry
	}
	if strings.TrimSpace(r.Location.City) == "" {
		r.Location.City = DefaultCity
	}
	if r.Salary == nil {
		r.Salary = &Salary{}
	}
	if len(r.Type) == 0 {
		r.Type = []string{DefaultJobType}
	}
	if len(r.ExperienceLevel) == 0 {
		r.ExperienceLevel = []string{DefaultExperienceLevel}
	}
	if len(r.Category) == 0 {
		r.Category = []string{DefaultCategory}
	}
}

// Validate validates the CreateJobRequest.
func (r *CreateJobRequest) Validate() error {
	return validate.Struct(r)
}

// ApplyRequest is the body of a job application.
type ApplyRequest struct {
	JobID   string `json:"jobId"`
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Message string `json:"message"`
}

// Validate validates the ApplyRequest.
func (r *ApplyRequest) Validate() error {
	return validate.Struct(r)
}

// ApplicationSummary is the job seeker's view of one application.
type ApplicationSummary struct {
	ID          uuid.UUID `json:"id"`
	Company     string    `json:"company"`
	JobTitle    string    `json:"jobTitle"`
	Type        []string  `json:"type"`
	Stage       string    `json:"stage"`
	AppliedDate string    `json:"appliedDate"`
	Interview   *string   `json:"interview"`
}

// StageLabel maps an application status to the label shown to candidates.
func StageLabel(status string) string {
	switch status {
	case StatusReviewed:
		return "Under Review"
	case StatusInterview:
		return "Interview"
	case StatusRejected:
		return "Rejected"
	default:
		return "Applied"
	}
}
