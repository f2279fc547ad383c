//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the per-account profile document. It is stored as a single JSONB value.
type Profile struct {
	FirstName      string       `json:"firstName,omitempty"`
	LastName       string       `json:"lastName,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	DateOfBirth    *time.Time   `json:"dateOfBirth,omitempty"`
	Gender         string       `json:"gender,omitempty"`
	ProfilePicture string       `json:"profilePicture,omitempty"`
	Address        *Address     `json:"address,omitempty"`
	SocialLinks    *SocialLinks `json:"socialLinks,omitempty"`

	JobSeeker *JobSeekerProfile `json:"jobSeekerProfile,omitempty"`
	Recruiter *RecruiterProfile `json:"recruiterProfile,omitempty"`
}

// Address is a postal address.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// SocialLinks holds public profile URLs.
type SocialLinks struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
}

// JobSeekerProfile holds candidate-specific data.
type JobSeekerProfile struct {
	Skills             []string        `json:"skills"`
	Experience         []Experience    `json:"experience"`
	Education          []Education     `json:"education"`
	Certifications     []Certification `json:"certifications"`
	Projects           []Project       `json:"projects"`
	ResumePath         string          `json:"resumePath,omitempty"`
	ParsedResume       *ParsedResume   `json:"parsedResume,omitempty"`
	PreferredJobTypes  []string        `json:"preferredJobTypes"`
	PreferredLocations []string        `json:"preferredLocations"`
	ExpectedSalary     *ExpectedSalary `json:"expectedSalary,omitempty"`
	Availability       string          `json:"availability,omitempty"`
	WorkAuthorization  string          `json:"workAuthorization,omitempty"`
	Bio                string          `json:"bio,omitempty"`
}

// ParsedResume is what resume parsing derives from an uploaded file.
type ParsedResume struct {
	Skills    []string  `json:"skills"`
	Summary   string    `json:"summary,omitempty"`
	WordCount int       `json:"wordCount"`
	FileName  string    `json:"fileName,omitempty"`
	ParsedAt  time.Time `json:"parsedAt"`
}

// Experience is one employment history entry.
type Experience struct {
	ID          uuid.UUID  `json:"_id"`
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
}

// Education is one education entry.
type Education struct {
	ID           uuid.UUID  `json:"_id"`
	Institution  string     `json:"institution"`
	Degree       string     `json:"degree,omitempty"`
	FieldOfStudy string     `json:"fieldOfStudy,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	GPA          string     `json:"gpa,omitempty"`
	Description  string     `json:"description,omitempty"`
}

// Certification is a professional certification.
type Certification struct {
	Name         string     `json:"name"`
	Issuer       string     `json:"issuer,omitempty"`
	IssueDate    *time.Time `json:"issueDate,omitempty"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`
	CredentialID string     `json:"credentialId,omitempty"`
	URL          string     `json:"url,omitempty"`
}

// Project is a portfolio project.
type Project struct {
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Technologies []string   `json:"technologies,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	URL          string     `json:"url,omitempty"`
	GitHubURL    string     `json:"githubUrl,omitempty"`
}

// ExpectedSalary is a candidate's salary expectation.
type ExpectedSalary struct {
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

// RecruiterProfile holds recruiter and employer data.
type RecruiterProfile struct {
	CompanyName        string   `json:"companyName"`
	CompanyWebsite     string   `json:"companyWebsite"`
	CompanyLogo        string   `json:"companyLogo,omitempty"`
	CompanySize        string   `json:"companySize"`
	Industry           string   `json:"industry"`
	CompanyDescription string   `json:"companyDescription"`
	Position           string   `json:"position"`
	Department         string   `json:"department"`
	YearsOfExperience  int      `json:"yearsOfExperience"`
	Specializations    []string `json:"specializations"`
	CompanyAddress     *Address `json:"companyAddress,omitempty"`
	CompanyFoundedYear *int     `json:"companyFoundedYear"`
	CompanyType        string   `json:"companyType"`
	Bio                string   `json:"bio"`
}

// EnsureJobSeeker returns the job-seeker sub-document, creating it with empty lists when
// absent.
func (p *Profile) EnsureJobSeeker() *JobSeekerProfile {
	if p.JobSeeker == nil {
		p.JobSeeker = &JobSeekerProfile{
			Skills:             []string{},
			Experience:         []Experience{},
			Education:          []Education{},
			Certifications:     []Certification{},
			Projects:           []Project{},
			PreferredJobTypes:  []string{},
			PreferredLocations: []string{},
		}
	}
	return p.JobSeeker
}

// EnsureRecruiter returns the recruiter sub-document, creating it when absent.
func (p *Profile) EnsureRecruiter() *RecruiterProfile {
	if p.Recruiter == nil {
		p.Recruiter = &RecruiterProfile{Specializations: []string{}}
	}
	return p.Recruiter
}

// UpdateBasicProfileRequest replaces the common profile fields.
type UpdateBasicProfileRequest struct {
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	Phone       string       `json:"phone"`
	DateOfBirth *time.Time   `json:"dateOfBirth"`
	Gender      string       `json:"gender" validate:"omitempty,max=32"`
	Address     *Address     `json:"address"`
	SocialLinks *SocialLinks `json:"socialLinks"`
}

// UpdateJobSeekerRequest replaces the job-seeker sub-document. Resume data is kept.
type UpdateJobSeekerRequest struct {
	Skills             []string        `json:"skills"`
	Experience         []Experience    `json:"experience"`
	Education          []Education     `json:"education"`
	Certifications     []Certification `json:"certifications"`
	Projects           []Project       `json:"projects"`
	PreferredJobTypes  []string        `json:"preferredJobTypes"`
	PreferredLocations []string        `json:"preferredLocations"`
	ExpectedSalary     *ExpectedSalary `json:"expectedSalary"`
	Availability       string          `json:"availability"`
	WorkAuthorization  string          `json:"workAuthorization"`
	Bio                string          `json:"bio"`
}

// UpdateUserRequest is the general self-service update. Identity and credential fields are
// not part of it.
type UpdateUserRequest struct {
	Name    *string  `json:"name"`
	Profile *Profile `json:"profile"`
}

// ExperienceInput is the body of experience create and update calls.
type ExperienceInput struct {
	Company     string     `json:"company" validate:"required"`
	Position    string     `json:"position" validate:"required"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Current     bool       `json:"current"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
}

// EducationInput is the body of the education create call.
type EducationInput struct {
	Institution  string     `json:"institution" validate:"required"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldOfStudy"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	GPA          string     `json:"gpa"`
	Description  string     `json:"description"`
}

// DashboardStats summarizes a job seeker's applications.
type DashboardStats struct {
	TotalApplications  int `json:"totalApplications"`
	UpcomingInterviews int `json:"upcomingInterviews"`
	Shortlisted        int `json:"shortlisted"`
	JobOffersReceived  int `json:"jobOffersReceived"`
	ApplicationReview  int `json:"applicationReview"`
}

// Validate validates the UpdateBasicProfileRequest.
func (r *UpdateBasicProfileRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the ExperienceInput.
func (r *ExperienceInput) Validate() error {
	return validate.Struct(r)
}

// Validate validates the EducationInput.
func (r *EducationInput) Validate() error {
	return validate.Struct(r)
}
