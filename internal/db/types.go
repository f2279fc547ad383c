package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/talenttrek/internal/types"
)

// UserRecord is a stored account, including credentials.
type UserRecord struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Profile      types.Profile
	IsActive     bool
	IsVerified   bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns the account view that is safe to send to clients.
func (u *UserRecord) Public() *types.User {
	profile := u.Profile
	return &types.User{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Profile:    &profile,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		LastLogin:  u.LastLoginAt,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserCreateInput holds the fields for a new account.
type UserCreateInput struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Profile      types.Profile
}

// JobPosting is a stored job posting.
type JobPosting struct {
	ID              uuid.UUID      `json:"_id"`
	Title           string         `json:"title"`
	Company         string         `json:"company"`
	Logo            string         `json:"logo"`
	CompanyWebsite  string         `json:"companyWebsite"`
	Description     string         `json:"description"`
	Requirements    string         `json:"requirements"`
	Location        types.Location `json:"location"`
	Salary          types.Salary   `json:"salary"`
	Type            StringArray    `json:"type"`
	ExperienceLevel StringArray    `json:"experienceLevel"`
	Category        StringArray    `json:"category"`
	Skills          StringArray    `json:"skills"`
	PostedBy        string         `json:"postedBy"`
	PostedAt        time.Time      `json:"postedAt"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// JobPostingInput holds the fields for a new posting. Skills are computed by the caller.
type JobPostingInput struct {
	Title           string         `json:"title"`
	Company         string         `json:"company"`
	Logo            string         `json:"logo"`
	CompanyWebsite  string         `json:"companyWebsite"`
	Description     string         `json:"description"`
	Requirements    string         `json:"requirements"`
	Location        types.Location `json:"location"`
	Salary          types.Salary   `json:"salary"`
	Type            []string       `json:"type"`
	ExperienceLevel []string       `json:"experienceLevel"`
	Category        []string       `json:"category"`
	Skills          []string       `json:"skills"`
	PostedBy        string         `json:"postedBy"`
	PostedAt        *time.Time     `json:"postedAt,omitempty"`
}

// Application is a stored job application.
type Application struct {
	ID            uuid.UUID  `json:"_id"`
	JobID         uuid.UUID  `json:"jobId"`
	UserID        uuid.UUID  `json:"userId"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Message       string     `json:"message"`
	ResumePath    string     `json:"resume"`
	Status        string     `json:"status"`
	Stage         string     `json:"stage"`
	InterviewDate *time.Time `json:"interviewDate,omitempty"`
	AppliedAt     time.Time  `json:"appliedAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ApplicationInput holds the fields for a new application.
type ApplicationInput struct {
	JobID      uuid.UUID
	UserID     uuid.UUID
	Name       string
	Email      string
	Message    string
	ResumePath string
}

// JobSummary is the slice of a posting shown next to an application.
type JobSummary struct {
	ID       uuid.UUID      `json:"_id"`
	Title    string         `json:"title"`
	Company  string         `json:"company"`
	Location types.Location `json:"location"`
	Type     StringArray    `json:"type"`
	Logo     string         `json:"logo"`
}

// ApplicantSummary is the slice of an account shown to a recruiter.
type ApplicantSummary struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ApplicationWithJob is an application joined with its posting.
type ApplicationWithJob struct {
	Application
	Job JobSummary `json:"job"`
}

// ApplicationWithApplicant is an application joined with the applying account.
type ApplicationWithApplicant struct {
	Application
	Applicant ApplicantSummary `json:"applicant"`
}

// Resume is a stored resume upload with its parse results.
type Resume struct {
	ID          uuid.UUID   `json:"_id"`
	UserID      uuid.UUID   `json:"userId"`
	FileName    string      `json:"fileName"`
	FilePath    string      `json:"filePath"`
	ContentType string      `json:"contentType"`
	SizeBytes   int64       `json:"sizeBytes"`
	Skills      StringArray `json:"skills"`
	Summary     string      `json:"summary"`
	WordCount   int         `json:"wordCount"`
	UploadedAt  time.Time   `json:"uploadedAt"`
}

// ResumeInput holds the fields for a new resume row.
type ResumeInput struct {
	UserID      uuid.UUID
	FileName    string
	FilePath    string
	ContentType string
	SizeBytes   int64
	Skills      []string
	Summary     string
	WordCount   int
}

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray. pgx hands JSONB to scanners
// as text, database/sql drivers as bytes.
func (a *StringArray) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = StringArray{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("StringArray: unsupported source type")
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*a = out
	return nil
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// MarshalJSON renders a nil array as [].
func (a StringArray) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// jsonArray marshals a string slice for a JSONB parameter, mapping nil to [].
func jsonArray(values []string) []byte {
	if values == nil {
		return []byte("[]")
	}
	b, _ := json.Marshal(values)
	return b
}
