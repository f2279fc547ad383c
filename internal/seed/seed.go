// Package seed loads sample job postings from a JSON payload into the store.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/talenttrek/internal/db"
	"github.com/jonathan/talenttrek/internal/schemas"
	"github.com/jonathan/talenttrek/internal/skills"
	"github.com/jonathan/talenttrek/internal/types"
)

// DefaultPoster is recorded as postedBy for seeded postings that name no poster.
const DefaultPoster = "seed@talenttrek.local"

// Store is the persistence the seeder needs.
type Store interface {
	InsertJobPostings(ctx context.Context, inputs []db.JobPostingInput) ([]db.JobPosting, error)
	ReplaceJobPostings(ctx context.Context, inputs []db.JobPostingInput) (int64, []db.JobPosting, error)
}

// Posting is one entry of a seed payload.
type Posting struct {
	types.CreateJobRequest
	Logo     string     `json:"logo"`
	PostedBy string     `json:"postedBy"`
	PostedAt *time.Time `json:"postedAt"`
}

// Result reports what a seed run changed.
type Result struct {
	Deleted  int64           `json:"deletedCount"`
	Inserted []db.JobPosting `json:"-"`
}

// Parse validates data against the postings schema and converts it to store inputs.
// Skills are extracted from requirements and description, as on posting creation.
// Blank data parses to no postings.
func Parse(data []byte, extractor *skills.Extractor) ([]db.JobPostingInput, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []db.JobPostingInput{}, nil
	}
	if err := schemas.Validate(schemas.JobPostings, data); err != nil {
		return nil, err
	}

	var postings []Posting
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, fmt.Errorf("failed to decode seed postings: %w", err)
	}

	inputs := make([]db.JobPostingInput, 0, len(postings))
	for i := range postings {
		inputs = append(inputs, postings[i].toInput(extractor))
	}
	return inputs, nil
}

func (p *Posting) toInput(extractor *skills.Extractor) db.JobPostingInput {
	p.ApplyDefaults()

	input := db.JobPostingInput{
		Title:           p.Title,
		Company:         p.Company,
		Logo:            p.Logo,
		CompanyWebsite:  p.CompanyWebsite,
		Description:     p.Description,
		Requirements:    p.Requirements,
		Location:        *p.Location,
		Salary:          *p.Salary,
		Type:            p.Type,
		ExperienceLevel: p.ExperienceLevel,
		Category:        p.Category,
		Skills:          extractor.ExtractFields(p.Requirements, p.Description).Strings(),
		PostedBy:        p.PostedBy,
		PostedAt:        p.PostedAt,
	}
	if input.PostedBy == "" {
		input.PostedBy = DefaultPoster
	}
	return input
}

// Seeder writes parsed postings, optionally replacing what is stored.
type Seeder struct {
	store  Store
	logger *zap.Logger
}

// New creates a Seeder.
func New(store Store, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{store: store, logger: logger}
}

// Run inserts inputs. With clear set, every existing posting (and, by cascade, every
// application) is replaced by inputs in a single store call, so a failed run changes nothing.
func (s *Seeder) Run(ctx context.Context, inputs []db.JobPostingInput, clear bool) (*Result, error) {
	res := &Result{Inserted: []db.JobPosting{}}

	switch {
	case clear:
		deleted, inserted, err := s.store.ReplaceJobPostings(ctx, inputs)
		if err != nil {
			return nil, err
		}
		res.Deleted = deleted
		res.Inserted = inserted
	case len(inputs) > 0:
		inserted, err := s.store.InsertJobPostings(ctx, inputs)
		if err != nil {
			return nil, err
		}
		res.Inserted = inserted
	}

	s.logger.Info("seeded job postings",
		zap.Int64("deleted", res.Deleted),
		zap.Int("inserted", len(res.Inserted)),
	)
	return res, nil
}
