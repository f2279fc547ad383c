package recommend

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/talenttrek/internal/db"
	"github.com/jonathan/talenttrek/internal/skills"
)

// NoProfileDataMessage is returned to callers with no skills to match on.
const NoProfileDataMessage = "No resume or skills added yet"

// Defaults for Options.
const (
	DefaultThreshold         = 0.1
	DefaultLimit             = 10
	DefaultParallelThreshold = 500
)

// Options tunes ranking.
type Options struct {
	// Threshold is the exclusive lower bound a score must exceed to be kept.
	Threshold float64
	// Limit caps the number of matches returned. Zero or less returns every match.
	Limit int
	// ParallelThreshold is the posting count above which scoring fans out to workers.
	// Zero or less disables parallel scoring.
	ParallelThreshold int
	// Workers bounds the number of scoring goroutines. Defaults to GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the standard ranking options.
func DefaultOptions() Options {
	return Options{
		Threshold:         DefaultThreshold,
		Limit:             DefaultLimit,
		ParallelThreshold: DefaultParallelThreshold,
	}
}

// Match is a posting annotated with its score.
type Match struct {
	db.JobPosting
	MatchScore      float64 `json:"matchScore"`
	MatchPercentage int     `json:"matchPercentage"`
}

// Result is the outcome of one recommendation request.
type Result struct {
	Skills  []string
	Source  Source
	Matches []Match
	// NoProfileData is set when the candidate has neither explicit nor resume skills.
	NoProfileData bool
}

// CandidateLoader loads the skill lists of a user.
type CandidateLoader interface {
	LoadCandidate(ctx context.Context, userID uuid.UUID) (Candidate, error)
}

// PostingLoader loads every job posting.
type PostingLoader interface {
	ListJobPostings(ctx context.Context) ([]db.JobPosting, error)
}

// Service runs the recommendation flow.
type Service struct {
	candidates CandidateLoader
	postings   PostingLoader
	opts       Options
	logger     *zap.Logger
}

// NewService creates a Service. opts is used as given; start from DefaultOptions to change
// individual fields.
func NewService(candidates CandidateLoader, postings PostingLoader, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{candidates: candidates, postings: postings, opts: opts, logger: logger}
}

// Recommend returns the best-matching postings for a user. Postings are not loaded when the
// user has no skills. A failure of either load fails the whole call.
func (s *Service) Recommend(ctx context.Context, userID uuid.UUID) (*Result, error) {
	candidate, err := s.candidates.LoadCandidate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}

	resolution := Resolve(candidate)
	if resolution.Empty() {
		s.logger.Debug("no skills to match on", zap.String("user_id", userID.String()))
		return &Result{
			Skills:        []string{},
			Source:        SourceNone,
			Matches:       []Match{},
			NoProfileData: true,
		}, nil
	}

	postings, err := s.postings.ListJobPostings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load job postings: %w", err)
	}

	matches, err := Rank(ctx, resolution.Skills, postings, s.opts)
	if err != nil {
		return nil, err
	}

	s.logger.Info("recommendations computed",
		zap.String("user_id", userID.String()),
		zap.String("skill_source", string(resolution.Source)),
		zap.Int("skills", resolution.Skills.Len()),
		zap.Int("postings", len(postings)),
		zap.Int("matches", len(matches)),
	)

	return &Result{
		Skills:  resolution.Skills.Strings(),
		Source:  resolution.Source,
		Matches: matches,
	}, nil
}

// Rank scores postings against the candidate skills, keeps those above the threshold, and
// returns at most opts.Limit of them, best first. Equal scores keep posting order.
func Rank(ctx context.Context, candidate skills.Set, postings []db.JobPosting, opts Options) ([]Match, error) {
	scores, err := scoreAll(ctx, candidate, postings, opts)
	if err != nil {
		return nil, err
	}

	matches := []Match{}
	for i, score := range scores {
		if score <= opts.Threshold {
			continue
		}
		matches = append(matches, Match{
			JobPosting:      postings[i],
			MatchScore:      score,
			MatchPercentage: Percentage(score),
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].MatchScore > matches[b].MatchScore
	})

	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches, nil
}

// Percentage converts a score to a whole percentage, rounding half away from zero.
func Percentage(score float64) int {
	return int(math.Round(score * 100))
}

// scoreAll returns one score per posting, index-aligned with postings.
func scoreAll(ctx context.Context, candidate skills.Set, postings []db.JobPosting, opts Options) ([]float64, error) {
	scores := make([]float64, len(postings))
	if opts.ParallelThreshold <= 0 || len(postings) <= opts.ParallelThreshold {
		for i := range postings {
			scores[i] = skills.Score(candidate, postings[i].Skills)
		}
		return scores, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (len(postings) + workers - 1) / workers

	g, gCtx := errgroup.WithContext(ctx)
	for start := 0; start < len(postings); start += chunk {
		end := min(start+chunk, len(postings))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gCtx.Err(); err != nil {
					return err
				}
				// Each worker owns a disjoint index range.
				scores[i] = skills.Score(candidate, postings[i].Skills)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring interrupted: %w", err)
	}
	return scores, nil
}
