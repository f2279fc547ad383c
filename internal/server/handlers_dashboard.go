package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/talenttrek/internal/types"
)

// appliedDateLayout formats application dates for candidates, e.g. "Mar 4, 2024".
const appliedDateLayout = "Jan 2, 2006"

// dashboardStats counts the caller's applications by status concurrently.
func (s *Server) dashboardStats(ctx context.Context, userID uuid.UUID) (*types.DashboardStats, error) {
	var total, interview, pending, offer, rejected int

	g, ctx := errgroup.WithContext(ctx)
	count := func(status string, dst *int) {
		g.Go(func() error {
			n, err := s.db.CountApplications(ctx, userID, status)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count("", &total)
	count(types.StatusInterview, &interview)
	count(types.StatusPending, &pending)
	count(types.StatusOffer, &offer)
	count(types.StatusRejected, &rejected)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &types.DashboardStats{
		TotalApplications:  total,
		UpcomingInterviews: interview,
		Shortlisted:        pending,
		JobOffersReceived:  offer,
		ApplicationReview:  total - interview - rejected,
	}, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	account := *user
	account.Profile = nil
	data := map[string]any{
		"user":    &account,
		"profile": user.Profile,
	}

	if user.IsJobSeeker() {
		stats, err := s.dashboardStats(r.Context(), user.ID)
		if err != nil {
			s.fail(w, r, err, msgServerError)
			return
		}
		data["statistics"] = stats
	}

	s.ok(w, http.StatusOK, map[string]any{"data": data})
}

func (s *Server) handleUserApplications(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	applications, err := s.db.ListApplicationsByUser(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err, msgServerError)
		return
	}

	summaries := make([]types.ApplicationSummary, 0, len(applications))
	for _, app := range applications {
		summary := types.ApplicationSummary{
			ID:          app.ID,
			Company:     app.Job.Company,
			JobTitle:    app.Job.Title,
			Type:        app.Job.Type,
			Stage:       types.StageLabel(app.Status),
			AppliedDate: app.AppliedAt.Format(appliedDateLayout),
		}
		if summary.Company == "" {
			summary.Company = "Unknown Company"
		}
		if summary.JobTitle == "" {
			summary.JobTitle = "Unknown Position"
		}
		if len(summary.Type) == 0 {
			summary.Type = []string{types.DefaultJobType}
		}
		if app.Status == types.StatusInterview {
			scheduled := "Scheduled"
			summary.Interview = &scheduled
		}
		summaries = append(summaries, summary)
	}

	s.ok(w, http.StatusOK, map[string]any{"applications": summaries})
}

func (s *Server) handleUserJobs(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	jobs, err := s.db.ListJobPostingsByPoster(r.Context(), user.Email)
	if err != nil {
		s.fail(w, r, err, msgServerError)
		return
	}
	s.ok(w, http.StatusOK, map[string]any{"jobs": nonNil(jobs)})
}
