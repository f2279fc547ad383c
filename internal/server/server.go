package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/talenttrek/internal/cache"
	"github.com/jonathan/talenttrek/internal/config"
	"github.com/jonathan/talenttrek/internal/events"
	"github.com/jonathan/talenttrek/internal/logger"
	"github.com/jonathan/talenttrek/internal/recommend"
	"github.com/jonathan/talenttrek/internal/resume"
	"github.com/jonathan/talenttrek/internal/seed"
	"github.com/jonathan/talenttrek/internal/server/middleware"
	"github.com/jonathan/talenttrek/internal/server/ratelimit"
	"github.com/jonathan/talenttrek/internal/skills"
	"github.com/jonathan/talenttrek/internal/storage"
	"github.com/jonathan/talenttrek/internal/types"
)

// shutdownTimeout bounds the drain of in-flight requests.
const shutdownTimeout = 30 * time.Second

// availableEndpoints is listed in the body of unknown-route responses.
var availableEndpoints = []string{
	"GET /api/health",
	"POST /api/login",
	"POST /api/signup",
	"GET /api/jobs",
	"POST /api/jobs",
}

// PostingsCache serves the all-postings list and drops it when postings change.
type PostingsCache interface {
	recommend.PostingLoader
	Invalidate(ctx context.Context)
}

// Deps holds what the server is built from. Store, Uploads and Config are required.
type Deps struct {
	Config  *config.Config
	Store   Store
	Uploads storage.Store
	// Postings defaults to an uncached view of Store.
	Postings PostingsCache
	// Events defaults to a publisher that drops everything.
	Events    events.Publisher
	Extractor *skills.Extractor
	Logger    *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	responder

	httpServer  *http.Server
	handler     http.Handler
	config      *config.Config
	db          Store
	uploads     storage.Store
	postings    PostingsCache
	events      events.Publisher
	extractor   *skills.Extractor
	parser      *resume.Parser
	seeder      *seed.Seeder
	recommender *recommend.Service
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	now         func() time.Time
}

// New creates a new server instance
func New(deps Deps) (*Server, error) {
	if deps.Config == nil || deps.Store == nil || deps.Uploads == nil {
		return nil, errors.New("server: config, store and uploads are required")
	}
	log := logger.OrNop(deps.Logger)
	cfg := deps.Config

	s := &Server{
		responder: responder{
			logger:       log,
			exposeErrors: !cfg.Server.IsProduction(),
		},
		config:    cfg,
		db:        deps.Store,
		uploads:   deps.Uploads,
		postings:  deps.Postings,
		events:    deps.Events,
		extractor: deps.Extractor,
		now:       time.Now,
	}
	if s.postings == nil {
		s.postings = cache.NewPostings(deps.Store, nil, 0, log)
	}
	if s.events == nil {
		s.events = events.NopPublisher{}
	}
	s.events = events.NewLogged(s.events, log)
	if s.extractor == nil {
		s.extractor = skills.NewExtractor(skills.DefaultVocabulary())
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.FromConfig(cfg.RateLimit))
	s.jwtService = NewJWTService(cfg.JWT)
	s.userService = NewUserService(deps.Store, cfg.Password, log)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService, s.responder)
	s.parser = resume.NewParser(s.extractor)
	s.seeder = seed.New(deps.Store, log)

	opts := recommend.DefaultOptions()
	if cfg.Recommend.ParallelThreshold > 0 {
		opts.ParallelThreshold = cfg.Recommend.ParallelThreshold
	}
	opts.Workers = cfg.Recommend.Workers
	s.recommender = recommend.NewService(s.userService, s.postings, opts, log)

	s.handler = s.withLogging(s.withCORS(s.withRateLimit(s.routes())))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator(), s.userService)
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }
	seekers := func(h http.HandlerFunc) http.Handler {
		return auth(middleware.RequireRole("Access denied. Job seekers only.", types.RoleJobSeeker)(h))
	}
	recruiters := func(h http.HandlerFunc) http.Handler {
		return auth(middleware.RequireRole("Access denied. Recruiters only.", types.RoleRecruiter, types.RoleEmployer)(h))
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Accounts
	mux.HandleFunc("POST /api/signup", s.authHandler.Signup)
	mux.HandleFunc("POST /api/login", s.authHandler.Login)
	mux.Handle("GET /api/protected", protect(s.authHandler.Protected))
	mux.Handle("PUT /api/user/password", protect(s.authHandler.UpdatePassword))
	mux.Handle("DELETE /api/user", protect(s.authHandler.DeleteAccount))

	// Profiles
	mux.Handle("GET /api/profile", protect(s.handleGetProfile))
	mux.Handle("PUT /api/profile/basic", protect(s.handleUpdateBasicProfile))
	mux.Handle("PUT /api/profile/jobseeker", protect(s.handleUpdateJobSeekerProfile))
	mux.Handle("PUT /api/profile/recruiter", protect(s.handleUpdateRecruiterProfile))
	mux.Handle("POST /api/profile/experience", protect(s.handleAddExperience))
	mux.Handle("PUT /api/profile/experience/{experienceId}", protect(s.handleUpdateExperience))
	mux.Handle("DELETE /api/profile/experience/{experienceId}", protect(s.handleDeleteExperience))
	mux.Handle("POST /api/profile/education", protect(s.handleAddEducation))
	mux.Handle("POST /api/profile/picture", protect(s.handleUploadProfilePicture))
	mux.Handle("POST /api/profile/company-logo", protect(s.handleUploadCompanyLogo))

	mux.Handle("GET /api/user/profile", protect(s.handleGetProfile))
	mux.Handle("PUT /api/user/profile", protect(s.handleUpdateUser))
	mux.Handle("GET /api/user/dashboard", protect(s.handleDashboard))
	mux.Handle("GET /api/user/applications", seekers(s.handleUserApplications))
	mux.Handle("GET /api/user/jobs", recruiters(s.handleUserJobs))

	// Job postings
	mux.Handle("POST /api/jobs", protect(s.handleCreateJob))
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.Handle("GET /api/jobs/my/jobs", protect(s.handleMyJobs))
	mux.Handle("GET /api/jobs/{id}/applications", protect(s.handleJobApplications))
	mux.Handle("POST /api/jobs/upload-logo", protect(s.handleUploadJobLogo))
	mux.HandleFunc("DELETE /api/jobs/clear", s.handleClearJobs)
	mux.HandleFunc("POST /api/jobs/seed", s.handleSeedJobs)

	// Resumes, applications and recommendations
	mux.Handle("POST /api/upload/resume", protect(s.handleUploadResume))
	mux.Handle("POST /api/apply", protect(s.handleApply))
	mux.Handle("GET /api/apply/my-applications", protect(s.handleMyApplications))
	mux.Handle("GET /api/apply/check/{jobId}", protect(s.handleCheckApplication))
	mux.Handle("GET /api/job-recommendations", protect(s.handleRecommendations))

	if local, ok := s.uploads.(*storage.LocalStore); ok {
		prefix := strings.TrimSuffix(local.PublicPrefix(), "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(local.Dir()))))
	}

	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

// Handler returns the full middleware chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			zap.String("addr", s.httpServer.Addr),
			zap.String("environment", s.config.Server.Environment),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()

	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS answers preflight requests and allows the configured origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	origins := s.config.Server.CORSOrigins
	anyOrigin := slices.Contains(origins, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (anyOrigin || slices.Contains(origins, origin)) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// withLogging logs one line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.ok(w, http.StatusOK, map[string]any{
		"message":     "TalentTrek API is running",
		"timestamp":   s.now().UTC().Format(time.RFC3339),
		"environment": s.config.Server.Environment,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.write(w, http.StatusNotFound, map[string]any{
		"success":            false,
		"message":            fmt.Sprintf("Route %s not found", r.URL.RequestURI()),
		"availableEndpoints": availableEndpoints,
	})
}

// clientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	retryAfter := int(info.RetryAfter.Round(time.Second).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	s.logger.Warn("rate limit exceeded",
		zap.String("client", clientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
	)

	s.write(w, http.StatusTooManyRequests, map[string]any{
		"success":     false,
		"message":     "Too many requests. Please try again later.",
		"limit":       info.Limit,
		"retry_after": retryAfter,
		"reset_at":    info.ResetTime.Format(time.RFC3339),
	})
}
