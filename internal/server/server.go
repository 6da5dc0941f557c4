// Package server provides the HTTP REST API for running assessment sessions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jonathan/screeniq/internal/events"
	"github.com/jonathan/screeniq/internal/flow"
	"github.com/jonathan/screeniq/internal/server/middleware"
	"github.com/jonathan/screeniq/internal/server/ratelimit"
	"github.com/jonathan/screeniq/internal/store"
	"github.com/jonathan/screeniq/internal/types"
)

// DefaultSessionTTL is how long a finished session stays readable before it is swept.
const DefaultSessionTTL = 30 * time.Minute

// Assessor is the AI backend the API needs: everything a session generates plus the
// recruiter-side helpers.
type Assessor interface {
	flow.Generator
	OptimizeJobDescription(ctx context.Context, job *types.Job) (string, error)
	GenerateInterviewScript(ctx context.Context, job *types.Job, feedback string, skills []string) (string, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       *store.Store
	assessor    Assessor
	resume      flow.ResumeSource
	publisher   events.Publisher
	publish     func(context.Context, events.Update)
	clock       clockwork.Clock
	rateLimiter *ratelimit.Limiter
	sessions    *registry
	opts        flow.Options
	stopSweep   chan struct{}
}

// Config holds server configuration
type Config struct {
	Port     int
	Store    *store.Store
	Assessor Assessor
	// Optional.
	Resume    flow.ResumeSource
	Publisher events.Publisher
	Clock     clockwork.Clock
	// RateLimit overrides the environment-derived limiter settings.
	RateLimit *ratelimit.Config

	SessionLength   int
	Duration        time.Duration
	EvaluateTimeout time.Duration
	SessionTTL      time.Duration
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server: store is required")
	}
	if cfg.Assessor == nil {
		return nil, fmt.Errorf("server: assessor is required")
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.NopPublisher{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	s := &Server{
		store:     cfg.Store,
		assessor:  cfg.Assessor,
		resume:    cfg.Resume,
		publisher: cfg.Publisher,
		publish:   events.Logged(cfg.Publisher),
		clock:     cfg.Clock,
		sessions:  newRegistry(cfg.Clock, cfg.SessionTTL),
		opts: flow.Options{
			SessionLength:   cfg.SessionLength,
			Duration:        cfg.Duration,
			EvaluateTimeout: cfg.EvaluateTimeout,
		},
		stopSweep: make(chan struct{}),
	}

	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiterWithClock(rlConfig, cfg.Clock)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Jobs
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("GET /jobs/{id}/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /jobs/{id}/report.xlsx", s.handleReport)
	mux.HandleFunc("POST /jobs/{id}/sessions", s.handleStartSession)

	// Sessions
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /sessions/{id}/events", s.handleSessionEvents)
	mux.HandleFunc("POST /sessions/{id}/system-check", s.handleSystemCheck)
	mux.HandleFunc("POST /sessions/{id}/camera", s.handleCamera)
	mux.HandleFunc("POST /sessions/{id}/begin", s.handleBegin)
	mux.HandleFunc("POST /sessions/{id}/answers", s.handleAnswer)
	mux.HandleFunc("POST /sessions/{id}/next", s.handleNext)
	mux.HandleFunc("POST /sessions/{id}/submit", s.handleSubmit)
	mux.HandleFunc("POST /sessions/{id}/visibility", s.handleVisibility)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleCloseSession)

	// Candidates
	mux.HandleFunc("GET /candidates", s.handleListCandidates)
	mux.HandleFunc("GET /candidates/{id}", s.handleGetCandidate)
	mux.HandleFunc("PUT /candidates/{id}/applications/{job_id}/status", s.handleUpdateStatus)
	mux.HandleFunc("POST /candidates/{id}/applications/{job_id}/interview-script", s.handleInterviewScript)

	s.handler = middleware.RequestID(s.withRateLimit(s.withLogging(s.withCORS(mux))))

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.handler,
		ReadTimeout: 30 * time.Second,
		// No write timeout: SSE streams stay open for the whole session.
		IdleTimeout: 60 * time.Second,
	}

	go s.sweepLoop(cfg.SessionTTL)
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("[server] shutting down...")

	// Streams would hold Shutdown open until the deadline.
	s.sessions.closeAll()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	log.Println("[server] stopped")
	return nil
}

// Close releases every session, the rate limiter and the event publisher.
// It is safe to call more than once.
func (s *Server) Close() {
	select {
	case <-s.stopSweep:
		return
	default:
		close(s.stopSweep)
	}
	s.sessions.closeAll()
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if err := s.publisher.Close(); err != nil {
		log.Printf("[server] closing event publisher: %v", err)
	}
}

func (s *Server) sweepLoop(ttl time.Duration) {
	interval := ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.Chan():
			if n := s.sessions.sweep(); n > 0 {
				log.Printf("[server] swept %d finished sessions", n)
			}
		case <-s.stopSweep:
			return
		}
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		id := middleware.GetRequestID(r.Context())
		log.Printf("[server] %s %s %s (%s)", r.Method, r.URL.Path, r.RemoteAddr, id)
		next.ServeHTTP(w, r)
		log.Printf("[server] %s %s completed in %v (%s)", r.Method, r.URL.Path, s.clock.Since(start), id)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.len(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// handleError writes err with the status HTTPStatus assigns to it.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] internal error: %v", err)
	}
	body := map[string]any{"error": err.Error()}
	if flow.IsCameraDenied(err) {
		body["retryable"] = true
	}
	s.jsonResponse(w, status, body)
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
