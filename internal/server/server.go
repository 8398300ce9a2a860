// Package server provides the HTTP REST API for the resume builder.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/assistant"
	"github.com/jonathan/resume-builder/internal/compiler"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/optimizer"
	"github.com/jonathan/resume-builder/internal/resumes"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/types"
)

const maxJSONBody = 2 << 20

// Optimizer rewrites resume sections and writes analysis insights.
type Optimizer interface {
	OptimizeSection(ctx context.Context, req optimizer.Request) (*types.OptimizationResult, error)
	Summarize(ctx context.Context, resumeText, jobText string, match *types.MatchResult) (*types.Insight, error)
}

// ChatAssistant answers chat messages as a persona.
type ChatAssistant interface {
	Reply(ctx context.Context, persona string, history []types.ChatMessage, message, resumeText string) (string, error)
}

// JobFetcher imports job description text from a posting URL.
type JobFetcher interface {
	JobDescription(ctx context.Context, url string) (*fetch.JobDescription, error)
}

// Deps are the collaborators of a Server. Optimizer, Assistant, Fetcher and
// Limiter get working defaults when nil; AI calls then fail as not
// configured.
type Deps struct {
	Store     db.Store
	Resumes   *resumes.Service
	Optimizer Optimizer
	Assistant ChatAssistant
	Fetcher   JobFetcher
	Limiter   *ratelimit.Limiter
	Logger    *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	authMode    string
	store       db.Store
	resumes     *resumes.Service
	optimizer   Optimizer
	assistant   ChatAssistant
	fetcher     JobFetcher
	rateLimiter *ratelimit.Limiter
	userService *UserService
	authHandler *AuthHandler
	logger      *zap.Logger
	maxUpload   int64
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Resumes == nil {
		return nil, errors.New("server requires a store and a resume service")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		authMode:    cfg.AuthMode,
		store:       deps.Store,
		resumes:     deps.Resumes,
		optimizer:   deps.Optimizer,
		assistant:   deps.Assistant,
		fetcher:     deps.Fetcher,
		rateLimiter: deps.Limiter,
		logger:      logger,
		maxUpload:   int64(cfg.MaxUploadBytes),
	}
	if s.optimizer == nil {
		s.optimizer = optimizer.New(nil, logger)
	}
	if s.assistant == nil {
		s.assistant = assistant.New(nil, logger)
	}
	if s.fetcher == nil {
		s.fetcher = fetch.NewFetcher(fetch.FetcherConfig{}, logger)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 10 << 20
	}

	authenticate, err := s.setupAuth(cfg)
	if err != nil {
		return nil, err
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return authenticate(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Accounts
	if s.authHandler != nil {
		mux.HandleFunc("POST /api/auth/register", s.authHandler.Register)
		mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
		mux.Handle("PUT /api/auth/password", protected(s.handleUpdatePassword))
	} else {
		mux.HandleFunc("POST /api/auth/register", s.handleLocalAccountsDisabled)
		mux.HandleFunc("POST /api/auth/login", s.handleLocalAccountsDisabled)
		mux.HandleFunc("PUT /api/auth/password", s.handleLocalAccountsDisabled)
	}
	mux.Handle("GET /api/auth/me", protected(s.handleMe))

	// Resumes
	mux.HandleFunc("GET /api/templates", s.handleListTemplates)
	mux.Handle("GET /api/resumes", protected(s.handleListResumes))
	mux.Handle("POST /api/resumes", protected(s.handleCreateResume))
	mux.Handle("POST /api/resumes/import", protected(s.handleImportResume))
	mux.Handle("GET /api/resumes/{id}", protected(s.handleGetResume))
	mux.Handle("PUT /api/resumes/{id}", protected(s.handleUpdateResume))
	mux.Handle("DELETE /api/resumes/{id}", protected(s.handleDeleteResume))
	mux.Handle("GET /api/resumes/{id}/sections", protected(s.handleListSections))
	mux.Handle("PUT /api/resumes/{id}/sections/{name}", protected(s.handleUpdateSection))
	mux.Handle("POST /api/resumes/{id}/compile", protected(s.handleCompileResume))
	mux.Handle("GET /api/resumes/{id}/pdf", protected(s.handleResumePDF))
	mux.Handle("GET /api/resumes/{id}/docx", protected(s.handleResumeDocx))
	mux.Handle("GET /api/resumes/{id}/tex", protected(s.handleResumeTex))
	mux.Handle("POST /api/resumes/{id}/optimize", protected(s.handleOptimizeResume))
	mux.Handle("GET /api/resumes/{id}/optimizations", protected(s.handleListOptimizations))

	// Stateless tools
	mux.Handle("POST /api/compile", protected(s.handleCompile))
	mux.Handle("POST /api/optimize", protected(s.handleOptimize))
	mux.Handle("POST /api/match", protected(s.handleMatch))
	mux.Handle("POST /api/ats-check", protected(s.handleATSCheck))
	mux.Handle("POST /api/analyze", protected(s.handleAnalyze))
	mux.Handle("POST /api/job-description/fetch", protected(s.handleFetchJobDescription))

	// Chat
	mux.HandleFunc("GET /api/chat/personas", s.handleListPersonas)
	mux.Handle("POST /api/chat", protected(s.handleChat))
	mux.Handle("GET /api/chat/conversations", protected(s.handleListConversations))
	mux.Handle("GET /api/chat/conversations/{id}", protected(s.handleGetConversation))
	mux.Handle("DELETE /api/chat/conversations/{id}", protected(s.handleDeleteConversation))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(s.withMetrics(mux))))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // LaTeX compiles and AI calls
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupAuth builds the authentication middleware for cfg.AuthMode.
func (s *Server) setupAuth(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	switch cfg.AuthMode {
	case config.AuthSupabase:
		if cfg.SupabaseJWTSecret == "" {
			return nil, errors.New("supabase auth requires a JWT secret")
		}
		return middleware.RequireBearer(NewSupabaseValidator(cfg.SupabaseJWTSecret)), nil
	case config.AuthNone:
		return middleware.Anonymous(uuid.Nil), nil
	default:
		passwordConfig, err := cfg.PasswordConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create password config: %w", err)
		}
		jwtConfig, err := cfg.JWTConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
		jwtService := NewJWTService(jwtConfig)
		s.userService = NewUserService(s.store, passwordConfig)
		s.authHandler = NewAuthHandler(s.userService, jwtService, s.logger)
		return middleware.RequireBearer(jwtService), nil
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr), zap.String("auth_mode", s.authMode))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	s.logger.Info("server stopped")
	return nil
}

// Close stops the rate limiter sweeper. The store is owned by the caller.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-PDF-Pages, X-PDF-Placeholder")

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
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			rateLimited.WithLabelValues(r.Method).Inc()
			s.rateLimitResponse(w, r, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		}
		if rec.status >= http.StatusInternalServerError {
			s.logger.Warn("request failed", fields...)
			return
		}
		s.logger.Info("request", fields...)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLocalAccountsDisabled(w http.ResponseWriter, _ *http.Request) {
	errorResponse(w, http.StatusNotFound, fmt.Sprintf("local accounts are disabled in %s auth mode", s.authMode))
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// handleError maps err to a status and writes it. Compile failures carry the
// offending line and log excerpt; server-side failures are logged and their
// details withheld.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)

	var ce *compiler.CompilationError
	if errors.As(err, &ce) {
		jsonResponse(w, status, types.CompileErrorResponse{
			Error:   "compilation failed",
			Line:    ce.Line,
			Message: ce.Summary(),
			Log:     ce.LogOutput,
		})
		return
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	if status == http.StatusInternalServerError {
		errorResponse(w, status, "internal server error")
		return
	}
	errorResponse(w, status, err.Error())
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &ErrValidation{Field: "body", Message: fmt.Sprintf("exceeds %d bytes", maxErr.Limit)}
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationError converts the first validator failure into an ErrValidation.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}

// currentUser returns the authenticated user ID placed by the auth middleware.
func currentUser(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		return uuid.Nil, &ErrInvalidCredentials{}
	}
	return id, nil
}

// pathID parses a UUID path parameter.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return parseUUID(name, r.PathValue(name))
}

func parseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: field, Message: "must be a UUID"}
	}
	return id, nil
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
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
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]interface{}{
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

	s.logger.Info("rate limit exceeded",
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
		zap.Time("reset", info.ResetTime))

	jsonResponse(w, http.StatusTooManyRequests, response)
}
