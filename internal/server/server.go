// Package server provides the HTTP REST API for capturing, scoring and
// saving profile scans.
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
	"github.com/jonathan/jobfit-analyzer/internal/config"
	"github.com/jonathan/jobfit-analyzer/internal/dom"
	"github.com/jonathan/jobfit-analyzer/internal/fetch"
	"github.com/jonathan/jobfit-analyzer/internal/logger"
	"github.com/jonathan/jobfit-analyzer/internal/metrics"
	"github.com/jonathan/jobfit-analyzer/internal/pipeline"
	"github.com/jonathan/jobfit-analyzer/internal/server/middleware"
	"github.com/jonathan/jobfit-analyzer/internal/types"
	"go.uber.org/zap"
)

// ScanHistory reads and appends a user's saved scans.
type ScanHistory interface {
	pipeline.ScanSink
	ListScans(ctx context.Context, userID uuid.UUID, limit int) ([]types.ScanRecord, error)
}

// PageFetcher loads a page when a capture request carries no HTML.
type PageFetcher func(ctx context.Context, url string) (dom.Snapshot, error)

// Options holds server dependencies. Users and History are optional; without
// them the auth routes answer 503 and the scan routes 401.
type Options struct {
	Port     int
	Analyzer *pipeline.Analyzer
	History  ScanHistory
	Users    UserStore
	JWT      *config.JWTConfig
	Password *config.PasswordConfig
	Metrics  *metrics.Metrics
	Fetch    PageFetcher
	Logger   *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	analyzer    *pipeline.Analyzer
	history     ScanHistory
	authHandler *AuthHandler
	jwtService  *JWTService
	metrics     *metrics.Metrics
	fetch       PageFetcher
	validator   *validator.Validate
	logger      *zap.Logger
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Analyzer == nil {
		return nil, errors.New("an analyzer is required")
	}

	s := &Server{
		analyzer:  opts.Analyzer,
		history:   opts.History,
		metrics:   opts.Metrics,
		fetch:     opts.Fetch,
		validator: validator.New(),
		logger:    logger.OrNop(opts.Logger),
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.analyzer.Metrics == nil {
		s.analyzer.Metrics = s.metrics
	}
	if s.analyzer.Sink == nil && opts.History != nil {
		s.analyzer.Sink = opts.History
	}
	if s.fetch == nil {
		s.fetch = func(ctx context.Context, url string) (dom.Snapshot, error) {
			return fetch.Snapshot(ctx, url, nil)
		}
	}

	if opts.Users != nil || opts.History != nil {
		if opts.JWT == nil {
			return nil, errors.New("a JWT configuration is required for authenticated routes")
		}
		s.jwtService = NewJWTService(opts.JWT)
	}
	if opts.Users != nil {
		if opts.Password == nil {
			return nil, errors.New("a password configuration is required for user accounts")
		}
		s.authHandler = NewAuthHandler(NewUserService(opts.Users, opts.Password), s.jwtService, s.logger)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("POST /profiles", s.handleCaptureProfile)
	mux.HandleFunc("GET /profiles/current", s.handleCurrentProfile)
	mux.HandleFunc("POST /score", s.handleScore)

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.Handle("PUT /auth/password", s.authenticated(http.HandlerFunc(s.handleUpdatePassword)))

	mux.Handle("POST /scans", s.authenticated(http.HandlerFunc(s.handleSaveScan)))
	mux.Handle("GET /scans", s.authenticated(http.HandlerFunc(s.handleListScans)))

	s.handler = s.withLogging(s.withCORS(mux))

	port := opts.Port
	if port == 0 {
		port = config.DefaultPort
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // scoring calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the router with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	s.logger.Info("server stopped")
	return nil
}

// authenticated requires a valid bearer token. Without a JWT configuration
// every request is rejected as not logged in.
func (s *Server) authenticated(next http.Handler) http.Handler {
	if s.jwtService == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			middleware.Unauthorized(w)
		})
	}
	return middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(next)
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
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
			zap.String("remote", r.RemoteAddr))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.authHandler == nil {
		writeError(w, http.StatusServiceUnavailable, msgNoHistory)
		return
	}
	s.authHandler.Register(w, r)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.authHandler == nil {
		writeError(w, http.StatusServiceUnavailable, msgNoHistory)
		return
	}
	s.authHandler.Login(w, r)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	if s.authHandler == nil {
		writeError(w, http.StatusServiceUnavailable, msgNoHistory)
		return
	}
	s.authHandler.UpdatePassword(w, r)
}

// fail logs err and writes its public form.
func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	writeError(w, status, publicMessage(err))
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error JSON response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
