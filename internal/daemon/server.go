// Package daemon is the academyd HTTP server: it exposes exercise sessions,
// live previews, and course progression to local clients.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/felixgeelhaar/academy/internal/backend"
	"github.com/felixgeelhaar/academy/internal/config"
	"github.com/felixgeelhaar/academy/internal/domain"
	"github.com/felixgeelhaar/academy/internal/events"
	"github.com/felixgeelhaar/academy/internal/journal"
	"github.com/felixgeelhaar/academy/internal/judge"
	"github.com/felixgeelhaar/academy/internal/progress"
	"github.com/felixgeelhaar/academy/internal/session"
)

// Server represents the academyd HTTP server
type Server struct {
	cfg    *config.LocalConfig
	server *http.Server
	router *http.ServeMux

	// Services
	backend        *backend.Client
	courses        courseBackend
	adapter        *judge.Adapter
	executor       *judge.ResilientExecutor
	runtime        *judge.DockerRuntime
	tracker        *progress.Tracker
	sessionService session.SessionService
	journal        *journal.Journal
	eventsConn     *events.Connection
}

// courseBackend is the slice of the Academy API client the course handlers
// use directly.
type courseBackend interface {
	GetCourse(ctx context.Context, courseID int64) (*domain.Course, error)
}

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Config      *config.LocalConfig
	JournalPath string // Path for the attempt journal; empty disables it
}

// NewServer creates a new daemon server. The local runtime warmup is kicked
// off here and proceeds in the background.
func NewServer(ctx context.Context, cfg ServerConfig) (*Server, error) {
	s := &Server{
		cfg:    cfg.Config,
		router: http.NewServeMux(),
	}

	s.backend = backend.NewClient(backend.Config{
		BaseURL: cfg.Config.Backend.URL,
		Token:   cfg.Config.Backend.Token,
	})
	s.courses = s.backend

	// Speculative local interpreter. Readiness-only: runs always go to the
	// remote judge.
	var localRuntime judge.LocalRuntime
	if cfg.Config.Runtime.Enabled {
		s.runtime = judge.NewDockerRuntime(judge.DockerRuntimeConfig{
			Image:   cfg.Config.Runtime.Image,
			MaxWait: time.Duration(cfg.Config.Runtime.WaitSeconds) * time.Second,
		})
		s.runtime.Warmup(ctx)
		localRuntime = s.runtime
	}

	s.adapter = judge.NewAdapter(s.backend, localRuntime)

	resilienceCfg := judge.DefaultResilientConfig()
	if cfg.Config.Judge.MaxConcurrent > 0 {
		resilienceCfg.MaxConcurrent = cfg.Config.Judge.MaxConcurrent
	}
	if cfg.Config.Judge.RatePerSecond > 0 {
		resilienceCfg.RatePerSecond = cfg.Config.Judge.RatePerSecond
	}
	s.executor = judge.NewResilientExecutor(s.adapter, resilienceCfg)

	s.tracker = progress.NewTracker(s.backend)

	svc := session.NewService(session.NewStore(), s.backend, s.executor, s.tracker)
	if cfg.Config.Preview.DebounceMS > 0 {
		svc.SetPreviewDelay(time.Duration(cfg.Config.Preview.DebounceMS) * time.Millisecond)
	}

	// Attempt journal
	if cfg.JournalPath != "" {
		j, err := journal.Open(filepath.Join(cfg.JournalPath, "attempts.db"))
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		s.journal = j
		svc.SetRecorder(j)
	}

	// Optional session event stream
	if cfg.Config.Events.URL != "" {
		conn, err := events.NewConnection(cfg.Config.Events.URL)
		if err != nil {
			slog.Warn("event stream unavailable", "error", err)
		} else {
			s.eventsConn = conn
			svc.SetPublisher(events.NewPublisher(conn))
		}
	}

	s.sessionService = svc

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Config.Daemon.Bind, cfg.Config.Daemon.Port)
	handler := recoveryMiddleware(correlationIDMiddleware(loggingMiddleware(s.router)))
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health & status
	s.router.HandleFunc("GET /v1/health", s.handleHealth)
	s.router.HandleFunc("GET /v1/status", s.handleStatus)

	// Sessions
	s.router.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	s.router.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	s.router.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	s.router.HandleFunc("PUT /v1/sessions/{id}/code", s.handleUpdateCode)
	s.router.HandleFunc("POST /v1/sessions/{id}/run", s.handleRun)
	s.router.HandleFunc("POST /v1/sessions/{id}/submit", s.handleSubmit)
	s.router.HandleFunc("POST /v1/sessions/{id}/solution", s.handleViewSolution)
	s.router.HandleFunc("DELETE /v1/sessions/{id}/solution", s.handleCloseSolution)
	s.router.HandleFunc("POST /v1/sessions/{id}/dismiss", s.handleDismissCompletion)
	s.router.HandleFunc("GET /v1/sessions/{id}/preview", s.handlePreview)

	// Courses
	s.router.HandleFunc("POST /v1/courses/{id}/start", s.handleStartCourse)
	s.router.HandleFunc("GET /v1/courses/{id}/continue", s.handleContinueCourse)
	s.router.HandleFunc("POST /v1/courses/{id}/items/{itemID}/complete", s.handleCompleteItem)

	// Attempt history
	s.router.HandleFunc("GET /v1/exercises/{id}/attempts", s.handleListAttempts)
	s.router.HandleFunc("GET /v1/exercises/{id}/stats", s.handleExerciseStats)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("starting academy daemon",
		"addr", s.server.Addr,
		"backend", s.cfg.Backend.URL,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down daemon...")

	if err := s.executor.Close(); err != nil {
		slog.Warn("failed to close executor", "error", err)
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			slog.Warn("failed to close journal", "error", err)
		}
	}
	if s.eventsConn != nil {
		if err := s.eventsConn.Close(); err != nil {
			slog.Warn("failed to close event stream", "error", err)
		}
	}

	return s.server.Shutdown(ctx)
}

// Handler implementations

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":        "running",
		"version":       "0.1.0",
		"backend":       s.cfg.Backend.URL,
		"runtime_ready": s.adapter.RuntimeReady(),
		"events":        s.eventsConn != nil && s.eventsConn.IsConnected(),
	})
}

// Session handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CourseID int64 `json:"course_id"`
		ItemID   int64 `json:"item_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ItemID == 0 {
		s.jsonError(w, http.StatusBadRequest, "item_id is required", nil)
		return
	}

	sess, err := s.sessionService.Create(r.Context(), req.CourseID, req.ItemID)
	if err != nil {
		if errors.Is(err, session.ErrNoExercise) {
			s.jsonError(w, http.StatusUnprocessableEntity, "course item is not an exercise", nil)
			return
		}
		s.jsonError(w, http.StatusInternalServerError, "failed to create session", err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessionService.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"deleted": true,
	})
}

func (s *Server) handleUpdateCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := s.sessionService.UpdateCode(r.Context(), r.PathValue("id"), req.Code); err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"updated": true,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.sessionService.Run(r.Context(), r.PathValue("id"))
	if err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, outcome)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.sessionService.Submit(r.Context(), r.PathValue("id"))
	if err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, outcome)
}

func (s *Server) handleViewSolution(w http.ResponseWriter, r *http.Request) {
	solution, err := s.sessionService.ViewSolution(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			s.jsonError(w, http.StatusUnauthorized, "sign in to the Academy to view solutions", nil)
			return
		}
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"solution": solution,
	})
}

func (s *Server) handleCloseSolution(w http.ResponseWriter, r *http.Request) {
	if err := s.sessionService.CloseSolution(r.Context(), r.PathValue("id")); err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"closed": true,
	})
}

func (s *Server) handleDismissCompletion(w http.ResponseWriter, r *http.Request) {
	if err := s.sessionService.DismissCompletion(r.Context(), r.PathValue("id")); err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"dismissed": true,
	})
}

// handlePreview serves the synthesized preview document. The CSP sandbox
// matches an iframe sandbox that allows scripts but denies same-origin
// access.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.sessionError(w, err)
		return
	}

	doc, ok := sess.PreviewDocument()
	if !ok {
		s.jsonError(w, http.StatusNotFound, "session has no preview", nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", "sandbox allow-scripts")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

// Course handlers

func (s *Server) handleStartCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := s.pathInt64(r, "id")
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid course id", err)
		return
	}

	course, err := s.tracker.Start(r.Context(), courseID)
	if err != nil {
		s.jsonError(w, http.StatusBadGateway, "failed to start course", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, course)
}

func (s *Server) handleContinueCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := s.pathInt64(r, "id")
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid course id", err)
		return
	}

	course, err := s.courses.GetCourse(r.Context(), courseID)
	if err != nil {
		s.jsonError(w, http.StatusBadGateway, "failed to load course", err)
		return
	}

	item, err := s.tracker.Continue(course)
	if err != nil {
		if errors.Is(err, progress.ErrEmptyCourse) {
			s.jsonError(w, http.StatusNotFound, "course has no items", nil)
			return
		}
		s.jsonError(w, http.StatusInternalServerError, "failed to resolve next item", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, item)
}

func (s *Server) handleCompleteItem(w http.ResponseWriter, r *http.Request) {
	courseID, err := s.pathInt64(r, "id")
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid course id", err)
		return
	}
	itemID, err := s.pathInt64(r, "itemID")
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid item id", err)
		return
	}

	next, err := s.tracker.CompleteItem(r.Context(), courseID, itemID)
	if err != nil {
		s.jsonError(w, http.StatusBadGateway, "failed to complete item", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"completed": true,
		"next_item": next,
	})
}

// Attempt history handlers

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.jsonError(w, http.StatusNotFound, "journal disabled", nil)
		return
	}

	exerciseID, err := s.pathInt64(r, "id")
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid exercise id", err)
		return
	}

	attempts, err := s.journal.Recent(exerciseID, 50)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to list attempts", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"attempts": attempts,
	})
}

func (s *Server) handleExerciseStats(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.jsonError(w, http.StatusNotFound, "journal disabled", nil)
		return
	}

	exerciseID, err := s.pathInt64(r, "id")
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid exercise id", err)
		return
	}

	stats, err := s.journal.StatsFor(exerciseID)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to get stats", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, stats)
}

// Helper methods

func (s *Server) pathInt64(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(r.PathValue(key), 10, 64)
}

func (s *Server) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		s.jsonError(w, http.StatusNotFound, "session not found", nil)
	case errors.Is(err, session.ErrNotReady):
		s.jsonError(w, http.StatusConflict, "session is not ready", nil)
	default:
		s.jsonError(w, http.StatusInternalServerError, "session operation failed", err)
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.jsonResponse(w, status, response)
}
