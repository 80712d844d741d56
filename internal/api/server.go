// Package api serves the generated feed to the calendar/reminder front end,
// plus run diagnostics and an on-demand refresh hook.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seojoon/ipofeed/internal/observability"
)

// RefreshFunc re-runs the pipeline and rewrites the feed file.
type RefreshFunc func(ctx context.Context) error

type Server struct {
	router   *chi.Mux
	feedPath string
	refresh  RefreshFunc

	// refreshMu serializes refreshes; the pipeline is single-run by design.
	refreshMu sync.Mutex
}

func NewServer(feedPath string, refresh RefreshFunc) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		feedPath: feedPath,
		refresh:  refresh,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/feed", s.handleFeed)
	s.router.Get("/stats", s.handleStats)
	s.router.Post("/refresh", s.handleRefresh)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleFeed streams the persisted feed file as-is so the served bytes always
// match the artifact on disk.
func (s *Server) handleFeed(w http.ResponseWriter, _ *http.Request) {
	data, err := os.ReadFile(s.feedPath)
	if err != nil {
		respondJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "feed not generated yet"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresh == nil {
		respondJSON(w, http.StatusNotImplemented, map[string]any{"ok": false, "error": "refresh disabled"})
		return
	}
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if err := s.refresh(r.Context()); err != nil {
		slog.Error("refresh failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}
