package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bookapp/internal/util"
	"bookapp/pkg/domain"
	"bookapp/services/crawl/internal/app"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
}

// Server exposes the crawl trigger and status endpoints consumed by the
// gateway.
type Server struct {
	app *app.App
	mux *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app: cfg.App,
		mux: http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("crawl", s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/crawl/trigger-all", s.handleTriggerAll)
	s.mux.HandleFunc("/api/crawl/trigger/", s.handleTrigger)
	s.mux.HandleFunc("/api/crawl/status", s.handleStatus)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTrigger runs one source synchronously and returns its terminal run
// record.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	src := domain.Source(strings.TrimPrefix(r.URL.Path, "/api/crawl/trigger/"))
	run, err := s.app.TriggerRun(r.Context(), src)
	if err != nil {
		if errors.Is(err, app.ErrUnsupportedSource) {
			writeError(w, http.StatusBadRequest, "unsupported source: "+string(src))
			return
		}
		writeError(w, http.StatusInternalServerError, "crawl run failed to start")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleTriggerAll runs every source in order and returns all run records.
func (s *Server) handleTriggerAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	runs, err := s.app.TriggerRunAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "crawl pass aborted")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleStatus returns recent run records, most recent first.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.app.ListRecentRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
