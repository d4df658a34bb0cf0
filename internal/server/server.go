// Package server is the development HTTP server: it serves the output
// directory, health probes and the build event stream.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// EventsPath is where the SSE build event stream is mounted.
const EventsPath = "/_depot/events"

// Status records the outcome of the latest build for the readiness probe.
type Status struct {
	mu      sync.RWMutex
	built   bool
	lastErr error
}

// Record stores the result of a build.
func (s *Status) Record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err == nil {
		s.built = true
	}
}

// Ready reports whether at least one build succeeded, along with the error
// of the latest build if it failed.
func (s *Status) Ready() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.built, s.lastErr
}

// EventStream is the build event endpoint.
type EventStream interface {
	http.Handler
	ClientCount() int
}

// NewRouter creates the chi router. events, if non-nil, is mounted at
// EventsPath and its open connections are reported by /health/ready.
func NewRouter(outputDir string, events EventStream, status *Status) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		ready, err := status.Ready()
		body := map[string]any{"status": "ok"}
		if events != nil {
			body["clients"] = events.ClientCount()
		}
		if err != nil {
			body["last_error"] = err.Error()
		}
		if !ready {
			body["status"] = "building"
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		writeJSON(w, http.StatusOK, body)
	})

	if events != nil {
		r.Get(EventsPath, events.ServeHTTP)
	}

	r.With(middleware.NoCache).Handle("/*", http.FileServer(http.Dir(outputDir)))
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}
