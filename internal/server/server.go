// Package server exposes the dashboard web UI and its JSON API.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"pydash/internal/config"
	"pydash/internal/git"
	"pydash/internal/runner"
	"pydash/internal/scanner"
	"pydash/internal/store"
)

//go:embed index.html
var indexHTML []byte

// Server serves the dashboard UI, the JSON API, the websocket event stream,
// and Prometheus metrics.
type Server struct {
	cfg     *config.Config
	scanner *scanner.Scanner
	git     *git.Service
	runner  runner.Runner
	db      *store.DB // nil disables scan history
	hub     *hub
	log     *logrus.Entry

	// mu serializes read-modify-write cycles on the data file.
	mu sync.Mutex
}

// New builds a Server. db may be nil, in which case the history endpoint
// reports that history is unavailable.
func New(cfg *config.Config, sc *scanner.Scanner, gitSvc *git.Service, r runner.Runner, db *store.DB) *Server {
	return &Server{
		cfg:     cfg,
		scanner: sc,
		git:     gitSvc,
		runner:  r,
		db:      db,
		hub:     newHub(),
		log:     logrus.WithField("component", "server"),
	}
}

// Routes builds the HTTP handler with all endpoints registered.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/data", s.handleData)
	mux.HandleFunc("/api/scan-projects", s.handleScanProjects)
	mux.HandleFunc("/api/open-project", s.handleOpenProject)
	mux.HandleFunc("/api/save-data", s.handleSaveData)
	mux.HandleFunc("/api/venv/", s.handleVenvAction)
	mux.HandleFunc("/api/git/", s.handleGitAction)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.Handle("/metrics", promhttp.Handler())

	return instrument(mux)
}

// Run starts the HTTP server and the event hub, blocking until ctx is
// cancelled or the listener fails. Shutdown is graceful with a short
// drain window.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.hub.run(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Infof("dashboard listening on http://%s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warnf("shutdown: %v", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
}

// Broadcast pushes an event to all connected websocket clients. It never
// blocks; events are dropped when no client keeps up.
func (s *Server) Broadcast(ev Event) {
	s.hub.send(ev)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

// writeJSON sends v as the JSON response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("encoding response: %v", err)
	}
}

// writeError sends a JSON error body with the given status.
func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
