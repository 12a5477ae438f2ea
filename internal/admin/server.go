// Package admin serves the bridge's health, metrics and target listing over HTTP.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"evalgo.org/oscbridge/internal/metrics"
	"evalgo.org/oscbridge/internal/player"
)

// TargetInfo describes one configured target. The password is never exposed.
type TargetInfo struct {
	ID   int    `json:"id"`
	URL  string `json:"url"`
	Auth bool   `json:"auth"`
}

// Deps holds what the admin handlers report on.
type Deps struct {
	Targets      []*player.Target
	Commands     []string
	OSCAddr      string
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the admin HTTP server.
type Server struct {
	addr      string
	deps      Deps
	logger    *slog.Logger
	router    *mux.Router
	startTime time.Time

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

// New creates an admin server for addr. It does not listen until Start.
func New(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.ReadTimeout == 0 {
		deps.ReadTimeout = 10 * time.Second
	}
	if deps.WriteTimeout == 0 {
		deps.WriteTimeout = 10 * time.Second
	}

	s := &Server{
		addr:      addr,
		deps:      deps,
		logger:    logger.With(slog.String("component", "admin")),
		startTime: time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Prometheus scrape endpoint
	if s.deps.Metrics != nil {
		s.router.Handle("/metrics", s.deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	// Configured targets and the command vocabulary
	s.router.HandleFunc("/targets", s.handleTargets).Methods(http.MethodGet)
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds addr and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.deps.ReadTimeout,
		WriteTimeout: s.deps.WriteTimeout,
	}
	s.done = make(chan struct{})

	s.logger.Info("admin_server_started", slog.String("listen_addr", ln.Addr().String()))

	srv, done := s.server, s.done
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("admin_server_failed", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.server, s.done
	s.server = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("admin server shutdown: %w", err)
	}
	<-done

	s.logger.Info("admin_server_stopped")
	return nil
}

// handleHealth returns bridge health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":      "healthy",
		"uptime":      time.Since(s.startTime).Seconds(),
		"targets":     len(s.deps.Targets),
		"listen_addr": s.deps.OSCAddr,
	}

	writeJSON(w, response)
}

// handleTargets lists the configured targets
func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	targets := make([]TargetInfo, 0, len(s.deps.Targets))
	for _, t := range s.deps.Targets {
		targets = append(targets, TargetInfo{
			ID:   t.ID(),
			URL:  t.URL(),
			Auth: t.HasPassword(),
		})
	}

	commands := s.deps.Commands
	if commands == nil {
		commands = []string{}
	}

	writeJSON(w, map[string]interface{}{
		"targets":  targets,
		"commands": commands,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
