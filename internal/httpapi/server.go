// Package httpapi serves the dashboard over HTTP: a JSON API, CSV and
// markdown exports, a websocket selection channel and the single page UI.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"sim-dashboard/internal/dashboard"
	"sim-dashboard/internal/observability"
	"sim-dashboard/internal/reporting"
	"sim-dashboard/internal/selector"
)

// RunService is the pipeline the handlers call into.
type RunService interface {
	Strategies(ctx context.Context) ([]string, error)
	Runs(ctx context.Context, strategy string) ([]selector.RunOption, error)
	Load(ctx context.Context, exeID string) (*dashboard.RunView, error)
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// DefaultServerConfig returns default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:           "127.0.0.1", // Local-only by default
		Port:           8501,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		RequestTimeout: 20 * time.Second,
	}
}

// Server is the dashboard HTTP server.
type Server struct {
	router  *mux.Router
	server  *http.Server
	service RunService
	reports *reporting.Generator
	config  ServerConfig
	logger  zerolog.Logger

	mu       sync.Mutex
	sessions map[*websocket.Conn]struct{}
	closing  bool
}

// NewServer creates a server over service. Nothing listens until Start.
func NewServer(config ServerConfig, service RunService, logger zerolog.Logger) *Server {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultServerConfig().RequestTimeout
	}

	s := &Server{
		router:   mux.NewRouter(),
		service:  service,
		reports:  reporting.NewGenerator(service),
		config:   config,
		logger:   logger.With().Str("component", "httpapi").Logger(),
		sessions: make(map[*websocket.Conn]struct{}),
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.Address(),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	// Hijacked websocket connections are not tracked by http.Server.
	s.server.RegisterOnShutdown(s.closeSessions)
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Middleware for all routes
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.corsMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", observability.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	// Pipeline routes run under a deadline
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.timeoutMiddleware)

	api.HandleFunc("/strategies", s.handleStrategies).Methods(http.MethodGet)
	api.HandleFunc("/strategies/{strategy}/runs", s.handleRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{exeId}", s.handleRun).Methods(http.MethodGet)
	api.HandleFunc("/runs/{exeId}/refresh", s.handleRun).Methods(http.MethodPost)
	api.HandleFunc("/runs/{exeId}/wallet.csv", s.handleWalletCSV).Methods(http.MethodGet)
	api.HandleFunc("/runs/{exeId}/operations.csv", s.handleOperationsCSV).Methods(http.MethodGet)
	api.HandleFunc("/runs/{exeId}/report.md", s.handleReport).Methods(http.MethodGet)

	// 404 handler
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens and serves until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.Address()).Msg("starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// trackSession registers a live websocket connection. It returns false once
// shutdown has begun.
func (s *Server) trackSession(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions[conn] = struct{}{}
	return true
}

func (s *Server) untrackSession(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.sessions, conn)
	s.mu.Unlock()
}

// closeSessions sends a going-away close frame to every open websocket
// and closes it, which ends the session read loops.
func (s *Server) closeSessions() {
	s.mu.Lock()
	s.closing = true
	conns := make([]*websocket.Conn, 0, len(s.sessions))
	for conn := range s.sessions {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	deadline := time.Now().Add(time.Second)
	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
		_ = conn.Close()
	}
	if len(conns) > 0 {
		s.logger.Info().Int("sessions", len(conns)).Msg("closed websocket sessions")
	}
}

// Address returns the listen address.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
