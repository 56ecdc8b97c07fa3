package ui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"aireliance/internal"
	"aireliance/internal/api"
	"aireliance/internal/experiment"

	"github.com/gin-gonic/gin"
)

// Config holds HTTP server settings
type Config struct {
	Addr    string
	GinMode string

	// AccessLog enables gin's request logger
	AccessLog bool
}

// Server is the participant-facing experiment API
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	manager    *experiment.SessionManager
	hub        *api.SSEHub
	logger     *internal.Logger
}

// NewServer creates a new web server instance with routes installed
func NewServer(cfg Config, manager *experiment.SessionManager, hub *api.SSEHub, logger *internal.Logger) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:  gin.New(),
		manager: manager,
		hub:     hub,
		logger:  logger.With("API"),
	}
	s.setupMiddleware(cfg.AccessLog)
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, ends event streams and drains handlers
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.httpServer.Shutdown(ctx)
}
