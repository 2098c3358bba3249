// internal/server/server.go

// Package server exposes the matching engine over HTTP.
package server

import (
	"context"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"talent-matching/internal/common/config"
	"talent-matching/internal/common/logger"
	"talent-matching/internal/common/observability"
	"talent-matching/internal/matching/engine"
)

// Server wraps the HTTP boundary around the match engine.
type Server struct {
	cfg        config.ServerConfig
	engine     *engine.Engine
	logger     logger.Logger
	obs        *observability.Observability
	router     *mux.Router
	httpServer *http.Server

	// health probes reported by /health, wired at construction
	checks map[string]func(ctx context.Context) error
}

func New(cfg config.ServerConfig, eng *engine.Engine, log logger.Logger, obs *observability.Observability, checks map[string]func(ctx context.Context) error) *Server {
	s := &Server{
		cfg:    cfg,
		engine: eng,
		logger: log.WithFields(map[string]interface{}{"component": "http-server"}),
		obs:    obs,
		checks: checks,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()
	s.router.Use(s.requestID, s.requestLogging)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ai-matching", s.handleRecommend).Methods("GET")
	api.HandleFunc("/ai-matching/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/ai-matching/invalidate/{entityId}", s.handleInvalidate).Methods("POST")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	debug := s.router.PathPrefix("/debug/pprof").Subrouter()
	debug.HandleFunc("", pprof.Index)
	debug.HandleFunc("/cmdline", pprof.Cmdline)
	debug.HandleFunc("/profile", pprof.Profile)
	debug.HandleFunc("/symbol", pprof.Symbol)
	debug.Handle("/heap", pprof.Handler("heap"))
	debug.Handle("/goroutine", pprof.Handler("goroutine"))
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving and blocks until the listener fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := time.Duration(s.cfg.ShutdownTimeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
