package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hopqa/internal/config"
	"hopqa/internal/logging"
	"hopqa/internal/multihop"
)

// QARunner answers one question. The orchestrator satisfies this; tests
// substitute a stub.
type QARunner interface {
	Run(ctx context.Context, question string, maxHops int) (*multihop.RunResult, error)
}

// Server is the HTTP API over a shared, read-only QA runner. The runner is
// constructed once at startup; handlers never mutate it.
type Server struct {
	config config.ServerConfig
	runner QARunner
	logger logging.Logger
	http   *http.Server
}

// New builds the server and its routes.
func New(cfg config.ServerConfig, runner QARunner, logger logging.Logger) *Server {
	s := &Server{
		config: cfg,
		runner: runner,
		logger: logging.OrNop(logger),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	api := engine.Group("/api")
	api.POST("/ask", s.handleAsk)
	api.GET("/health", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.logger.Info("shutting down HTTP API")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
