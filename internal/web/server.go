// Package web exposes the engine over a small JSON API: live status,
// daily and weekly reports, and nudge acknowledgement.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"timeopt/internal/config"
	"timeopt/internal/coordinator"
	"timeopt/internal/database"
	"timeopt/internal/reporter"
)

type Server struct {
	server *http.Server
	logger *zap.Logger
}

func NewServer(cfg *config.Config, repo *database.Repository, coord *coordinator.Coordinator, logger *zap.Logger) *Server {
	handler := NewHandler(repo, coord, reporter.New(cfg, repo, logger), logger)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{server: httpServer, logger: logger}
}

func (s *Server) Start() error {
	s.logger.Info("starting web api", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web api")
	return s.server.Shutdown(ctx)
}

func (s *Server) Address() string {
	return s.server.Addr
}
