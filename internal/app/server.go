package app

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/job-finder/internal/config"
	"github.com/justsurfingit/job-finder/internal/services"
	"github.com/justsurfingit/job-finder/pkg/logging"
)

// Server owns the HTTP listener and the background searches behind it.
type Server struct {
	logger   *logging.Logger
	searches *services.JobService

	srv     *http.Server
	started atomic.Bool
}

func NewServer(log *logging.Logger, cfg config.Config, router *gin.Engine, searches *services.JobService) *Server {
	return &Server{
		logger:   log,
		searches: searches,
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run() error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Info("job finder listening", "addr", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then cancels and drains running searches.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutdown requested")

	httpErr := s.srv.Shutdown(ctx)
	if httpErr != nil {
		s.logger.Warn("http server shutdown with error", "err", httpErr)
	}
	searchErr := s.searches.Shutdown(ctx)
	if searchErr != nil {
		s.logger.Warn("searches did not finish before shutdown", "err", searchErr)
	}

	if err := errors.Join(httpErr, searchErr); err != nil {
		return err
	}
	s.logger.Info("shutdown complete")
	return nil
}
