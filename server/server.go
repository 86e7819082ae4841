// Package server exposes the chart views over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/TFMV/refugeeflow/config"
	"github.com/TFMV/refugeeflow/view"
)

// ServiceName tags spans produced by the HTTP middleware
const ServiceName = "refugeeflow"

// shutdownTimeout bounds how long in-flight requests may run after the
// context is cancelled
const shutdownTimeout = 15 * time.Second

// Server serves the dashboard API
type Server struct {
	cfg      config.ServerConfig
	selector *view.Selector
	validate *validator.Validate
	router   *gin.Engine
}

// New builds the router around a selector. The selector must not be mutated
// once the server is running.
func New(selector *view.Selector, cfg config.ServerConfig) *Server {
	s := &Server{
		cfg:      cfg,
		selector: selector,
		validate: validator.New(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(ServiceName))
	router.Use(requestID())
	router.Use(accessLog())
	router.Use(metrics())

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.GET("/labels", s.handleLabels)
	v1.GET("/map", s.handleMap)
	v1.GET("/chart", s.handleChart)
	v1.POST("/chart", s.handleChart)

	return router
}

// Start listens until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}
