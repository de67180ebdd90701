// Package server wires the HTTP server: echo bootstrap, middleware stack
// and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/thursday/internal/profile"
	"github.com/hrygo/thursday/server/chat"
	apiv1 "github.com/hrygo/thursday/server/router/api/v1"
)

type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
	logger     *slog.Logger
}

// NewServer creates the HTTP server around the decision engine.
func NewServer(profile *profile.Profile, engine *chat.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(middleware.Recover())
	// The web frontend is served from a different origin.
	echoServer.Use(middleware.CORS())
	echoServer.Use(requestLogger(logger))

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	apiv1.NewAPIV1Service(engine, logger).RegisterRoutes(echoServer)

	return &Server{
		Profile:    profile,
		echoServer: echoServer,
		logger:     logger,
	}
}

// Start begins serving and blocks until the listener fails or is shut down.
func (s *Server) Start() error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	s.logger.Info("server started", "address", address, "version", s.Profile.Version)

	if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "start server")
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown server", "error", err)
	}
	s.logger.Info("server stopped")
}

// Echo exposes the underlying router, used by tests.
func (s *Server) Echo() *echo.Echo {
	return s.echoServer
}

// requestLogger logs every request with a short request id and latency.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := shortuuid.New()
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info("request",
				"request_id", requestID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"latency", time.Since(start).String(),
			)
			return err
		}
	}
}
