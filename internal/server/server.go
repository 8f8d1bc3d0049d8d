package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Joxtacy/joxtabot/internal/config"
	joxerrors "github.com/Joxtacy/joxtabot/internal/errors"
	"github.com/Joxtacy/joxtabot/internal/relay"
)

const maxOverlayConnections = 128

// webhookHandler handles EventSub webhook deliveries.
type webhookHandler interface {
	Handle(c echo.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	hub       *relay.Hub
	webhook   webhookHandler
	limiter   *ConnectionLimiter
	startTime time.Time

	// Health check targets; either may be nil when the backing service is
	// not configured.
	postgres postgresHealthChecker
	redis    redisHealthChecker
}

func NewServer(cfg *config.Config, hub *relay.Hub, webhook webhookHandler, postgres postgresHealthChecker, redis redisHealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(joxerrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		hub:       hub,
		webhook:   webhook,
		limiter:   NewConnectionLimiter(maxOverlayConnections),
		startTime: time.Now(),
		postgres:  postgres,
		redis:     redis,
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
