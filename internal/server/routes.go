package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	s.echo.GET("/", s.handleIndex)

	// Overlay WebSocket fan-out
	s.echo.GET("/ws", s.handleWebSocket)

	// EventSub notifications from Twitch
	s.echo.POST("/twitch/webhooks/callback", s.webhook.Handle)
}
