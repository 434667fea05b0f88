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

	// Relay endpoint (persistent duplex connection per user id)
	s.echo.GET("/ws/:user_id", s.handleWebSocket)

	// Stateless classification endpoint
	s.echo.POST("/detect_emotion", s.handleDetectEmotion)

	// Aggregate stats (404 when no stats store is configured)
	s.echo.GET("/api/stats", s.handleStats)
}
