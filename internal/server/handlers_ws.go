package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/emotewire/emotewire/internal/domain"
	"github.com/emotewire/emotewire/internal/logging"
	"github.com/emotewire/emotewire/internal/metrics"
)

const (
	messagesPerSecond = 5
	messageBurst      = 10
	pongWait          = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Relay clients connect from arbitrary origins
	},
}

func (s *Server) handleWebSocket(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}

	ip := c.RealIP()
	ok, reason := s.limits.Acquire(ip)
	if !ok {
		metrics.ConnectionsRejected.WithLabelValues(string(reason)).Inc()
		status := http.StatusServiceUnavailable
		if reason == LimitReasonRate {
			status = http.StatusTooManyRequests
		}
		return c.JSON(status, map[string]string{"error": "connection limit reached"})
	}
	defer s.limits.Release(ip)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade websocket: %w", err)
	}

	s.registry.Connect(userID, conn)
	defer s.registry.Disconnect(userID, conn)

	log := logging.WithUser(userID)
	limiter := rate.NewLimiter(messagesPerSecond, messageBurst)
	conn.SetReadLimit(s.config.MaxMessageBytes)

	ctx := c.Request().Context()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("Websocket read failed", "error", err)
			}
			return nil
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if !limiter.Allow() {
			metrics.RelayMessagesTotal.WithLabelValues("rate_limited").Inc()
			s.registry.Send(userID, domain.ErrorFrame{Error: "rate limit exceeded"})
			continue
		}

		if err := s.pipeline.HandleInbound(ctx, userID, payload); err != nil {
			log.Debug("Inbound message rejected", "error", err)
		}
	}
}
