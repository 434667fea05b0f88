// Package server implements the HTTP server using Echo framework.
//
// Routes: websocket relay (/ws/:user_id), stateless classification
// (/detect_emotion), stats (/api/stats), health, metrics, version.
// Handlers split by concern: handlers_ws.go, handlers_api.go,
// handlers_health.go.
package server
