package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/emotewire/emotewire/internal/domain"
	apperrors "github.com/emotewire/emotewire/internal/errors"
)

// detectEmotionRequest mirrors the single-shot classification contract.
// Unknown fields are rejected.
type detectEmotionRequest struct {
	Message  string `json:"message"`
	Sender   string `json:"sender,omitempty"`
	Receiver string `json:"receiver,omitempty"`
}

// detectEmotionResponse is the success payload of /detect_emotion.
type detectEmotionResponse struct {
	Emotion domain.Label `json:"emotion"`
	Emoji   string       `json:"emoji"`
	Score   float64      `json:"score"`
	Message string       `json:"message"`
}

func (s *Server) handleDetectEmotion(c echo.Context) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()

	var req detectEmotionRequest
	if err := decoder.Decode(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if strings.TrimSpace(req.Message) == "" {
		return apperrors.ValidationError("message cannot be empty")
	}

	bounded := domain.TruncateText(req.Message)

	preds, err := s.classifier.Classify(c.Request().Context(), bounded)
	if err != nil {
		return apperrors.UnavailableError("failed to analyze emotion", err)
	}

	top, ok := domain.TopPrediction(preds)
	if !ok {
		return apperrors.UnavailableError("failed to analyze emotion", domain.ErrClassificationUnavailable)
	}

	resp := detectEmotionResponse{
		Emotion: top.Label,
		Emoji:   top.Label.Emoji(),
		Score:   top.Score,
		Message: req.Message,
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleStats(c echo.Context) error {
	if s.stats == nil {
		return apperrors.NotFoundError("stats store not configured")
	}

	totals, err := s.stats.Totals(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to load stats", err)
	}

	if err := c.JSON(http.StatusOK, map[string]any{"totals": totals}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
