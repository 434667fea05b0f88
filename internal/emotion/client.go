package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/emotewire/emotewire/internal/domain"
	"github.com/emotewire/emotewire/internal/metrics"
)

const maxResponseBytes = 1 << 20

// HTTPClassifier calls a hosted inference endpoint that scores text against
// the emotion label set. The request body is {"inputs": text}; the response
// is a ranked list of {label, score} objects, optionally nested one level
// (the batch shape hosted inference APIs return for single inputs).
type HTTPClassifier struct {
	url    string
	token  string
	client *http.Client
}

// NewHTTPClassifier creates a classifier client. token may be empty for
// endpoints without authentication.
func NewHTTPClassifier(url, token string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	Inputs string `json:"inputs"`
}

// Classify sends text to the inference endpoint and returns its ranking.
// Any transport, decoding, or contract failure is reported as
// domain.ErrClassificationUnavailable so callers need a single check.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) ([]domain.Prediction, error) {
	start := time.Now()
	preds, err := c.classify(ctx, text)
	metrics.ClassificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ClassificationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrClassificationUnavailable, err)
	}
	metrics.ClassificationsTotal.WithLabelValues("ok").Inc()
	return preds, nil
}

func (c *HTTPClassifier) classify(ctx context.Context, text string) ([]domain.Prediction, error) {
	body, err := json.Marshal(classifyRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	preds, err := decodePredictions(data)
	if err != nil {
		return nil, err
	}
	return preds, validatePredictions(preds)
}

// decodePredictions accepts both the nested batch shape [[{label,score}]]
// and the flat shape [{label,score}].
func decodePredictions(data []byte) ([]domain.Prediction, error) {
	var nested [][]domain.Prediction
	if err := json.Unmarshal(data, &nested); err == nil {
		if len(nested) == 0 {
			return nil, fmt.Errorf("classifier returned empty batch")
		}
		return nested[0], nil
	}

	var flat []domain.Prediction
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode classifier response: %w", err)
	}
	return flat, nil
}

func validatePredictions(preds []domain.Prediction) error {
	if len(preds) == 0 {
		return fmt.Errorf("classifier returned no predictions")
	}
	for _, p := range preds {
		if p.Label == "" {
			return fmt.Errorf("classifier returned prediction without label")
		}
		if p.Score < 0 || p.Score > 1 {
			return fmt.Errorf("classifier returned score %v outside [0,1]", p.Score)
		}
	}
	return nil
}
