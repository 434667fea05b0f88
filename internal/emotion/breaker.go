package emotion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/emotewire/emotewire/internal/domain"
	"github.com/emotewire/emotewire/internal/metrics"
)

// BreakerClassifier wraps a classifier with a circuit breaker so a dead or
// slow classifier endpoint fails fast instead of stalling every pipeline.
// An open circuit reports domain.ErrClassificationUnavailable like any
// other classifier failure.
type BreakerClassifier struct {
	cb    *gobreaker.CircuitBreaker
	inner domain.Classifier
}

// NewBreakerClassifier wraps inner with a circuit breaker:
// trips at >=60% failures over at least 5 requests, stays open for 30s,
// allows 3 probe requests in half-open.
func NewBreakerClassifier(inner domain.Classifier) *BreakerClassifier {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "classifier",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				"component", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.CircuitBreakerStateChanges.WithLabelValues(name, to.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return &BreakerClassifier{cb: cb, inner: inner}
}

// Classify executes the wrapped classifier inside the breaker.
func (b *BreakerClassifier) Classify(ctx context.Context, text string) ([]domain.Prediction, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.inner.Classify(ctx, text)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("%w: %v", domain.ErrClassificationUnavailable, err)
		}
		return nil, err
	}
	return result.([]domain.Prediction), nil
}

// State returns the current breaker state.
func (b *BreakerClassifier) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
