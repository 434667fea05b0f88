package domain

import "context"

// Classifier is the classification port. Given bounded text it returns a
// ranked list of predictions; the relay performs its own top selection and
// makes no ordering assumption. Implementations may be slow; callers must
// not hold registry locks across a call.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Prediction, error)
}

// StatsRecorder records one classification outcome for aggregate counters.
// Recording is best-effort; failures never affect message routing.
type StatsRecorder interface {
	RecordClassification(ctx context.Context, label Label) error
}

// NopStatsRecorder discards all recordings. Used when no stats store is
// configured.
type NopStatsRecorder struct{}

func (NopStatsRecorder) RecordClassification(context.Context, Label) error { return nil }
