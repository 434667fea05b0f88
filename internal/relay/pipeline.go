package relay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/emotewire/emotewire/internal/domain"
	"github.com/emotewire/emotewire/internal/metrics"
)

const statsTimeout = 2 * time.Second

// Pipeline processes inbound messages: validate, classify, annotate, route.
// One Pipeline instance is shared by all connection read loops.
type Pipeline struct {
	registry   *Registry
	classifier domain.Classifier
	stats      domain.StatsRecorder
}

// NewPipeline creates a pipeline routing through registry. stats may be
// domain.NopStatsRecorder when no stats store is configured.
func NewPipeline(registry *Registry, classifier domain.Classifier, stats domain.StatsRecorder) *Pipeline {
	return &Pipeline{
		registry:   registry,
		classifier: classifier,
		stats:      stats,
	}
}

// HandleInbound runs one raw client frame from senderID through the full
// pipeline. Failures are answered with an error frame to the sender only
// and never close the sender's connection; the returned error reports the
// same failure for logging. Delivery problems on recipients are isolated
// to those recipients and do not surface here.
func (p *Pipeline) HandleInbound(ctx context.Context, senderID string, raw []byte) error {
	in, err := domain.DecodeInbound(raw)
	if err != nil {
		return p.reject(senderID, "malformed", "invalid message payload", err)
	}

	if in.Empty() {
		return p.reject(senderID, "empty", "message cannot be empty", domain.ErrEmptyMessage)
	}

	// Classification never sees unbounded input.
	bounded := domain.TruncateText(in.Text())

	preds, err := p.classifier.Classify(ctx, bounded)
	if err != nil {
		return p.reject(senderID, "classification_unavailable", "failed to analyze emotion", err)
	}

	top, ok := domain.TopPrediction(preds)
	if !ok {
		return p.reject(senderID, "classification_unavailable", "failed to analyze emotion", domain.ErrClassificationUnavailable)
	}
	annotation := domain.Annotate(top)

	p.recordStats(annotation.Label)

	// Lightweight feedback to the sender, ahead of the routed message.
	p.registry.Send(senderID, domain.NewEmotionFrame(annotation))

	frame := domain.NewMessageFrame(senderID, in, in.Text(), annotation)

	if in.Receiver != "" {
		// Directed delivery is best-effort: an unknown receiver drops the
		// message silently.
		p.registry.Send(in.Receiver, frame)
	} else {
		p.registry.Broadcast(frame)
	}

	metrics.RelayMessagesTotal.WithLabelValues("routed").Inc()
	return nil
}

// reject answers the sender with an error frame and reports the outcome.
func (p *Pipeline) reject(senderID, outcome, message string, cause error) error {
	metrics.RelayMessagesTotal.WithLabelValues(outcome).Inc()
	p.registry.Send(senderID, domain.ErrorFrame{Error: message})
	if errors.Is(cause, domain.ErrClassificationUnavailable) || outcome == "classification_unavailable" {
		slog.Warn("Message rejected", "user_id", senderID, "outcome", outcome, "error", cause)
	}
	return cause
}

// recordStats counts the classification outcome, detached from the request
// so a slow stats store never delays routing.
func (p *Pipeline) recordStats(label domain.Label) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
		defer cancel()
		if err := p.stats.RecordClassification(ctx, label); err != nil {
			slog.Warn("Failed to record classification stats", "label", label, "error", err)
		}
	}()
}
