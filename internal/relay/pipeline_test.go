package relay

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emotewire/emotewire/internal/domain"
)

// --- Mocks ---

type mockClassifier struct {
	mu     sync.Mutex
	preds  []domain.Prediction
	err    error
	inputs []string
}

func (m *mockClassifier) Classify(ctx context.Context, text string) ([]domain.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, text)
	return m.preds, m.err
}

func (m *mockClassifier) capturedInputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inputs...)
}

type statsCall struct {
	label domain.Label
}

type mockStats struct {
	mu    sync.Mutex
	calls []statsCall
}

func (m *mockStats) RecordClassification(ctx context.Context, label domain.Label) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, statsCall{label: label})
	return nil
}

func testPipeline(t *testing.T, classifier domain.Classifier) (*Pipeline, *Registry, func(userID string) *ws.Conn) {
	t.Helper()
	registry, dial := testRegistry(t)
	pipeline := NewPipeline(registry, classifier, domain.NopStatsRecorder{})
	return pipeline, registry, dial
}

func TestPipeline_DirectedDelivery(t *testing.T) {
	classifier := &mockClassifier{preds: []domain.Prediction{
		{Label: domain.LabelJoy, Score: 0.91},
		{Label: domain.LabelNeutral, Score: 0.05},
	}}
	pipeline, registry, dial := testPipeline(t, classifier)

	connA := dial("A")
	connB := dial("B")
	connC := dial("C")
	require.True(t, waitForClientCount(registry, 3))

	err := pipeline.HandleInbound(context.Background(), "A", []byte(`{"message":"I love this!","receiver":"B"}`))
	require.NoError(t, err)

	// Sender gets the lightweight acknowledgement first.
	ack := readJSON(t, connA)
	assert.Equal(t, "emotion", ack["type"])
	assert.Equal(t, "joy", ack["emotion"])
	assert.InDelta(t, 0.91, ack["score"], 1e-9)

	// Receiver gets the routed annotated message.
	msg := readJSON(t, connB)
	assert.Equal(t, "message", msg["type"])
	assert.Equal(t, "A", msg["sender"])
	assert.Equal(t, "B", msg["receiver"])
	assert.Equal(t, "I love this!", msg["message"])
	emotion := msg["emotion"].(map[string]any)
	assert.Equal(t, "joy", emotion["label"])
	assert.InDelta(t, 0.91, emotion["score"], 1e-9)
	assert.Equal(t, "😊", emotion["emoji"])

	// Nobody else receives anything, the sender included.
	assertNoFrame(t, connA)
	assertNoFrame(t, connC)
}

func TestPipeline_BroadcastIncludesSender(t *testing.T) {
	classifier := &mockClassifier{preds: []domain.Prediction{{Label: domain.LabelSurprise, Score: 0.7}}}
	pipeline, registry, dial := testPipeline(t, classifier)

	connA := dial("A")
	connB := dial("B")
	connC := dial("C")
	require.True(t, waitForClientCount(registry, 3))

	err := pipeline.HandleInbound(context.Background(), "A", []byte(`{"message":"whoa"}`))
	require.NoError(t, err)

	// Sender: ack first, then its own copy of the broadcast.
	ack := readJSON(t, connA)
	assert.Equal(t, "emotion", ack["type"])

	for _, conn := range []*ws.Conn{connA, connB, connC} {
		msg := readJSON(t, conn)
		assert.Equal(t, "message", msg["type"])
		assert.Equal(t, "A", msg["sender"])
		assert.Equal(t, "whoa", msg["message"])
		assert.NotContains(t, msg, "receiver")
	}

	assertNoFrame(t, connB)
}

func TestPipeline_UnknownReceiverDropsSilently(t *testing.T) {
	classifier := &mockClassifier{preds: []domain.Prediction{{Label: domain.LabelNeutral, Score: 0.6}}}
	pipeline, registry, dial := testPipeline(t, classifier)

	connA := dial("A")
	connB := dial("B")
	require.True(t, waitForClientCount(registry, 2))

	err := pipeline.HandleInbound(context.Background(), "A", []byte(`{"message":"anyone?","receiver":"ghost"}`))
	require.NoError(t, err)

	// The ack still arrives; no error frame follows.
	ack := readJSON(t, connA)
	assert.Equal(t, "emotion", ack["type"])
	assertNoFrame(t, connA)
	assertNoFrame(t, connB)
}

func TestPipeline_EmptyMessageRejected(t *testing.T) {
	for _, text := range []string{"", "   "} {
		t.Run("text="+text, func(t *testing.T) {
			classifier := &mockClassifier{preds: []domain.Prediction{{Label: domain.LabelJoy, Score: 1}}}
			pipeline, registry, dial := testPipeline(t, classifier)

			connA := dial("A")
			connB := dial("B")
			require.True(t, waitForClientCount(registry, 2))

			raw := []byte(`{"message":"` + text + `"}`)
			err := pipeline.HandleInbound(context.Background(), "A", raw)
			assert.ErrorIs(t, err, domain.ErrEmptyMessage)

			frame := readJSON(t, connA)
			assert.Equal(t, "message cannot be empty", frame["error"])

			// No classification, no routing side effects.
			assert.Empty(t, classifier.capturedInputs())
			assertNoFrame(t, connB)
		})
	}
}

func TestPipeline_MalformedPayloadRejected(t *testing.T) {
	cases := map[string]string{
		"not json":    `{{{`,
		"missing key": `{"receiver":"B"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			classifier := &mockClassifier{preds: []domain.Prediction{{Label: domain.LabelJoy, Score: 1}}}
			pipeline, registry, dial := testPipeline(t, classifier)

			connA := dial("A")
			connB := dial("B")
			require.True(t, waitForClientCount(registry, 2))

			err := pipeline.HandleInbound(context.Background(), "A", []byte(raw))
			assert.ErrorIs(t, err, domain.ErrMalformedPayload)

			frame := readJSON(t, connA)
			assert.Equal(t, "invalid message payload", frame["error"])
			assert.Empty(t, classifier.capturedInputs())
			assertNoFrame(t, connB)
		})
	}
}

func TestPipeline_TruncatesBeforeClassification(t *testing.T) {
	classifier := &mockClassifier{preds: []domain.Prediction{{Label: domain.LabelFear, Score: 0.8}}}
	pipeline, registry, dial := testPipeline(t, classifier)

	connA := dial("A")
	require.True(t, waitForClientCount(registry, 1))

	// Multi-byte runes so rune and byte counts diverge.
	long := strings.Repeat("ü", 600)
	err := pipeline.HandleInbound(context.Background(), "A", []byte(`{"message":"`+long+`"}`))
	require.NoError(t, err)

	inputs := classifier.capturedInputs()
	require.Len(t, inputs, 1)
	assert.Equal(t, 512, utf8.RuneCountInString(inputs[0]))

	// The routed message still carries the full original text.
	readJSON(t, connA) // ack
	msg := readJSON(t, connA)
	assert.Equal(t, long, msg["message"])
}

func TestPipeline_TieBreakIsStable(t *testing.T) {
	classifier := &mockClassifier{preds: []domain.Prediction{
		{Label: domain.LabelSadness, Score: 0.5},
		{Label: domain.LabelJoy, Score: 0.5},
	}}
	pipeline, registry, dial := testPipeline(t, classifier)

	connA := dial("A")
	require.True(t, waitForClientCount(registry, 1))

	err := pipeline.HandleInbound(context.Background(), "A", []byte(`{"message":"hm"}`))
	require.NoError(t, err)

	ack := readJSON(t, connA)
	assert.Equal(t, "sadness", ack["emotion"])
}

func TestPipeline_ClassifierFailure(t *testing.T) {
	classifier := &mockClassifier{err: domain.ErrClassificationUnavailable}
	pipeline, registry, dial := testPipeline(t, classifier)

	connA := dial("A")
	connB := dial("B")
	require.True(t, waitForClientCount(registry, 2))

	err := pipeline.HandleInbound(context.Background(), "A", []byte(`{"message":"hi"}`))
	assert.ErrorIs(t, err, domain.ErrClassificationUnavailable)

	frame := readJSON(t, connA)
	assert.Equal(t, "failed to analyze emotion", frame["error"])
	assertNoFrame(t, connB)
}

func TestPipeline_EmptyRankingRejected(t *testing.T) {
	classifier := &mockClassifier{preds: nil}
	pipeline, registry, dial := testPipeline(t, classifier)

	connA := dial("A")
	require.True(t, waitForClientCount(registry, 1))

	err := pipeline.HandleInbound(context.Background(), "A", []byte(`{"message":"hi"}`))
	assert.ErrorIs(t, err, domain.ErrClassificationUnavailable)

	frame := readJSON(t, connA)
	assert.Equal(t, "failed to analyze emotion", frame["error"])
}

func TestPipeline_TimestampEchoedVerbatim(t *testing.T) {
	classifier := &mockClassifier{preds: []domain.Prediction{{Label: domain.LabelJoy, Score: 0.9}}}
	pipeline, registry, dial := testPipeline(t, classifier)

	connA := dial("A")
	require.True(t, waitForClientCount(registry, 1))

	err := pipeline.HandleInbound(context.Background(), "A", []byte(`{"message":"hi","timestamp":"2024-01-01T00:00:00Z"}`))
	require.NoError(t, err)

	readJSON(t, connA) // ack
	msg := readJSON(t, connA)
	assert.Equal(t, "2024-01-01T00:00:00Z", msg["timestamp"])
}

func TestPipeline_RecordsStats(t *testing.T) {
	classifier := &mockClassifier{preds: []domain.Prediction{{Label: domain.LabelJoy, Score: 0.9}}}
	registry, dial := testRegistry(t)
	stats := &mockStats{}
	pipeline := NewPipeline(registry, classifier, stats)

	dial("A")
	require.True(t, waitForClientCount(registry, 1))

	err := pipeline.HandleInbound(context.Background(), "A", []byte(`{"message":"hi"}`))
	require.NoError(t, err)

	// Stats recording is detached; poll for it.
	assert.Eventually(t, func() bool {
		stats.mu.Lock()
		defer stats.mu.Unlock()
		return len(stats.calls) == 1 && stats.calls[0].label == domain.LabelJoy
	}, 2*time.Second, 10*time.Millisecond)
}
