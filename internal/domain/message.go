package domain

import (
	"encoding/json"
	"strings"
)

// MaxMessageRunes bounds the text handed to the classifier. Longer inbound
// texts are truncated, never rejected.
const MaxMessageRunes = 512

// Inbound is one client frame as received over a connection. Transient:
// consumed during a single routing cycle.
//
// Message is a pointer so a frame without the key is distinguishable from
// one carrying an empty string. Timestamp is opaque to the relay and echoed
// back verbatim.
type Inbound struct {
	Message   *string         `json:"message"`
	Receiver  string          `json:"receiver,omitempty"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

// DecodeInbound parses a raw frame. It returns ErrMalformedPayload when the
// payload is not a JSON object or the message key is absent.
func DecodeInbound(raw []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return Inbound{}, ErrMalformedPayload
	}
	if in.Message == nil {
		return Inbound{}, ErrMalformedPayload
	}
	return in, nil
}

// Text returns the message text, or "" for a frame that never decoded one.
func (in Inbound) Text() string {
	if in.Message == nil {
		return ""
	}
	return *in.Message
}

// Empty reports whether the text is empty after trimming whitespace.
func (in Inbound) Empty() bool {
	return strings.TrimSpace(in.Text()) == ""
}

// TruncateText caps s at MaxMessageRunes runes. Counting runes rather than
// bytes keeps multi-byte characters whole.
func TruncateText(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxMessageRunes {
		return s
	}
	return string(runes[:MaxMessageRunes])
}

// EmotionFrame is the lightweight acknowledgement sent to the originating
// connection right after classification, before the routed message.
type EmotionFrame struct {
	Type    string  `json:"type"`
	Emotion Label   `json:"emotion"`
	Score   float64 `json:"score"`
}

// MessageFrame is the routed annotated message. Immutable once constructed;
// the same frame may be delivered to many connections.
type MessageFrame struct {
	Type      string          `json:"type"`
	Sender    string          `json:"sender"`
	Receiver  string          `json:"receiver,omitempty"`
	Message   string          `json:"message"`
	Emotion   Annotation      `json:"emotion"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

// ErrorFrame is sent to the originating connection only, on any pipeline
// failure. The connection itself stays open.
type ErrorFrame struct {
	Error string `json:"error"`
}

// NewEmotionFrame builds the classification acknowledgement frame.
func NewEmotionFrame(a Annotation) EmotionFrame {
	return EmotionFrame{Type: "emotion", Emotion: a.Label, Score: a.Score}
}

// NewMessageFrame builds the routed outbound frame, echoing sender,
// receiver, text and timestamp from the inbound message.
func NewMessageFrame(sender string, in Inbound, text string, a Annotation) MessageFrame {
	return MessageFrame{
		Type:      "message",
		Sender:    sender,
		Receiver:  in.Receiver,
		Message:   text,
		Emotion:   a,
		Timestamp: in.Timestamp,
	}
}
