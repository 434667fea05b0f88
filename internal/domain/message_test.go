package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	t.Run("full frame", func(t *testing.T) {
		in, err := DecodeInbound([]byte(`{"message":"hi","receiver":"bob","timestamp":1234}`))
		require.NoError(t, err)
		assert.Equal(t, "hi", in.Text())
		assert.Equal(t, "bob", in.Receiver)
		assert.Equal(t, "1234", string(in.Timestamp))
	})

	t.Run("message only", func(t *testing.T) {
		in, err := DecodeInbound([]byte(`{"message":"hi"}`))
		require.NoError(t, err)
		assert.Empty(t, in.Receiver)
		assert.Empty(t, in.Timestamp)
	})

	t.Run("missing message key", func(t *testing.T) {
		_, err := DecodeInbound([]byte(`{"receiver":"bob"}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := DecodeInbound([]byte(`nope`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("empty string decodes", func(t *testing.T) {
		// An empty message is a validation failure, not a decode failure.
		in, err := DecodeInbound([]byte(`{"message":""}`))
		require.NoError(t, err)
		assert.True(t, in.Empty())
	})
}

func TestInboundEmpty(t *testing.T) {
	msg := "  \t "
	in := Inbound{Message: &msg}
	assert.True(t, in.Empty())

	msg2 := " x "
	in2 := Inbound{Message: &msg2}
	assert.False(t, in2.Empty())
}

func TestTruncateText(t *testing.T) {
	t.Run("short text untouched", func(t *testing.T) {
		assert.Equal(t, "hello", TruncateText("hello"))
	})

	t.Run("exact limit untouched", func(t *testing.T) {
		s := strings.Repeat("a", MaxMessageRunes)
		assert.Equal(t, s, TruncateText(s))
	})

	t.Run("truncates by rune", func(t *testing.T) {
		s := strings.Repeat("é", MaxMessageRunes+100)
		got := TruncateText(s)
		assert.Equal(t, MaxMessageRunes, utf8.RuneCountInString(got))
		assert.True(t, utf8.ValidString(got))
	})
}

func TestNewMessageFrame(t *testing.T) {
	msg := "hello"
	in := Inbound{Message: &msg, Receiver: "bob", Timestamp: []byte(`"now"`)}
	a := Annotate(Prediction{Label: LabelJoy, Score: 0.9})

	frame := NewMessageFrame("alice", in, msg, a)
	assert.Equal(t, "message", frame.Type)
	assert.Equal(t, "alice", frame.Sender)
	assert.Equal(t, "bob", frame.Receiver)
	assert.Equal(t, "hello", frame.Message)
	assert.Equal(t, a, frame.Emotion)
	assert.Equal(t, `"now"`, string(frame.Timestamp))
}
