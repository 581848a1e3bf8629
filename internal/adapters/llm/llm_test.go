package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/orientbot/internal/domain/feedback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatReply writes a minimal chat completion carrying content.
func chatReply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
}

func apiError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": "boom", "type": "server_error"},
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	c, err := NewClient(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, defaultModel, c.Model())

	c, err = NewClient(Config{APIKey: "k", Model: "local-model"})
	require.NoError(t, err)
	assert.Equal(t, "local-model", c.Model())
}

func TestTranslatorDetect(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		format, _ := body["response_format"].(map[string]any)
		assert.Equal(t, "json_schema", format["type"])

		chatReply(w, `{"language":"FR"}`)
	})

	lang, err := NewTranslator(c).Detect(context.Background(), "très bien")
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)
}

func TestTranslatorTranslate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(w, `{"translation":"very good"}`)
	})

	out, err := NewTranslator(c).Translate(context.Background(), "très bien", "en")
	require.NoError(t, err)
	assert.Equal(t, "very good", out)
}

func TestScorerPolarity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(w, `{"polarity":-0.4}`)
	})

	p, err := NewScorer(c).Polarity(context.Background(), "not good")
	require.NoError(t, err)
	assert.InDelta(t, -0.4, p, 1e-9)
}

func TestSchemaViolation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"out of range", `{"polarity":3}`},
		{"wrong type", `{"polarity":"high"}`},
		{"missing field", `{}`},
		{"not json", `positive`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				chatReply(w, tt.content)
			})
			_, err := NewScorer(c).Polarity(context.Background(), "text")
			require.Error(t, err)
			assert.ErrorIs(t, err, feedback.ErrInvalidResponse)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, feedback.ErrRateLimited},
		{http.StatusInternalServerError, feedback.ErrUnavailable},
		{http.StatusServiceUnavailable, feedback.ErrUnavailable},
		{http.StatusBadRequest, feedback.ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				apiError(w, tt.status)
			})
			_, err := NewTranslator(c).Detect(context.Background(), "text")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestContextDeadline(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewScorer(c).Polarity(ctx, "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, feedback.KindTimeout, feedback.KindOf(err))
	assert.EqualValues(t, 1, calls.Load())
}

func TestSchemasCompile(t *testing.T) {
	for _, s := range []*schema{detectSchema, translateSchema, polaritySchema} {
		assert.NoError(t, s.validate(json.RawMessage(sampleFor(s.name))), s.name)
	}
}

func sampleFor(name string) string {
	switch name {
	case "language-detection":
		return `{"language":"en"}`
	case "translation":
		return `{"translation":"hello"}`
	default:
		return `{"polarity":0}`
	}
}
