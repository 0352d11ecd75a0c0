package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/shared"
)

// newTestClient points a client at the given test server with fast retries.
func newTestClient(srv *httptest.Server) *Client {
	cfg := DefaultClientConfig("test-key")
	cfg.BaseURL = srv.URL
	cfg.RetryConfig.InitialDelay = time.Millisecond
	cfg.RetryConfig.MaxDelay = 5 * time.Millisecond
	return NewClient(cfg)
}

func candidateJSON(text string) string {
	return `{"candidates":[{"content":{"role":"model","parts":[{"text":` + mustJSON(text) + `}]},"finishReason":"STOP"}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestClient_Generate_Success(t *testing.T) {
	var captured generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-1.5-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(candidateJSON("Hey! Bitcoin is a decentralized currency.")))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	reply, err := client.Generate(context.Background(), "You are Ayaka, a friendly study buddy.", []Turn{
		{Role: RoleUser, Text: "what is bitcoin?"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Hey! Bitcoin is a decentralized currency.", reply)

	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "You are Ayaka, a friendly study buddy.", captured.SystemInstruction.Parts[0].Text)
	require.Len(t, captured.Contents, 1)
	assert.Equal(t, RoleUser, captured.Contents[0].Role)
	assert.Equal(t, "what is bitcoin?", captured.Contents[0].Parts[0].Text)
	assert.InDelta(t, 0.7, captured.GenerationConfig.Temperature, 1e-9)
	assert.Equal(t, 1000, captured.GenerationConfig.MaxOutputTokens)
}

func TestClient_Generate_TranscriptOrderPreserved(t *testing.T) {
	var captured generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(candidateJSON("ok")))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	_, err := client.Generate(context.Background(), "", []Turn{
		{Role: RoleUser, Text: "first"},
		{Role: RoleModel, Text: "second"},
		{Role: RoleUser, Text: "third"},
	})

	require.NoError(t, err)
	assert.Nil(t, captured.SystemInstruction)
	require.Len(t, captured.Contents, 3)
	assert.Equal(t, "first", captured.Contents[0].Parts[0].Text)
	assert.Equal(t, RoleModel, captured.Contents[1].Role)
	assert.Equal(t, "third", captured.Contents[2].Parts[0].Text)
}

func TestClient_Generate_EmptyTranscript(t *testing.T) {
	client := NewClient(DefaultClientConfig("test-key"))

	_, err := client.Generate(context.Background(), "persona", nil)

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestClient_Generate_MultiPartCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"part one "},{"text":"part two"}]}}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	reply, err := client.Generate(context.Background(), "", []Turn{{Text: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "part one part two", reply)
}

func TestClient_Generate_BlockedPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	_, err := client.Generate(context.Background(), "", []Turn{{Text: "hi"}})

	assert.ErrorIs(t, err, ErrBlocked)
}

func TestClient_Generate_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	_, err := client.Generate(context.Background(), "", []Turn{{Text: "hi"}})

	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClient_Generate_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":500,"status":"INTERNAL","message":"backend overloaded"}}`))
			return
		}
		w.Write([]byte(candidateJSON("recovered")))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	reply, err := client.Generate(context.Background(), "", []Turn{{Text: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Generate_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"bad request"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	_, err := client.Generate(context.Background(), "", []Turn{{Text: "hi"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrExternalService)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_IsRetryable(t *testing.T) {
	client := NewClient(DefaultClientConfig("test-key"))

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", &RateLimitError{RetryAfter: time.Minute, Message: "slow down"}, true},
		{"server error", &APIError{StatusCode: 503, Status: "UNAVAILABLE"}, true},
		{"client error", &APIError{StatusCode: 400, Status: "INVALID_ARGUMENT"}, false},
		{"network timeout", errors.New("dial tcp: i/o timeout"), true},
		{"unrelated", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.isRetryable(tt.err))
		})
	}
}
