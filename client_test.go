package graphstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("http://exa mple.com\x7f")
	assert.Error(t, err)
}

func TestClient_StreamEvents_RequestShape(t *testing.T) {
	type capturedRequest struct {
		method      string
		path        string
		contentType string
		accept      string
		auth        string
		body        []byte
	}
	var captured capturedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = capturedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			accept:      r.Header.Get("Accept"),
			auth:        r.Header.Get("Authorization"),
			body:        body,
		}
		_, _ = io.WriteString(w, `{"event":"end"}`+"\n")
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithBearerToken("secret-token"))
	require.NoError(t, err)

	req := &StreamRequest{
		Messages:     []StreamMessage{NewMessage(MessageHuman, "show me socks")},
		UserID:       "user-1",
		SessionID:    "session-1",
		MerchantID:   "merchant-1",
		MerchantType: "store",
	}

	events, err := client.StreamEvents(context.Background(), req)
	require.NoError(t, err)
	for range events {
	}

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/stream_events", captured.path)
	assert.Equal(t, "application/json", captured.contentType)
	assert.Equal(t, "text/event-stream", captured.accept)
	assert.Equal(t, "Bearer secret-token", captured.auth)

	// The payload travels under an "input" wrapper.
	var envelope struct {
		Input *StreamRequest `json:"input"`
	}
	require.NoError(t, json.Unmarshal(captured.body, &envelope))
	require.NotNil(t, envelope.Input)
	assert.Equal(t, "user-1", envelope.Input.UserID)
	assert.Equal(t, "session-1", envelope.Input.SessionID)
	assert.Equal(t, "merchant-1", envelope.Input.MerchantID)
	assert.Equal(t, "store", envelope.Input.MerchantType)
	require.Len(t, envelope.Input.Messages, 1)
	assert.Equal(t, "show me socks", envelope.Input.Messages[0].Content)
}

func TestClient_StreamEvents_NoTokenOmitsAuthHeader(t *testing.T) {
	var auth string
	var present bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, present = r.Header["Authorization"]
		_, _ = io.WriteString(w, `{"event":"end"}`+"\n")
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	events, err := client.StreamEvents(context.Background(), &StreamRequest{})
	require.NoError(t, err)
	for range events {
	}

	assert.Empty(t, auth)
	assert.False(t, present, "Authorization header must be absent, not empty")
}

func TestClient_StreamEvents_TokenAcrossTwoChunks(t *testing.T) {
	// The first chunk ends mid-line, inside a JSON string. The decoder
	// must hold it until the newline arrives in the second chunk.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"event":"on_chat_model_stream","data":{"chunk":{"content":"He`)
		w.(http.Flusher).Flush()
		_, _ = io.WriteString(w, `llo"}}}`+"\n"+`{"event":"end"}`+"\n")
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	events, err := client.StreamEvents(context.Background(), &StreamRequest{})
	require.NoError(t, err)

	var tokens []string
	completed := 0
	proc := NewProcessor(Callbacks{
		OnToken:    func(token string) { tokens = append(tokens, token) },
		OnComplete: func() { completed++ },
	})
	require.NoError(t, proc.Process(context.Background(), events))

	assert.Equal(t, []string{"Hello"}, tokens)
	assert.Equal(t, 1, completed)
	assert.Equal(t, RunStateCompleted, proc.State())
}

func TestClient_StreamEvents_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		sentinel   error
		retryable  bool
		authFailed bool
	}{
		{name: "bad request", status: http.StatusBadRequest, body: "invalid input"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: "missing token", sentinel: ErrUnauthorized, authFailed: true},
		{name: "forbidden", status: http.StatusForbidden, body: "denied", sentinel: ErrUnauthorized, authFailed: true},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "slow down", retryable: true},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", sentinel: ErrServerUnavailable, retryable: true},
		{name: "bad gateway", status: http.StatusBadGateway, body: "upstream down", sentinel: ErrServerUnavailable, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client, err := NewClient(server.URL)
			require.NoError(t, err)

			events, err := client.StreamEvents(context.Background(), &StreamRequest{})
			assert.Nil(t, events)
			require.Error(t, err)

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.status, te.StatusCode)
			assert.Equal(t, tt.body, te.Body)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			assert.Equal(t, tt.retryable, IsRetryable(err))
			assert.Equal(t, tt.authFailed, IsAuthError(err))
		})
	}
}

func TestClient_StreamEvents_MalformedLinesRecovered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"event":"metadata","run_id":"run-1"}`+"\n")
		_, _ = io.WriteString(w, "garbage that is not json\n")
		_, _ = io.WriteString(w, `{"event":"end"}`+"\n")
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	events, err := client.StreamEvents(context.Background(), &StreamRequest{})
	require.NoError(t, err)

	var tags []EventTag
	for ev := range events {
		tags = append(tags, ev.Event)
	}
	assert.Equal(t, []EventTag{EventMetadata, EventEnd}, tags)
}

func TestClient_LogFeedback(t *testing.T) {
	tests := []struct {
		name      string
		score     any
		wantScore any
	}{
		{name: "sad emoji", score: "😞", wantScore: float64(0)},
		{name: "frowning emoji", score: "🙁", wantScore: 0.25},
		{name: "neutral emoji", score: "😐", wantScore: 0.5},
		{name: "slight smile emoji", score: "🙂", wantScore: 0.75},
		{name: "grinning emoji", score: "😀", wantScore: 1.0},
		{name: "numeric score passes through", score: 42, wantScore: float64(42)},
		{name: "unmapped string passes through", score: "great", wantScore: "great"},
	}

	var payload map[string]any
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feedback := Feedback{"score": tt.score, "comment": "nice"}
			require.NoError(t, client.LogFeedback(context.Background(), feedback, "run-42"))

			assert.Equal(t, "/feedback", gotPath)
			assert.Equal(t, tt.wantScore, payload["score"])
			assert.Equal(t, "nice", payload["comment"])
			assert.Equal(t, "run-42", payload["run_id"])
			assert.Equal(t, "feedback", payload["log_type"])

			// The caller's map is left untouched.
			assert.Equal(t, tt.score, feedback["score"])
		})
	}
}

func TestClient_LogFeedback_ServerRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, "bad feedback")
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	err = client.LogFeedback(context.Background(), Feedback{"score": "🙂"}, "run-42")
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnprocessableEntity, te.StatusCode)
	assert.Equal(t, "bad feedback", te.Body)
}

func TestClient_ThreadState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/threads/thread-7", r.URL.Path)
		_, _ = io.WriteString(w, `[{"checkpoint":"1","values":{"step":"generate"}}]`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	state, err := client.ThreadState(context.Background(), "thread-7")
	require.NoError(t, err)
	require.Len(t, state, 1)
	assert.Equal(t, "1", state[0]["checkpoint"])
}

func TestClient_ThreadState_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such thread", http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.ThreadState(context.Background(), "missing")
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusNotFound, te.StatusCode)
}

func TestClient_EndpointJoinsBasePath(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"event":"end"}`+"\n")
	}))
	defer server.Close()

	client, err := NewClient(server.URL + "/api/v1/")
	require.NoError(t, err)

	events, err := client.StreamEvents(context.Background(), &StreamRequest{})
	require.NoError(t, err)
	for range events {
	}

	assert.Equal(t, "/api/v1/stream_events", gotPath)
}
