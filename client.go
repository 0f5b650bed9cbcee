package graphstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"go.uber.org/zap"
)

// Client is an HTTP client for the graph execution server.
// It issues the streaming request, validates the response status, and
// hands the chunked body to the Decoder.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
	logger     *zap.Logger
}

// ClientOption is a function for configuring the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the HTTP client timeout. The default is no timeout:
// a streaming response stays open as long as the server keeps sending,
// bounded only by the caller's context.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBearerToken sets the bearer token attached to every request.
// Without it the Authorization header is omitted entirely.
func WithBearerToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger for decode-and-skip and best-effort paths
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the graph server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("graphstream: invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StreamRequest is the payload of one conversation turn submission.
type StreamRequest struct {
	Messages     []StreamMessage `json:"messages"`
	UserID       string          `json:"user_id"`
	SessionID    string          `json:"session_id"`
	MerchantID   string          `json:"merchant_id"`
	MerchantType string          `json:"merchant_type"`
}

// streamEnvelope is the wire wrapper around the request payload.
type streamEnvelope struct {
	Input *StreamRequest `json:"input"`
}

// Streamer produces an ordered event stream for a submitted turn.
// Implemented by Client (HTTP) and by mock sources such as sources/lorem,
// so the Processor can consume either.
type Streamer interface {
	StreamEvents(ctx context.Context, req *StreamRequest) (<-chan StreamEvent, error)
}

var _ Streamer = (*Client)(nil)

// StreamEvents submits a turn to the stream_events endpoint and returns
// the ordered event channel decoded from the chunked response body.
//
// A non-success status fails with a *TransportError carrying the status
// code and body text; no events are produced. On success a producer
// goroutine decodes the body until end-of-stream or ctx cancellation,
// then closes the channel and releases the connection. There are no
// retries.
func (c *Client) StreamEvents(ctx context.Context, req *StreamRequest) (<-chan StreamEvent, error) {
	body, err := json.Marshal(streamEnvelope{Input: req})
	if err != nil {
		return nil, fmt.Errorf("graphstream: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("stream_events"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("graphstream: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("graphstream: performing request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			msg = []byte(fmt.Sprintf("<unreadable body: %v>", readErr))
		}
		return nil, newTransportError(resp.StatusCode, string(msg))
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, ErrMissingBody
	}

	events := make(chan StreamEvent, 10) // Buffered to prevent blocking
	dec := NewDecoder(resp.Body, WithDecoderLogger(c.logger))

	go func() {
		defer close(events)
		defer resp.Body.Close()

		for {
			ev, err := dec.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
					c.logger.Warn("stream read failed", zap.Error(err))
				}
				return
			}

			select {
			case <-ctx.Done():
				return
			case events <- *ev:
			}
		}
	}()

	return events, nil
}

// Feedback is the caller-supplied feedback payload. Its fields are spread
// into the request body as-is, alongside the score, run id and log type.
type Feedback map[string]any

// feedbackScores maps emoji score tokens to numeric scores.
var feedbackScores = map[string]float64{
	"😞": 0.0,
	"🙁": 0.25,
	"😐": 0.5,
	"🙂": 0.75,
	"😀": 1.0,
}

// LogFeedback submits run feedback to the feedback endpoint. An emoji
// score token is mapped to its numeric score before sending; any other
// score value passes through unchanged. The run id and a constant
// log_type tag are always attached.
//
// Feedback is best-effort: callers that do not care about delivery may
// discard the returned error.
func (c *Client) LogFeedback(ctx context.Context, feedback Feedback, runID string) error {
	payload := make(map[string]any, len(feedback)+2)
	for k, v := range feedback {
		payload[k] = v
	}
	if score, ok := payload["score"].(string); ok {
		if mapped, ok := feedbackScores[score]; ok {
			payload["score"] = mapped
		}
	}
	payload["run_id"] = runID
	payload["log_type"] = "feedback"

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("graphstream: marshaling feedback: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("feedback"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("graphstream: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("feedback submission failed", zap.Error(err))
		return fmt.Errorf("graphstream: performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		terr := newTransportError(resp.StatusCode, string(msg))
		c.logger.Warn("feedback submission rejected", zap.Error(terr))
		return terr
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// ThreadState fetches the raw state records of a thread. The records are
// returned as-is; this client treats the endpoint as a read-only probe.
func (c *Client) ThreadState(ctx context.Context, threadID string) ([]map[string]any, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("threads", threadID), nil)
	if err != nil {
		return nil, fmt.Errorf("graphstream: creating request: %w", err)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("graphstream: performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return nil, newTransportError(resp.StatusCode, string(msg))
	}

	var state []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("graphstream: decoding thread state: %w", err)
	}
	return state, nil
}

// endpoint resolves a path relative to the configured base URL.
func (c *Client) endpoint(parts ...string) string {
	u := *c.baseURL
	u.Path = path.Join(append([]string{u.Path}, parts...)...)
	return u.String()
}
