// Package api is the HTTP gateway to the products backend. It covers the
// login endpoint and the five product endpoints; every product request
// carries the current session token as a bearer token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/powervision/estoque/internal/domain"
	"github.com/powervision/estoque/internal/logging"
)

const requestIDHeader = "X-Request-Id"

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the bearer token. It is read once per request.
type TokenSource interface {
	Token() string
}

// Client talks to the products API rooted at serverURL.
type Client struct {
	client    httpClient
	serverURL url.URL
	tokens    TokenSource
	log       *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used when ctx carries none.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func NewClient(client httpClient, serverURL url.URL, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		client:    client,
		serverURL: serverURL,
		tokens:    tokens,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient returns the *http.Client used in production. A zero timeout
// means no timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// ParseBaseURL validates the configured API root.
func ParseBaseURL(raw string) (url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return url.URL{}, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return url.URL{}, fmt.Errorf("api url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return url.URL{}, fmt.Errorf("api url %q: missing host", raw)
	}
	return *u, nil
}

type messageResponse struct {
	Message json.RawMessage `json:"message"`
}

// do sends one request and returns the status and the raw body. Only
// transport and read failures are reported as errors; status handling is
// left to the caller.
func (c *Client) do(ctx context.Context, op, method string, u *url.URL, payload any, bearer bool) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, &domain.TransportError{Op: op, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, nil, &domain.TransportError{Op: op, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer {
		var token string
		if c.tokens != nil {
			token = c.tokens.Token()
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.logger(ctx).With(
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", u.Path),
		zap.String("request_id", reqID),
	)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn("api_request_failed", zap.Error(err), zap.Duration("latency", time.Since(start)))
		return 0, nil, &domain.TransportError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("api_response_read_failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return resp.StatusCode, nil, &domain.TransportError{Op: op, Err: err}
	}
	log.Debug("api_request", zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(start)))
	return resp.StatusCode, data, nil
}

func (c *Client) logger(ctx context.Context) *zap.Logger {
	// zap.NewNop reports every level as disabled.
	if l := logging.FromContext(ctx); l.Core().Enabled(zap.FatalLevel) {
		return l
	}
	return c.log
}

func isOK(status int) bool {
	return status >= 200 && status <= 299
}

// serverMessage extracts the message field from an error body. Validation
// errors may carry a list of messages, which are joined. Anything else
// yields "".
func serverMessage(body []byte) string {
	var m messageResponse
	if err := json.Unmarshal(body, &m); err != nil || len(m.Message) == 0 {
		return ""
	}
	var one string
	if err := json.Unmarshal(m.Message, &one); err == nil {
		return one
	}
	var many []string
	if err := json.Unmarshal(m.Message, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return ""
}
