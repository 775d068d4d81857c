package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// HTTP implements Fetcher over REST endpoints.
// Requests carry a JSON body when one is given and a bearer token whenever the
// configured token source has one.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "https://api.example.com")
	baseURL string
	// client is the underlying HTTP client with configured timeout
	client *http.Client
	// tokens supplies the bearer token; nil disables the Authorization header
	tokens oauth2.TokenSource
	// userAgent is sent with every request
	userAgent string
	log       zerolog.Logger
}

// HTTPOption configures an HTTP fetcher.
type HTTPOption func(*HTTP)

// WithTokenSource attaches the access token from ts to every request.
func WithTokenSource(ts oauth2.TokenSource) HTTPOption {
	return func(h *HTTP) { h.tokens = ts }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) { h.client.Timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(h *HTTP) { h.userAgent = ua }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) HTTPOption {
	return func(h *HTTP) { h.log = l }
}

// TokenSourceFunc adapts a function to oauth2.TokenSource.
type TokenSourceFunc func() (*oauth2.Token, error)

// Token calls f.
func (f TokenSourceFunc) Token() (*oauth2.Token, error) { return f() }

// NewHTTP creates a new HTTP fetcher with the given base URL.
// It configures a 10-second timeout for all requests unless overridden.
func NewHTTP(baseURL string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: "sessionctl/1.0",
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Fetch sends method+path with an optional JSON body and wraps the reply in a Response.
// Any 2xx status is ok. Non-JSON bodies are exposed as {"message": <text>}.
func (h *HTTP) Fetch(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	h.setStandardHeaders(req, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.tokens != nil {
		if tok, err := h.tokens.Token(); err == nil && tok != nil && tok.AccessToken != "" {
			tok.SetAuthHeader(req)
		}
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	h.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("request completed")

	return &Response{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
		Data:   normalizeBody(raw),
	}, nil
}

// setStandardHeaders adds headers sent with every request.
func (h *HTTP) setStandardHeaders(req *http.Request, requestID string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("X-Request-ID", requestID)
}

// normalizeBody keeps JSON bodies as-is and wraps plain text as a message payload.
func normalizeBody(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	b, _ := json.Marshal(map[string]string{"message": string(trimmed)})
	return b
}
