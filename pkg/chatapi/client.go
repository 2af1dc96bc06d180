// Package chatapi talks to the librarian backend over HTTP.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	HealthPath = "/api/health"
	ChatPath   = "/api/chat"

	DefaultBaseURL = "http://127.0.0.1:8000"
	userAgent      = "librarian-chat"
)

// Client is a minimal client for the librarian backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type ClientOption func(*Client) error

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client must not be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithTimeout sets the timeout of the default http client. A zero timeout means none.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d < 0 {
			return errors.Errorf("invalid timeout %s", d)
		}
		c.httpClient.Timeout = d
		return nil
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// NewClient creates a client for the backend at baseURL (e.g. "http://127.0.0.1:8000").
// An empty baseURL falls back to DefaultBaseURL.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, errors.Wrap(err, "failed to apply client option")
		}
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health queries the health endpoint with caching disabled. Non-2xx statuses, bodies
// that are not JSON and bodies without a count are all errors.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, HealthPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.do(req)
	if err != nil {
		return nil, errors.Wrap(err, "health request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("health endpoint returned status %d", resp.StatusCode)
	}

	var h HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, errors.Wrap(err, "failed to parse health response")
	}
	if h.Count == nil {
		return nil, errors.New("health response has no count")
	}
	return &h, nil
}

// Chat POSTs one message. Only transport failures are returned as errors: a non-2xx
// status is reported through ChatResult.StatusCode, and a body that cannot be read or
// is not a JSON object degrades to an empty ChatResponse. Fields of an unexpected type
// are dropped one by one.
func (c *Client) Chat(ctx context.Context, in ChatRequest) (*ChatResult, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode chat request")
	}
	req, err := c.newRequest(ctx, http.MethodPost, ChatPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, errors.Wrap(err, "chat request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	result := &ChatResult{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("failed to read chat response body")
		return result, nil
	}
	decoded, skipped, err := decodeChatResponse(body)
	if err != nil {
		c.logger.Debug().Err(err).Int("status", resp.StatusCode).Int("bytes", len(body)).Msg("chat response is not a JSON object")
		return result, nil
	}
	if len(skipped) > 0 {
		c.logger.Debug().Strs("fields", skipped).Msg("ignored chat response fields of unexpected type")
	}
	result.Body = decoded
	return result, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s %s request", method, path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := c.logger.With().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Logger()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("request failed")
		return nil, err
	}
	logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request done")
	return resp, nil
}
