// Package apiclient talks to the gallery REST backend. Every request carries
// the stored bearer token; a 401 triggers one token refresh and one retry.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"gallery-portal/internal/observability"
	"gallery-portal/internal/session"
)

const (
	instrumentationName = "gallery-portal/apiclient"
	defaultTimeout      = 30 * time.Second
	maxErrorBody        = 64 * 1024
)

// Backend endpoints
const (
	EndpointLogin        = "/api/auth/login"
	EndpointRegister     = "/api/auth/register"
	EndpointRefreshToken = "/api/auth/refresh-token"
	EndpointProtected    = "/api/auth/protected"
	EndpointLogout       = "/api/auth/logout"
	EndpointImages       = "/api/images"
	EndpointImageFiles   = "/api/images/file/"
	EndpointSearchText   = "/api/search/text"
	EndpointSearchImage  = "/api/search/image"
)

// Client is an authenticated client for one token store. Copies made with
// WithTokens share the transport and the refresh guard.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     session.TokenStore
	refreshes  *singleflight.Group
	logger     *observability.Logger
	tracer     trace.Tracer
	metrics    *clientMetrics
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger
func WithLogger(l *observability.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTracer sets the tracer used for client spans
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithMeter sets the meter used for refresh and latency instruments
func WithMeter(m metric.Meter) Option {
	return func(c *Client) { c.metrics = newClientMetrics(m) }
}

// WithTokenStore sets the token store
func WithTokenStore(s session.TokenStore) Option {
	return func(c *Client) { c.tokens = s }
}

// New creates a client for the backend at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		refreshes:  &singleflight.Group{},
		logger:     observability.NopLogger(),
		tracer:     otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = newClientMetrics(otel.Meter(instrumentationName))
	}
	if c.tokens == nil {
		c.tokens = session.NewStore(session.NewMemoryKV(0))
	}
	return c
}

// WithTokens returns a copy of the client bound to another token store
func (c *Client) WithTokens(store session.TokenStore) *Client {
	clone := *c
	clone.tokens = store
	return &clone
}

// Tokens returns the client's token store
func (c *Client) Tokens() session.TokenStore {
	return c.tokens
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOptions describes one backend call. Body is kept as bytes so that
// the request can be replayed after a refresh.
type RequestOptions struct {
	Method string
	Header http.Header
	Body   []byte

	// NoRetry skips the refresh-and-retry on 401
	NoRetry bool
}

// Request sends a request to endpoint (a path with optional query, relative
// to the base URL). Default headers are a bearer Authorization and a JSON
// Content-Type; caller headers replace them key by key. On a 401 the access
// token is refreshed once and the request re-sent once; that second response
// is returned whatever its status. Transport errors are returned unmodified.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (*http.Response, error) {
	access, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, endpoint, opts, access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || opts.NoRetry {
		return resp, nil
	}
	drain(resp)

	fresh, err := c.refreshAccessToken(ctx, access)
	if err != nil {
		return nil, err
	}

	retry := opts
	retry.Header = opts.Header.Clone()
	if retry.Header == nil {
		retry.Header = http.Header{}
	}
	retry.Header.Set("Authorization", bearer(fresh))

	return c.send(ctx, endpoint, retry, fresh)
}

func (c *Client) send(ctx context.Context, endpoint string, opts RequestOptions, access string) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", bearer(access))
	req.Header.Set("Content-Type", "application/json")
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return c.do(req)
}

// doJSON sends a request and decodes a 2xx JSON body into out
func (c *Client) doJSON(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	resp, err := c.Request(ctx, endpoint, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// checkResponse turns a non-2xx response into an *APIError using the
// backend's {"message": ...} body when present
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func jsonBody(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, nil
}

func bearer(token string) string {
	return "Bearer " + token
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
