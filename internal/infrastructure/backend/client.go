package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/papermill/portal/internal/infrastructure/logger"
)

// CallRecorder observes every backend call. The telemetry package
// implements it to feed the backend request metrics.
type CallRecorder interface {
	RecordBackendCall(ctx context.Context, method, route string, status int, duration time.Duration)
}

// Client is a typed client for the ERP backend REST API. It carries no
// session state of its own: the signed-in user's token travels in the
// request context (see WithToken).
type Client struct {
	cfg        Config
	httpClient *http.Client
	endpoints  Endpoints
	recorder   CallRecorder
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRecorder registers a call recorder
func WithRecorder(r CallRecorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithLogger sets the fallback logger used when the context carries none
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a backend client
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	c := &Client{
		cfg:       cfg,
		endpoints: NewEndpoints(cfg.BaseURL),
		logger:    zap.NewNop(),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoints exposes the URL builder, mainly for tests and links
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// do performs a request and returns the raw body of a 2xx response.
// Non-2xx responses become *APIError; transport failures wrap
// ErrBackendUnreachable. Requests are never retried.
func (c *Client) do(ctx context.Context, method, rawURL string, body any) ([]byte, http.Header, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.SkipBrowserWarning {
		req.Header.Set("ngrok-skip-browser-warning", "true")
	}
	if tok := TokenFromContext(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if rid := logger.GetRequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	route := routeOf(req.URL)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.record(ctx, method, route, 0, elapsed)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		c.log(ctx).Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", route),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, nil, fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()
	c.record(ctx, method, route, resp.StatusCode, elapsed)

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxResponseBytes+1))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read response: %v", ErrBackendUnreachable, err)
	}
	if int64(len(data)) > c.cfg.MaxResponseBytes {
		c.log(ctx).Warn("backend response exceeds limit",
			zap.String("method", method),
			zap.String("path", route),
			zap.Int64("limit", c.cfg.MaxResponseBytes),
		)
		return nil, nil, fmt.Errorf("%w: %s %s over %d bytes", ErrResponseTooLarge, method, route, c.cfg.MaxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Message: ParseErrorMessage(resp.StatusCode, data),
			Method:  method,
			Path:    route,
		}
		c.log(ctx).Info("backend returned error",
			zap.String("method", method),
			zap.String("path", route),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return nil, resp.Header, apiErr
	}

	c.log(ctx).Debug("backend request",
		zap.String("method", method),
		zap.String("path", route),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed),
	)
	return data, resp.Header, nil
}

func (c *Client) record(ctx context.Context, method, route string, status int, d time.Duration) {
	if c.recorder != nil {
		c.recorder.RecordBackendCall(ctx, method, route, status, d)
	}
}

func (c *Client) log(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(logger.LoggerKey).(*zap.Logger); ok {
		return l
	}
	return c.logger
}

// routeOf strips the query so that metrics and logs stay low-cardinality
// on query values; ids in the path remain.
func routeOf(u *url.URL) string {
	return u.EscapedPath()
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	data, _, err := c.do(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	return decode(data, out)
}

func (c *Client) sendJSON(ctx context.Context, method, rawURL string, in, out any) error {
	data, _, err := c.do(ctx, method, rawURL, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(data, out)
}

func (c *Client) delete(ctx context.Context, rawURL string) error {
	_, _, err := c.do(ctx, http.MethodDelete, rawURL, nil)
	return err
}

func decode(data []byte, out any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// listEnvelopeKeys are the wrapper fields list endpoints may use instead of
// returning a bare array
var listEnvelopeKeys = []string{"items", "data", "results"}

// decodeList accepts either a bare JSON array or an object wrapping the
// array under one of listEnvelopeKeys.
func decodeList[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("%w: list: %v", ErrMalformedResponse, err)
		}
		return out, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrMalformedResponse, err)
	}
	for _, key := range listEnvelopeKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("%w: list %q: %v", ErrMalformedResponse, key, err)
		}
		if out == nil {
			out = []T{}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: no array in list response", ErrMalformedResponse)
}

func getList[T any](ctx context.Context, c *Client, rawURL string) ([]T, error) {
	data, _, err := c.do(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[T](data)
}

// GetBinary fetches a non-JSON payload such as a backend-rendered PDF
func (c *Client) GetBinary(ctx context.Context, rawURL string) ([]byte, string, error) {
	data, header, err := c.do(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	return data, header.Get("Content-Type"), nil
}

// Ping checks that the backend answers its health endpoint
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodGet, c.endpoints.Health(), nil)
	return err
}
