package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/oneearth/internal/schema"
)

// Fetcher defines the metrics API surface used by the poller and the UI.
// This interface is implemented by *Client and can be used for testing.
type Fetcher interface {
	FetchLatest(ctx context.Context) (schema.LatestMetric, error)
	FetchSeries(ctx context.Context, days int) (schema.Series, error)
	FetchHello(ctx context.Context) (string, error)
	CheckHealth(ctx context.Context) error
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the One Earth metrics API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

const (
	defaultAPIOrigin = "127.0.0.1:8081"
	defaultUserAgent = "oneearth/dev"
	requestTimeout   = 10 * time.Second
	maxBodyBytes     = 4 << 20

	latestPath = "/api/metrics/co2"
	seriesPath = "/api/series/co2"
	helloPath  = "/api/hello"
	healthPath = "/health"
)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a Client for the given API origin ("host:port" or a full URL).
func NewClient(origin string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(origin)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Origin returns the normalized API origin.
func (c *Client) Origin() string {
	return c.baseURL.String()
}

// HealthURL returns the liveness endpoint, suitable for display as a link.
func (c *Client) HealthURL() string {
	return c.baseURL.ResolveReference(&url.URL{Path: healthPath}).String()
}

// FetchLatest retrieves the most recent CO2 reading.
func (c *Client) FetchLatest(ctx context.Context) (schema.LatestMetric, error) {
	if c == nil {
		return schema.LatestMetric{}, fmt.Errorf("client is nil")
	}
	const op = "fetch latest"
	raw, reqID, err := c.getJSON(ctx, op, &url.URL{Path: latestPath})
	if err != nil {
		return schema.LatestMetric{}, err
	}
	latest, err := schema.ValidateLatest(raw)
	if err != nil {
		return schema.LatestMetric{}, c.validationError(op, reqID, err)
	}
	return latest, nil
}

// FetchSeries retrieves the CO2 series covering the last days. The value is
// forwarded as-is; the server decides what to do with non-positive input.
func (c *Client) FetchSeries(ctx context.Context, days int) (schema.Series, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	const op = "fetch series"
	values := url.Values{}
	values.Set("days", strconv.Itoa(days))
	raw, reqID, err := c.getJSON(ctx, op, &url.URL{Path: seriesPath, RawQuery: values.Encode()})
	if err != nil {
		return nil, err
	}
	series, err := schema.ValidateSeries(raw)
	if err != nil {
		return nil, c.validationError(op, reqID, err)
	}
	return series, nil
}

// FetchHello retrieves the API greeting shown in the status banner.
func (c *Client) FetchHello(ctx context.Context) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	const op = "fetch hello"
	raw, reqID, err := c.getJSON(ctx, op, &url.URL{Path: helloPath})
	if err != nil {
		return "", err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return "", c.validationError(op, reqID, &schema.SchemaError{Reason: "expected object"})
	}
	msg, ok := obj["message"].(string)
	if !ok {
		return "", c.validationError(op, reqID, &schema.SchemaError{Path: "message", Reason: "expected string"})
	}
	return msg, nil
}

// CheckHealth reports whether the liveness endpoint answers with a 2xx status.
func (c *Client) CheckHealth(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	resp, reqID, err := c.send(ctx, "health check", &url.URL{Path: healthPath})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
	c.logger.Debug("health ok", zap.String("request_id", reqID))
	return nil
}

func (c *Client) getJSON(ctx context.Context, op string, rel *url.URL) (any, string, error) {
	resp, reqID, err := c.send(ctx, op, rel)
	if err != nil {
		return nil, reqID, err
	}
	defer func() { _ = resp.Body.Close() }()

	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, reqID, decodeError(op, rel, reqID, err)
	}
	var extra any
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after JSON value")
		}
		return nil, reqID, decodeError(op, rel, reqID, err)
	}
	return payload, reqID, nil
}

func decodeError(op string, rel *url.URL, reqID string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		URL:       rel.String(),
		RequestID: reqID,
		Err:       fmt.Errorf("decode response: %w", err),
	}
}

// send issues a GET and returns the response only for 2xx statuses.
func (c *Client) send(ctx context.Context, op string, rel *url.URL) (*http.Response, string, error) {
	reqID := uuid.NewString()
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, reqID, &NetworkError{Op: op, URL: rel.String(), RequestID: reqID, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", reqID)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("op", op),
			zap.String("request_id", reqID),
			zap.Error(err))
		return nil, reqID, &NetworkError{Op: op, URL: rel.String(), RequestID: reqID, Err: fmt.Errorf("execute request: %w", err)}
	}
	c.logger.Debug("request complete",
		zap.String("op", op),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, reqID, &NetworkError{Op: op, URL: rel.String(), StatusCode: resp.StatusCode, RequestID: reqID}
	}
	return resp, reqID, nil
}

func (c *Client) validationError(op, reqID string, err error) error {
	var schemaErr *schema.SchemaError
	if !errors.As(err, &schemaErr) {
		schemaErr = &schema.SchemaError{Reason: err.Error()}
	}
	c.logger.Warn("response failed validation",
		zap.String("op", op),
		zap.String("request_id", reqID),
		zap.String("path", schemaErr.Path),
		zap.String("reason", schemaErr.Reason))
	return &ValidationError{Op: op, RequestID: reqID, Err: schemaErr}
}

func parseBaseURL(origin string) (*url.URL, error) {
	trimmed := strings.TrimSpace(origin)
	if trimmed == "" {
		trimmed = defaultAPIOrigin
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api origin %q: %w", origin, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api origin %q: missing host", origin)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
