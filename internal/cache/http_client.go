package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"semperland-cache/internal/observability"
)

// DefaultTimeout bounds one request at the transport level.
const DefaultTimeout = 30 * time.Second

// HTTPClient implements Client over HTTP GET + JSON.
// It holds no mutable state and is safe for concurrent use.
type HTTPClient struct {
	baseEndpoint string
	client       *http.Client
	metrics      *observability.Metrics
	logger       *log.Logger
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithMetrics records one observation per request.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

// WithLogger logs one line per request.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// NewHTTPClient creates a client for the cache at baseEndpoint.
// Trailing slashes are stripped; the endpoint is not otherwise validated.
func NewHTTPClient(baseEndpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseEndpoint: strings.TrimRight(baseEndpoint, "/"),
		client:       &http.Client{Timeout: DefaultTimeout},
		logger:       log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseEndpoint returns the endpoint requests are built on.
func (c *HTTPClient) BaseEndpoint() string {
	return c.baseEndpoint
}

// queryParam is one key=value pair of a query string.
type queryParam struct {
	key   string
	value string
}

// buildURL joins the base endpoint, an already templated path and the query.
// Only the query is escaped; path segments are substituted verbatim.
func (c *HTTPClient) buildURL(path string, params []queryParam) string {
	fullURL := c.baseEndpoint + path
	if len(params) == 0 {
		return fullURL
	}

	pairs := make([]string, len(params))
	for i, p := range params {
		pairs[i] = escapeDataString(p.key) + "=" + escapeDataString(p.value)
	}
	return fullURL + "?" + strings.Join(pairs, "&")
}

// escapeDataString percent-encodes everything but RFC 3986 unreserved
// characters. Spaces become %20, never '+'.
func escapeDataString(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// get performs one GET against fullURL and decodes a 200 body into T.
func get[T any](ctx context.Context, c *HTTPClient, endpoint, fullURL string) (*T, error) {
	start := time.Now()
	result, err := doGet[T](ctx, c, fullURL)

	outcome := observability.OutcomeOK
	if err != nil {
		outcome = KindOf(err).String()
		c.logger.Printf("GET %s failed: %v", fullURL, err)
	} else {
		c.logger.Printf("GET %s ok (%s)", fullURL, time.Since(start))
	}
	c.metrics.RecordRequest(endpoint, outcome, time.Since(start))

	return result, err
}

func doGet[T any](ctx context.Context, c *HTTPClient, fullURL string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrUnreachable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &UnexpectedStatusError{Code: resp.StatusCode, URL: fullURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUnreachable, err)
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return &result, nil
}
