// Package transport is the HTTP layer under the tree API client: header
// injection, throttling, bounded retries, and raw response handling. Nothing
// above it retries or translates transport failures.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/pmorken/kinsource/internal/worker"
)

const (
	maxRetries = 3

	// AcceptHeader is the media type the tree API speaks
	AcceptHeader = "application/x-fs-v1+json"
)

// sleepFunc is the sleep function used between retries (injectable for tests)
var sleepFunc = time.Sleep

// Config configures a transport client
type Config struct {
	AccessToken string
	UserAgent   string

	Timeout      time.Duration
	MaxBodyBytes int64
	InsecureTLS  bool

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string

	// RequestsPerSecond and Burst throttle per-host; zero disables throttling
	RequestsPerSecond float64
	Burst             int
}

// Client issues authenticated requests against the tree API
type Client struct {
	httpClient  *http.Client
	limiter     *worker.Limiter
	accessToken string
	userAgent   string
	maxBytes    int64
}

// New creates a transport client with a shared cookie jar
func New(cfg Config) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := &http.Transport{
		Proxy: newProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 4_000_000
	}

	var limiter *worker.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Jar:       jar,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		limiter:     limiter,
		accessToken: cfg.AccessToken,
		userAgent:   cfg.UserAgent,
		maxBytes:    maxBytes,
	}, nil
}

// Get issues a GET with retry on transient failures
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) (*Response, error) {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + params.Encode()
	}

	var resp *Response
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err = c.do(ctx, http.MethodGet, rawURL, nil, headers)
		if err == nil || !isRetryableError(err) {
			return resp, err
		}
		if attempt < maxRetries {
			sleepFunc(time.Duration(attempt) * time.Second)
		}
	}

	return resp, err
}

// Post issues a POST with a JSON-encoded payload. Not retried: the tree API's
// create and update operations are not idempotent.
func (c *Client) Post(ctx context.Context, rawURL string, payload interface{}, headers map[string]string) (*Response, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
	}
	return c.do(ctx, http.MethodPost, rawURL, body, headers)
}

// Del issues a DELETE
func (c *Client) Del(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, rawURL, nil, headers)
}

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte, headers map[string]string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", AcceptHeader)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", AcceptHeader)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	return &Response{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Body:       data,
		header:     resp.Header,
	}, nil
}

// isRetryableError reports whether a failed request is worth repeating:
// throttling, server-side errors, and connection-level failures are; client
// errors are not.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	if strings.Contains(msg, "unexpected status: 429") {
		return true
	}
	if strings.Contains(msg, "unexpected status: 5") {
		return true
	}
	if strings.Contains(msg, "request: ") &&
		(strings.Contains(msg, "connection refused") ||
			strings.Contains(msg, "connection reset") ||
			strings.Contains(msg, "EOF") ||
			strings.Contains(msg, "no such host")) {
		return true
	}

	return false
}

// newProxyFunc builds a proxy selector from explicit configuration, falling
// back to the standard environment variables
func newProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
