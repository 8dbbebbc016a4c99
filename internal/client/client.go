// Package client implements the tree API operations: fetching and resolving
// source references, managing source descriptions and notes, and fanning out
// over many URLs at once.
package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/pmorken/kinsource/internal/cache"
	"github.com/pmorken/kinsource/internal/model"
	"github.com/pmorken/kinsource/internal/transport"
)

// Client is the high-level tree API client
type Client struct {
	http    *transport.Client
	cache   cache.Cache
	baseURL string
	workers int
}

// New creates a client from configuration
func New(cfg *model.Config) (*Client, error) {
	httpClient, err := transport.New(transport.Config{
		AccessToken:       cfg.API.AccessToken,
		UserAgent:         cfg.API.UserAgent,
		Timeout:           cfg.HTTP.Timeout,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
		InsecureTLS:       cfg.HTTP.InsecureTLS,
		HTTPProxy:         cfg.HTTP.HTTPProxy,
		HTTPSProxy:        cfg.HTTP.HTTPSProxy,
		NoProxy:           cfg.HTTP.NoProxy,
		RequestsPerSecond: cfg.Rate.RequestsPerSecond,
		Burst:             cfg.Rate.Burst,
	})
	if err != nil {
		return nil, err
	}

	var responseCache cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			responseCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		} else {
			responseCache = cache.NewMemoryCache(cfg.Cache.MemoryTTL, cfg.Cache.MemoryTTL)
		}
	}

	workers := cfg.Concurrency.FetchWorkers
	if workers <= 0 {
		workers = 10
	}

	return &Client{
		http:    httpClient,
		cache:   responseCache,
		baseURL: strings.TrimSuffix(cfg.API.BaseURL, "/"),
		workers: workers,
	}, nil
}

// apiURL resolves a path or absolute URL against the configured base
func (c *Client) apiURL(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}
	return c.baseURL + "/" + strings.TrimPrefix(pathOrURL, "/")
}

// getEnvelope GETs a URL and decodes the envelope, serving repeated reads
// from the response cache when one is configured. Transport failures
// propagate unchanged.
func (c *Client) getEnvelope(ctx context.Context, rawURL string, params url.Values) (*model.Envelope, error) {
	cacheKey := rawURL
	if len(params) > 0 {
		cacheKey = rawURL + "?" + params.Encode()
	}

	if c.cache != nil {
		if body, found := c.cache.Get(cache.Key(cacheKey)); found {
			return model.ParseEnvelope(body)
		}
	}

	resp, err := c.http.Get(ctx, rawURL, params, nil)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(cache.Key(cacheKey), resp.Body, 0)
	}

	return resp.Data()
}
