// Package gw2api is a small client for the Guild Wars 2 web API
// (https://api.guildwars2.com/v2) with a memory and disk response cache.
package gw2api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fortio.org/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL = "https://api.guildwars2.com/v2/"
	// DefaultTTL is how long responses are cached unless a call says otherwise.
	DefaultTTL = 24 * time.Hour
)

var (
	// ErrAuthRequired is returned for endpoints that need an API key when none is set.
	ErrAuthRequired = errors.New("an api key is required for this endpoint")
	// ErrStatus wraps non 200 responses.
	ErrStatus = errors.New("unexpected api status")
)

// Client fetches endpoints through its Cache. The zero value is not usable;
// use NewClient.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Cache   *Cache

	group singleflight.Group
}

// NewClient returns a client for the public API. A nil cache gets a memory
// only one.
func NewClient(apiKey string, cache *Cache) *Client {
	if cache == nil {
		cache = NewCache("")
	}
	return &Client{
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Cache:   cache,
	}
}

// GetRaw returns the JSON body for endpoint (relative to BaseURL, e.g.
// "maps/15"). Fresh cache entries are returned without a request; otherwise
// the response is fetched and cached for ttl. Concurrent misses on the same
// endpoint share one request.
func (c *Client) GetRaw(ctx context.Context, endpoint string, ttl time.Duration, authRequired bool) (json.RawMessage, error) {
	if authRequired && c.APIKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrAuthRequired, endpoint)
	}
	if data, ok := c.Cache.Lookup(endpoint); ok {
		log.LogVf("gw2api cache hit %s", endpoint)
		return data, nil
	}
	// The shared request outlives any single caller; each caller only
	// stops waiting when its own context ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(endpoint, func() (any, error) {
		if data, ok := c.Cache.Lookup(endpoint); ok {
			return data, nil
		}
		data, err := c.fetch(fetchCtx, endpoint)
		if err != nil {
			return nil, err
		}
		c.Cache.Store(endpoint, data, c.Cache.Now().Add(ttl))
		return data, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get %s: %w", endpoint, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		log.LogVf("gw2api shared request %s", endpoint)
	}
	return res.Val.(json.RawMessage), nil
}

// Get is GetRaw followed by decoding into out.
func (c *Client) Get(ctx context.Context, endpoint string, ttl time.Duration, authRequired bool, out any) error {
	data, err := c.GetRaw(ctx, endpoint, ttl, authRequired)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (json.RawMessage, error) {
	url := strings.TrimSuffix(c.BaseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	log.Debugf("gw2api GET %s", url)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s for %s: %s", ErrStatus, resp.Status, endpoint, truncate(body, 200))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("get %s: response is not json", endpoint)
	}
	return json.RawMessage(body), nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
