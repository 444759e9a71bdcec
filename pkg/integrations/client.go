package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/minbump/pkg/cache"
	"github.com/matzehuels/minbump/pkg/httputil"
	"github.com/matzehuels/minbump/pkg/observability"
)

const (
	httpTimeout = 10 * time.Second

	// Batch resolutions fetch many packuments from one registry host at once.
	maxIdleConnsPerHost = 32
)

var (
	// ErrNotFound is returned when the registry has no such package.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and non-404 error statuses.
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient returns a client with the registry request timeout and a
// connection pool sized for concurrent fetches against a single host.
func NewHTTPClient() *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConnsPerHost = maxIdleConnsPerHost
	return &http.Client{Timeout: httpTimeout, Transport: tr}
}

// Client provides shared HTTP functionality for registry API clients.
// It handles response caching, optional retries, and common request headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	attempts  int
	delay     time.Duration
}

// NewClient creates a Client that caches responses in c under keys of the
// form http:<namespace>:<key>. Headers are applied to all requests.
// A nil cache disables caching. Requests are attempted once; see [Client.WithRetry].
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
		attempts:  1,
		delay:     time.Second,
	}
}

// WithRetry retries transient failures up to retries extra times, starting
// at delay and doubling. Zero retries restores single-attempt behavior.
func (c *Client) WithRetry(retries int, delay time.Duration) *Client {
	c.attempts = max(retries, 0) + 1
	if delay > 0 {
		c.delay = delay
	}
	return c
}

// WithKeyer replaces the default cache keyer, e.g. with a [cache.ScopedKeyer].
func (c *Client) WithKeyer(k cache.Keyer) *Client {
	if k != nil {
		c.keyer = k
	}
	return c
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
// Cache read and write failures degrade to a miss; only fetch errors are returned.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	hooks := observability.Cache()
	fullKey := c.keyer.HTTPKey(c.namespace, key)

	if !refresh {
		if data, ok, err := c.cache.Get(ctx, fullKey); err == nil && ok && json.Unmarshal(data, v) == nil {
			hooks.OnCacheHit(ctx, c.namespace)
			return nil
		}
		hooks.OnCacheMiss(ctx, c.namespace)
	}

	if err := httputil.Retry(ctx, c.attempts, c.delay, fetch); err != nil {
		return err
	}

	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, fullKey, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, c.namespace, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.doRequest(ctx, url, nil)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	return string(data), err
}

func (c *Client) doRequest(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.EscapedPath()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case httputil.RetryableStatus(code):
		return &httputil.RetryableError{
			Err:   fmt.Errorf("%w: status %d", ErrNetwork, code),
			After: httputil.RetryAfter(resp.Header, time.Now()),
		}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
