package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultBaseURL is the Finnhub REST API root.
	DefaultBaseURL = "https://finnhub.io/api/v1"

	httpTimeout     = 15 * time.Second
	maxBodyBytes    = 4 << 20
	cacheSize       = 256
	tokenHeaderName = "X-Finnhub-Token"
)

var (
	// ErrMissingAPIKey is returned when no Finnhub credential is configured.
	ErrMissingAPIKey = errors.New("finnhub api key is not configured")

	// ErrResponseTooLarge is returned when a response body exceeds maxBodyBytes.
	ErrResponseTooLarge = errors.New("response too large")
)

// StatusError reports a non-2xx response from the upstream API.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// FetchOptions controls response caching for a single request.
type FetchOptions struct {
	// CacheTTL is how long a successful response may be served from the
	// shared cache. Zero (or negative) bypasses the cache entirely.
	CacheTTL time.Duration
}

type cacheEntry struct {
	body      []byte
	expiresAt time.Time
}

// Client issues authenticated GET requests against the Finnhub API.
// It is safe for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	cache   *lru.Cache[string, cacheEntry]
	now     func() time.Time
}

// NewClient creates a Client for the given credential and API root. An empty
// baseURL selects DefaultBaseURL. An empty apiKey is accepted here; requests
// fail with ErrMissingAPIKey instead.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, cacheEntry](cacheSize)

	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: httpTimeout,
			Transport: &tokenTransport{
				token: apiKey,
				base:  http.DefaultTransport,
			},
		},
		cache: cache,
		now:   time.Now,
	}
}

// tokenTransport injects the Finnhub token header on every request.
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(tokenHeaderName, t.token)
	req.Header.Set("Accept", "application/json")
	return t.base.RoundTrip(req)
}

// checkCredential reports ErrMissingAPIKey when the client has no token.
func (c *Client) checkCredential() error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// FetchJSON performs a GET request and returns the raw response body.
// Responses outside the 2xx range produce a *StatusError.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, opts FetchOptions) ([]byte, error) {
	if err := c.checkCredential(); err != nil {
		return nil, err
	}

	if opts.CacheTTL > 0 {
		if entry, ok := c.cache.Get(rawURL); ok && c.now().Before(entry.expiresAt) {
			return entry.body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: redactedURL(rawURL)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrResponseTooLarge, maxBodyBytes, redactedURL(rawURL))
	}

	if opts.CacheTTL > 0 {
		c.cache.Add(rawURL, cacheEntry{body: body, expiresAt: c.now().Add(opts.CacheTTL)})
	}

	slog.Debug("finnhub request", "url", redactedURL(rawURL), "bytes", len(body), "cached", opts.CacheTTL > 0)
	return body, nil
}

// MarketNews fetches news for a market category such as "general".
func (c *Client) MarketNews(ctx context.Context, category string, w Window, opts FetchOptions) ([]RawArticle, error) {
	q := url.Values{}
	q.Set("category", category)
	q.Set("from", w.From)
	q.Set("to", w.To)

	body, err := c.FetchJSON(ctx, c.baseURL+"/news?"+q.Encode(), opts)
	if err != nil {
		return nil, fmt.Errorf("fetching %s news: %w", category, err)
	}
	return ParseRawArticles(body)
}

// CompanyNews fetches news published about a single ticker symbol.
func (c *Client) CompanyNews(ctx context.Context, symbol string, w Window, opts FetchOptions) ([]RawArticle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("from", w.From)
	q.Set("to", w.To)

	body, err := c.FetchJSON(ctx, c.baseURL+"/company-news?"+q.Encode(), opts)
	if err != nil {
		return nil, fmt.Errorf("fetching news for %s: %w", symbol, err)
	}
	return ParseRawArticles(body)
}

// redactedURL strips any token query parameter before a URL is logged.
func redactedURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("token") {
		q.Set("token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
