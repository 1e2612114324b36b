package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/buildinfo"
	"github.com/matzehuels/masonry/pkg/cache"
	errs "github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/observability"
)

const (
	httpTimeout = 10 * time.Second

	// MaxBodySize bounds a fetched board.
	MaxBodySize = 10 << 20

	cacheNamespace = "board"
)

// Client fetches remote boards. Responses are cached through a
// [cache.Cache] and transient failures are retried with backoff.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	retry   cache.RetryPolicy
	headers map[string]string
}

// NewClient creates a Client. A nil cache disables caching, a nil keyer uses
// [cache.DefaultKeyer] and a zero ttl uses [cache.TTLHTTP]. Headers are sent
// with every request.
func NewClient(c cache.Cache, keyer cache.Keyer, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl == 0 {
		ttl = cache.TTLHTTP
	}
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   c,
		keyer:   keyer,
		ttl:     ttl,
		retry:   cache.DefaultRetryPolicy,
		headers: headers,
	}
}

// Board fetches and decodes the board at rawURL. The second result reports
// whether the body came from the cache. Unless refresh is set a cached body
// is used when present.
func (c *Client) Board(ctx context.Context, rawURL string, refresh bool) (*board.Board, bool, error) {
	if err := errs.ValidateURL(rawURL); err != nil {
		return nil, false, err
	}
	key := c.keyer.HTTPKey(cacheNamespace, rawURL)

	if !refresh {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			if b, err := board.ParseBoard(data, formatOf(rawURL, "")); err == nil {
				return b, true, nil
			}
		}
	}

	var (
		data        []byte
		contentType string
	)
	err := c.retry.Do(ctx, func() error {
		var err error
		data, contentType, err = c.get(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	b, err := board.ParseBoard(data, formatOf(rawURL, contentType))
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", rawURL, err)
	}
	_ = c.cache.Set(ctx, key, data, c.ttl)
	return b, false, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", errs.Wrap(errs.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("Accept", "application/json, application/toml;q=0.9, */*;q=0.1")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, "", cache.Retryable(errs.Wrap(errs.ErrCodeTimeout, err, "fetch %s", rawURL))
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", cache.Retryable(errs.Wrap(errs.ErrCodeNetwork, err, "fetch %s", rawURL))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, "", err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, "", cache.Retryable(errs.Wrap(errs.ErrCodeNetwork, err, "read %s", rawURL))
	}
	if len(data) > MaxBodySize {
		return nil, "", errs.New(errs.ErrCodeInvalidInput, "board larger than %d bytes", MaxBodySize)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errs.New(errs.ErrCodeNotFound, "board not found")
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &errs.RateLimitedError{RetryAfter: retryAfter}
	case code >= 500:
		return cache.Retryable(errs.New(errs.ErrCodeNetwork, "status %d", code))
	default:
		return errs.New(errs.ErrCodeNetwork, "status %d", code)
	}
}

// formatOf picks the board encoding from the URL path, then the content type.
func formatOf(rawURL, contentType string) board.Format {
	if u, err := url.Parse(rawURL); err == nil && strings.EqualFold(path.Ext(u.Path), ".toml") {
		return board.FormatTOML
	}
	if strings.Contains(strings.ToLower(contentType), "toml") {
		return board.FormatTOML
	}
	return board.FormatJSON
}
