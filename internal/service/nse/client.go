// Package nse fetches option chains from the NSE public API. The endpoint
// sits behind session cookies and rejects non-browser clients, so the
// client warms up against the homepage first and retries once with a fresh
// session when the cookies go stale.
package nse

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"sync"
	"time"

	"ChainSight/internal/domain/models"
	domsvc "ChainSight/internal/domain/service"
	"ChainSight/internal/service/ratelimit"
	xhttp "ChainSight/pkg/http"
	"ChainSight/pkg/logger"
)

const (
	defaultBaseURL = "https://www.nseindia.com"
	chainPath      = "/api/option-chain-indices"
	warmupPath     = "/option-chain"

	sessionTTL = 5 * time.Minute
)

// browser-like headers; the API 401s without them.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         defaultBaseURL + warmupPath,
}

type Client struct {
	baseURL string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger

	mu       sync.Mutex
	warmedAt time.Time
}

type Option func(*Client)

// WithBaseURL overrides the exchange URL, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func New(timeout time.Duration, limiter *ratelimit.Limiter, log *logger.Logger, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("nse: cookie jar: %w", err)
	}
	c := &Client{
		baseURL: defaultBaseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithCookieJar(jar)),
		limiter: limiter,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ domsvc.ChainFetcher = (*Client)(nil)

// FetchChain pulls the full option chain for an index symbol.
func (c *Client) FetchChain(ctx context.Context, symbol string) (*models.RawOptionChain, error) {
	if c.limiter != nil && !c.limiter.Allow("nse:"+symbol, 3, 0.5) {
		return nil, fmt.Errorf("nse: rate limited for %s", symbol)
	}

	if err := c.warmup(ctx, false); err != nil {
		return nil, err
	}

	raw, err := c.fetch(ctx, symbol)
	if err != nil {
		// Stale session cookies are the common failure; retry once fresh.
		if werr := c.warmup(ctx, true); werr != nil {
			return nil, werr
		}
		raw, err = c.fetch(ctx, symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("nse: fetch chain %s: %w", symbol, err)
	}
	return raw, nil
}

func (c *Client) fetch(ctx context.Context, symbol string) (*models.RawOptionChain, error) {
	var raw models.RawOptionChain
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + chainPath,
		Headers:     defaultHeaders,
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &raw)
	if err != nil {
		return nil, err
	}
	return &raw, nil
}

// warmup hits the homepage to collect session cookies. Cookies live for a
// few minutes; force refreshes regardless of age.
func (c *Client) warmup(ctx context.Context, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !force && time.Since(c.warmedAt) < sessionTTL {
		return nil
	}
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + warmupPath,
		Headers: defaultHeaders,
	}, nil)
	if err != nil {
		return fmt.Errorf("nse: session warmup: %w", err)
	}
	c.warmedAt = time.Now()
	if c.log != nil {
		c.log.Debug("nse session warmed")
	}
	return nil
}
