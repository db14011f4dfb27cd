package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/shopscout/backend/internal/domain"
	"github.com/shopscout/backend/internal/infrastructure/throttle"
	"golang.org/x/net/html/charset"
)

const defaultMaxBodyBytes = 10 << 20

// Config holds the tunables of the upstream client
type Config struct {
	Timeout           time.Duration // per attempt
	Policy            RetryPolicy
	MaxBodyBytes      int64
	TLSFingerprint    bool
	RequestsPerMinute int // per upstream host, <= 0 disables throttling
	Burst             int
}

// Client fetches search result pages while trying not to get blocked
type Client struct {
	httpClient *http.Client
	policy     RetryPolicy
	headers    []HeaderSet
	random     Random
	sleep      Sleeper
	throttle   *throttle.Store
	maxBody    int64
}

// NewClient creates a new upstream page client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: newTransport(cfg.TLSFingerprint),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		policy:   cfg.Policy.normalized(),
		headers:  DefaultHeaderPool(),
		random:   globalRandom{},
		sleep:    sleepContext,
		throttle: throttle.NewStore(throttle.PerMinute(cfg.RequestsPerMinute), burst, time.Hour),
		maxBody:  maxBody,
	}
}

// SetRandom replaces the source used for header rotation and jitter
func (c *Client) SetRandom(r Random) {
	c.random = r
}

// SetSleeper replaces the function used for backoff and pacing delays
func (c *Client) SetSleeper(s Sleeper) {
	c.sleep = s
}

// SetHeaderPool replaces the browser header profiles; an empty pool is ignored
func (c *Client) SetHeaderPool(pool []HeaderSet) {
	if len(pool) > 0 {
		c.headers = pool
	}
}

// Close releases idle connections and stops the throttle cleanup goroutine
func (c *Client) Close() {
	c.throttle.Stop()
	c.httpClient.CloseIdleConnections()
}

// Fetch retrieves targetURL and returns its body decoded to UTF-8.
//
// 403 and 429 responses and transport faults are retried with exponential
// backoff; any other non-200 status fails immediately. A successful fetch is
// followed by a randomized pacing delay before the body is returned.
func (c *Client) Fetch(ctx context.Context, targetURL string) ([]byte, error) {
	host := hostOf(targetURL)
	attempts := c.policy.MaxAttempts

	var lastErr error
loop:
	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.throttle.Wait(ctx, host); err != nil {
			lastErr = err
			break loop
		}

		headers := c.headers[c.random.Intn(len(c.headers))]
		status, body, err := c.get(ctx, targetURL, headers)

		switch {
		case err != nil:
			log.Printf("[Fetcher] Request exception (attempt %d/%d): %v, retrying...", attempt+1, attempts, err)
			lastErr = err
		case status == http.StatusOK:
			_ = c.sleep(ctx, c.policy.Pacing(c.random))
			return body, nil
		case status == http.StatusForbidden || status == http.StatusTooManyRequests:
			log.Printf("[Fetcher] Request blocked with status %d (attempt %d/%d), retrying...", status, attempt+1, attempts)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUpstreamBlocked, status)
		default:
			log.Printf("[Fetcher] Request failed with status %d for %s, not retrying", status, targetURL)
			return nil, fmt.Errorf("%w: status %d", domain.ErrUpstreamStatus, status)
		}

		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break loop
		}
		if attempt < attempts-1 {
			if err := c.sleep(ctx, c.policy.Backoff(attempt, c.random)); err != nil {
				lastErr = err
				break loop
			}
		}
	}

	log.Printf("[Fetcher] All %d attempts failed for URL: %s", attempts, targetURL)
	if lastErr == nil {
		lastErr = errors.New("no attempt was made")
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrFetchExhausted, lastErr)
}

// get performs a single attempt. The body is only read for 200 responses.
func (c *Client) get(ctx context.Context, targetURL string, headers HeaderSet) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	headers.apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return resp.StatusCode, nil, nil
	}

	var reader io.Reader = io.LimitReader(resp.Body, c.maxBody)
	if decoded, err := charset.NewReader(reader, resp.Header.Get("Content-Type")); err == nil {
		reader = decoded
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
