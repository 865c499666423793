package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultAttempts  = 3
	defaultBaseDelay = 2 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Client fetches page markup with bounded retries and exponential backoff.
// Every transport error and non-2xx status is retryable; after the attempt
// budget is spent the last error is returned so callers can skip the unit
// and move on.
type Client struct {
	httpClient *http.Client
	attempts   uint64
	baseDelay  time.Duration
	logger     *slog.Logger
}

func New(logger *slog.Logger) *Client {
	return NewWithOptions(nil, defaultAttempts, defaultBaseDelay, logger)
}

func NewWithOptions(httpClient *http.Client, attempts int, baseDelay time.Duration, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	if baseDelay < 0 {
		baseDelay = defaultBaseDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		attempts:   uint64(attempts),
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Fetch returns the body of the page at rawURL. Each attempt doubles the
// wait before the next one, starting from the configured base delay.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.baseDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	var body string
	operation := func() error {
		markup, err := c.fetchOnce(ctx, rawURL)
		if err != nil {
			c.logger.Warn("fetch attempt failed", "url", rawURL, "error", err)
			return err
		}
		body = markup
		return nil
	}

	wrapped := backoff.WithContext(backoff.WithMaxRetries(policy, c.attempts-1), ctx)
	if err := backoff.Retry(operation, wrapped); err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d", res.StatusCode)
	}

	rawBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	return string(rawBody), nil
}
