package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"orgtree/internal/config"
	"orgtree/internal/logging"
)

const maxErrorBody = 512

// Client downloads raw hierarchy dumps over HTTP.
type Client struct {
	token       string
	maxAttempts int
	httpClient  *http.Client
	limiter     *RateLimiter
	logger      *slog.Logger
	sleep       func(time.Duration)
}

func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	attempts := cfg.FetchMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &Client{
		token:       cfg.FetchToken,
		maxAttempts: attempts,
		httpClient:  &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond},
		limiter:     NewRateLimiter(cfg.FetchRateLimitRPS),
		logger:      logger,
		sleep:       time.Sleep,
	}
}

// FetchDump GETs url and returns the body with its content type. Transport
// errors, 429 and 5xx responses are retried with exponential backoff.
func (c *Client) FetchDump(ctx context.Context, url string) ([]byte, string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, "", err
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.5")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.retryWait(url, attempt, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			c.retryWait(url, attempt, readErr)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < c.maxAttempts {
				lastErr = fmt.Errorf("dump status %d", resp.StatusCode)
				c.retryWait(url, attempt, lastErr)
				continue
			}
			return nil, "", fmt.Errorf("dump fetch failed: status=%d body=%s", resp.StatusCode, truncate(body, maxErrorBody))
		}
		return body, resp.Header.Get("Content-Type"), nil
	}

	if lastErr == nil {
		lastErr = errors.New("dump request failed")
	}
	return nil, "", lastErr
}

func (c *Client) retryWait(url string, attempt int, err error) {
	if attempt >= c.maxAttempts {
		return
	}
	backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
	logging.Warn(c.logger, "dump fetch retry",
		logging.FieldURL, url,
		logging.FieldAttempt, attempt,
		"backoff_ms", backoff.Milliseconds(),
		"error", err,
	)
	c.sleep(backoff)
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
