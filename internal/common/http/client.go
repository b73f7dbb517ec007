// internal/common/http/client.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRetriesExhausted wraps the last failure after every attempt failed.
var ErrRetriesExhausted = errors.New("RETRIES_EXHAUSTED")

// Client is an http.Client with exponential-backoff retries. Timeouts come
// from the request context, not the client.
type Client struct {
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

func NewClient(maxRetries int, baseBackoff time.Duration) *Client {
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}
	return &Client{
		httpClient:  &http.Client{},
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
	}
}

// Do sends one request without retries.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// DoWithRetry calls newReq for every attempt so request bodies are fresh.
// 5xx and 429 responses are retried; other statuses are returned to the
// caller. Context errors are returned unwrapped so callers can tell
// timeouts apart.
func (c *Client) DoWithRetry(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := newReq(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
}
