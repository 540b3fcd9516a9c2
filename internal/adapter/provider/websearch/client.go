// Package websearch calls a configured web search HTTP endpoint.
package websearch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const maxBodyBytes = 2 << 20

// Client issues GET <endpoint>?query=<q> requests and returns the raw body.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client. apiKey is sent as a bearer token when non-empty.
func NewClient(endpoint, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "websearch"),
	}
}

// Fetch returns the response body for query. Non-2xx statuses are errors.
func (c *Client) Fetch(ctx context.Context, query string) ([]byte, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("websearch: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("query", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websearch: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.log.DebugContext(ctx, "websearch request", slog.String("query", query))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("websearch: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("websearch: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("websearch: unexpected status %d", resp.StatusCode)
	}

	return body, nil
}
