package fdsn

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

// Client fetches QuakeML documents from an FDSN event service.
// It implements catalog.Fetcher.
type Client struct {
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates an FDSN client. A zero timeout keeps the transport default.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		clock:  clockwork.NewRealClock(),
		logger: logger,
	}
}

// Fetch performs one GET against rawURL and returns the response body, which
// the caller must close. There is no retry. HTTP 204 (the FDSN "no data"
// status) yields an empty body rather than an error.
func (c *Client) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/xml")

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	c.logger.Debug("fdsn response",
		"status", resp.StatusCode,
		"latency", c.clock.Since(start),
	)

	if resp.StatusCode == http.StatusNoContent {
		resp.Body.Close()
		return http.NoBody, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrFetch, resp.StatusCode, body)
	}

	return resp.Body, nil
}
