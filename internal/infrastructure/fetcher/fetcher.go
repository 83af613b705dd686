// Package fetcher retrieves the detail pages referenced by news entries.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"feedherald/internal/ports"
)

// Client downloads page bodies over HTTP.
type Client struct {
	client *http.Client
}

var _ ports.PageFetcher = (*Client)(nil)

// New wires an HTTP client; a nil client gets a sane default.
func New(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{client: client}
}

// FetchText returns the page body as a string.
func (c *Client) FetchText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "feedherald/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page fetch returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read page body: %w", err)
	}
	return string(body), nil
}
