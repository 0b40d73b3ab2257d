package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher resolves a URL to its raw HTML body. Implementations must treat
// non-2xx responses as errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// maxBodyBytes caps how much of a response body is read. Pages past this
// size are truncated rather than rejected.
const maxBodyBytes = 10 << 20

// HTTPFetcher fetches pages over plain HTTP with a per-request timeout.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the page body. Transport errors and non-2xx statuses both
// fail; redirects are followed by the underlying client.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", url, err)
	}
	return string(body), nil
}
