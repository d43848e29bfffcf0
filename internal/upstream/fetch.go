// Package upstream is the "fetch(url) -> bytes" collaborator the core
// consumes, plus the JSON decoding of the two upstream documents the
// scraper fetches each refresh cycle.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Fetcher is the capability the scraper depends on. Production code
// uses httpFetcher; tests substitute a stub.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// httpFetcher fetches over HTTP with a bounded per-call timeout:
// explicit Accept header, status-code check, wrapped errors at every
// step.
type httpFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a Fetcher bounding each request to timeout.
func NewHTTPFetcher(timeout time.Duration) Fetcher {
	return &httpFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *httpFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return nil, fmt.Errorf("invalid upstream URL %q: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching data from %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error: status %d when fetching data from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response from %s: %w", rawURL, err)
	}
	return body, nil
}
