package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coreos/cincinnati-graph-builder/internal/metadata"
)

// URLs templates the two upstream document URLs from a base URL and
// stream name. UpdatesPath selects between the two documented layouts
// for the stream-updates document.
type URLs struct {
	Base        string
	Stream      string
	UpdatesPath string // "updates" (default) or "stream" for the alternate layout
}

// ReleaseIndexURL returns "<base>/prod/streams/<stream>/releases.json".
func (u URLs) ReleaseIndexURL() string {
	return fmt.Sprintf("%s/prod/streams/%s/releases.json", u.Base, u.Stream)
}

// UpdatesURL returns the stream-updates document URL, honoring the
// configurable alternate path.
func (u URLs) UpdatesURL() string {
	if u.UpdatesPath == "stream" {
		return fmt.Sprintf("%s/prod/streams/%s/stream.json", u.Base, u.Stream)
	}
	return fmt.Sprintf("%s/updates/%s.json", u.Base, u.Stream)
}

// FetchReleaseIndex fetches and decodes the release index document.
func FetchReleaseIndex(ctx context.Context, f Fetcher, rawURL string) ([]metadata.Release, error) {
	body, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("error fetching release index from %s: %w", rawURL, err)
	}
	var doc metadata.ReleaseIndex
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("error parsing release index JSON from %s: %w", rawURL, err)
	}
	return doc.Releases, nil
}

// FetchUpdates fetches and decodes the stream-updates document.
func FetchUpdates(ctx context.Context, f Fetcher, rawURL string) (metadata.Updates, error) {
	body, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return metadata.Updates{}, fmt.Errorf("error fetching stream updates from %s: %w", rawURL, err)
	}
	var doc metadata.UpdatesDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return metadata.Updates{}, fmt.Errorf("error parsing stream updates JSON from %s: %w", rawURL, err)
	}
	return doc.Updates, nil
}
