package pics2pdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// imageFetcher abstracts retrieval of raw image bytes.
type imageFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Compile-time interface check
var _ imageFetcher = (*httpFetcher)(nil)

// fetchTimeout bounds a single image download. The fan-out join itself
// has no deadline; a hung connection must not park it forever.
const fetchTimeout = 60 * time.Second

// maxImageBytes caps a single download (32 MiB).
const maxImageBytes = 32 << 20

// httpFetcher retrieves image bytes over HTTP with a stable user-agent.
type httpFetcher struct {
	client    *http.Client
	userAgent string
}

func newHTTPFetcher(userAgent string) *httpFetcher {
	return &httpFetcher{
		client:    &http.Client{Timeout: fetchTimeout},
		userAgent: userAgent,
	}
}

// Fetch downloads ref and returns the body bytes.
func (f *httpFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching image: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("reading image body: exceeds %d byte limit", maxImageBytes)
	}
	return data, nil
}
