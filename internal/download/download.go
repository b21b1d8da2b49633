// Package download fetches remote files over HTTP.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client downloads files. A zero Timeout means no limit, matching the
// original behavior of letting large toolkit packages take as long as they
// take.
type Client struct {
	HTTP *http.Client
}

// NewClient returns a Client with a sane default transport.
func NewClient() *Client {
	return &Client{
		HTTP: &http.Client{Timeout: 30 * time.Minute},
	}
}

// ToFile downloads url into path, overwriting any existing file. A non-2xx
// response is an error.
func (c *Client) ToFile(ctx context.Context, url, path string, perm os.FileMode) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
