package httpds

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Download streams url into dest. The body is written to a temporary file in
// dest's directory and renamed into place only after a complete, successful
// transfer, so an interrupted download never leaves a truncated dest.
//
// It returns the number of bytes written.
func (c *Client) Download(ctx context.Context, url, dest string) (int64, error) {
	start := time.Now()
	resp, err := c.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("httpds: GET %s: unexpected status %s", url, resp.Status)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("httpds: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("httpds: temp file: %w", err)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		cleanup()
		return n, fmt.Errorf("httpds: download %s: %w", url, err)
	}
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		cleanup()
		return n, fmt.Errorf("httpds: download %s: short body (%d of %d bytes)", url, n, resp.ContentLength)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return n, fmt.Errorf("httpds: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return n, fmt.Errorf("httpds: rename into %s: %w", dest, err)
	}

	log.Printf("httpds: downloaded url=%s dest=%s bytes=%d elapsed=%s",
		url, dest, n, time.Since(start).Truncate(time.Millisecond))
	return n, nil
}
