package gtfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Downloader fetches the static GTFS zip, using conditional requests so
// an unchanged feed is never re-downloaded.
type Downloader struct {
	client *http.Client
	url    string
	dir    string
	logger *slog.Logger
}

// NewDownloader creates a Downloader that saves feeds under dir.
func NewDownloader(url, dir string, logger *slog.Logger) *Downloader {
	return &Downloader{
		client: &http.Client{Timeout: 10 * time.Minute},
		url:    url,
		dir:    dir,
		logger: logger,
	}
}

// Changed sends a HEAD request with If-Modified-Since / If-None-Match and
// reports whether the remote feed differs from the cached headers.
func (d *Downloader) Changed(ctx context.Context, lastModified, etag string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, d.url, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("HEAD request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		d.logger.Info("GTFS feed not modified")
		return false, nil
	}
	return true, nil
}

// Download fetches the zip into a temp file under the download dir and
// returns its path along with the caching headers of the response.
func (d *Downloader) Download(ctx context.Context) (path, lastModified, etag string, err error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", "", "", fmt.Errorf("create dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return "", "", "", fmt.Errorf("create request: %w", err)
	}

	d.logger.Info("downloading GTFS feed", "url", d.url)
	resp, err := d.client.Do(req)
	if err != nil {
		return "", "", "", fmt.Errorf("GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(d.dir, "gtfs-*.zip")
	if err != nil {
		return "", "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer tmp.Close()

	written, err := io.Copy(tmp, resp.Body)
	if err != nil {
		os.Remove(tmp.Name())
		return "", "", "", fmt.Errorf("write file: %w", err)
	}

	d.logger.Info("GTFS feed downloaded",
		"path", filepath.Base(tmp.Name()),
		"size_mb", fmt.Sprintf("%.1f", float64(written)/(1024*1024)),
	)
	return tmp.Name(), resp.Header.Get("Last-Modified"), resp.Header.Get("ETag"), nil
}
