package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"variant-image-extractor/internal/types"
)

// Downloader writes fetched images under the output root, skipping files
// that already exist so repeated runs only fetch what is missing.
type Downloader struct {
	http   *HTTPClient
	logger types.Logger
}

// NewDownloader creates a downloader backed by client
func NewDownloader(client *HTTPClient, logger types.Logger) *Downloader {
	return &Downloader{
		http:   client,
		logger: logger,
	}
}

// Save fetches task.URL into task.DestinationFolder/task.Filename
func (d *Downloader) Save(ctx context.Context, task types.DownloadTask) (types.DownloadStatus, error) {
	if err := os.MkdirAll(task.DestinationFolder, 0755); err != nil {
		return types.DownloadFailed, fmt.Errorf("failed to create directory %q: %w", task.DestinationFolder, err)
	}

	path := filepath.Join(task.DestinationFolder, task.Filename)
	if _, err := os.Stat(path); err == nil {
		d.logger.Infof("  Skipping (already exists): %s", task.Filename)
		return types.DownloadSkipped, nil
	}

	body, err := d.http.Fetch(ctx, task.URL)
	if err != nil {
		return types.DownloadFailed, fmt.Errorf("failed to download %s: %w", task.URL, err)
	}
	defer body.Close()

	tmp, err := os.CreateTemp(task.DestinationFolder, ".partial-*")
	if err != nil {
		return types.DownloadFailed, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return types.DownloadFailed, fmt.Errorf("failed to write %s: %w", task.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return types.DownloadFailed, fmt.Errorf("failed to write %s: %w", task.Filename, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return types.DownloadFailed, fmt.Errorf("failed to move %s into place: %w", task.Filename, err)
	}

	d.logger.Infof("  Downloaded: %s", task.Filename)
	return types.Downloaded, nil
}
