package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"variant-image-extractor/internal/types"
)

// HTTPClient fetches image bytes with a request pacing ticker
type HTTPClient struct {
	client  *http.Client
	config  *types.Config
	logger  types.Logger
	limiter *time.Ticker
}

// StatusError is returned when the server answers with anything but 200
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	delay := config.RequestDelay
	if delay <= 0 {
		delay = time.Millisecond
	}

	return &HTTPClient{
		client:  client,
		config:  config,
		logger:  logger,
		limiter: time.NewTicker(delay),
	}
}

// Fetch performs a GET request and returns the open response body for
// streaming. The caller must close it. Non-200 answers yield a *StatusError.
// Attempts are repeated only when config.MaxRetries > 0.
func (h *HTTPClient) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		select {
		case <-h.limiter.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", h.config.UserAgent)
		req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")

		h.logger.Debugf("Fetching %s (attempt %d/%d)", url, attempt+1, h.config.MaxRetries+1)

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			h.logger.Debugf("Request failed (attempt %d): %v", attempt+1, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = &StatusError{URL: url, StatusCode: resp.StatusCode}
			h.logger.Debugf("Unexpected status code %d (attempt %d)", resp.StatusCode, attempt+1)
			continue
		}

		return resp.Body, nil
	}

	return nil, lastErr
}

// Close cleans up resources
func (h *HTTPClient) Close() {
	if h.limiter != nil {
		h.limiter.Stop()
	}
}
