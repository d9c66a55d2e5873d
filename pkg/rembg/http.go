package rembg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout = 2 * time.Minute
	maxAttempts    = 3
	retryDelay     = 500 * time.Millisecond
)

// HTTPRemover talks to a rembg-compatible server: the image bytes are
// POSTed to {base}/api/remove and the response body is the cutout.
type HTTPRemover struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewHTTPRemover creates a remover for the given server. The timeout
// bounds a whole Remove call when the caller's context carries no
// deadline of its own; pass 0 for the default.
func NewHTTPRemover(baseURL string, timeout time.Duration) *HTTPRemover {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPRemover{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Remove sends the image to the server. Transport errors and 5xx
// responses are retried a couple of times; 4xx means the server rejected
// this image and is terminal.
func (r *HTTPRemover) Remove(ctx context.Context, raw []byte) ([]byte, error) {
	// The remover is the one dependency with unbounded latency, so make
	// sure something always cuts it off.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		cutout, retryable, err := r.post(ctx, raw)
		if err == nil {
			return cutout, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("background removal failed after %d attempts: %w", maxAttempts, lastErr)
}

func (r *HTTPRemover) post(ctx context.Context, raw []byte) (cutout []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/remove", bytes.NewReader(raw))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "image/png")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("failed to reach remover: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read remover response: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("remover returned status %d: %s", resp.StatusCode, truncate(body, 200))
	default:
		return nil, false, fmt.Errorf("remover rejected request with status %d: %s", resp.StatusCode, truncate(body, 200))
	}
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
