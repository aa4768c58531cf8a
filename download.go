package cleanscore

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// DownloadResult holds downloaded image data.
type DownloadResult struct {
	Data     []byte
	MIMEType string
}

// Download fetches an image from url with a single GET; there is no retry.
// A transport error or non-2xx status is returned as an *AcquireError with
// Kind FetchFailed, as is a body larger than MaxImageBytes.
func (cfg *Config) Download(ctx context.Context, url string) (*DownloadResult, error) {
	cfg.defaults()

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &AcquireError{Kind: FetchFailed, Ref: url, Err: err}
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := cfg.HTTPClient.Do(req) //nolint:gosec // G107: URL is caller-supplied by design
	if err != nil {
		return nil, &AcquireError{Kind: FetchFailed, Ref: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AcquireError{Kind: FetchFailed, Ref: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	ct := resp.Header.Get("Content-Type")
	// Strip MIME parameters: "image/jpeg; charset=utf-8" → "image/jpeg"
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if ct != "" && !strings.HasPrefix(ct, "image/") {
		// Servers mislabel images often enough; let the decoder decide.
		slog.Debug("cleanscore: non-image content type", "url", url, "content_type", ct)
	}

	data, err := readCapped(resp.Body, cfg.MaxImageBytes)
	if err != nil {
		return nil, &AcquireError{Kind: FetchFailed, Ref: url, Err: err}
	}

	return &DownloadResult{Data: data, MIMEType: ct}, nil
}
