package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/place-analyzer/internal/config"
)

// Fetcher downloads a single remote image.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher downloads images over HTTP with a per-call timeout and a hard
// payload size limit. It performs no retries; retry policy belongs to the
// layers above so a slow URL cannot multiply latency inside a primitive.
type HTTPFetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

// NewHTTPFetcher creates a fetcher using the provided HTTP client. The client
// is injected so tests can substitute one and so the pipeline shares a single
// bounded connection pool.
func NewHTTPFetcher(client *http.Client, cfg config.MediaConfig) *HTTPFetcher {
	return &HTTPFetcher{
		client:   client,
		timeout:  cfg.FetchTimeout,
		maxBytes: cfg.MaxBytes,
	}
}

// NewHTTPClient builds the pooled HTTP client shared by the pipeline's
// outbound calls.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   3,
			IdleConnTimeout:       30 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("too many redirects (limit: 3)")
			}
			return nil
		},
	}
}

// Fetch downloads one image. The size cap is enforced twice: against the
// declared Content-Length and again while streaming, because servers lie.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DownloadError{URL: url, Kind: DownloadNetwork, Err: err}
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "place-analyzer/1.0")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		kind := DownloadNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			kind = DownloadTimeout
		}
		return nil, &DownloadError{URL: url, Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &DownloadError{URL: url, Kind: DownloadHTTPStatus, StatusCode: resp.StatusCode}
	}

	if resp.ContentLength > f.maxBytes {
		return nil, &DownloadError{URL: url, Kind: DownloadTooLarge}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		kind := DownloadNetwork
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			kind = DownloadTimeout
		}
		return nil, &DownloadError{URL: url, Kind: kind, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, &DownloadError{URL: url, Kind: DownloadTooLarge}
	}

	log.Debug().
		Str("url", url).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Image downloaded")

	return data, nil
}
