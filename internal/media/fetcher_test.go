package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fpang/place-analyzer/internal/config"
)

func testMediaConfig() config.MediaConfig {
	cfg := config.Default().Media
	cfg.FetchTimeout = 2 * time.Second
	return cfg
}

func TestFetchSuccess(t *testing.T) {
	payload := []byte("fake image bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), testMediaConfig())
	got, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload mismatch: got %d bytes, want %d", len(got), len(payload))
	}
}

func TestFetchHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), testMediaConfig())
	_, err := f.Fetch(context.Background(), srv.URL)

	var dl *DownloadError
	if !errors.As(err, &dl) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if dl.Kind != DownloadHTTPStatus || dl.StatusCode != http.StatusNotFound {
		t.Errorf("got kind=%s status=%d, want http_status/404", dl.Kind, dl.StatusCode)
	}
}

func TestFetchTooLargeByContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "99999999999")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), testMediaConfig())
	_, err := f.Fetch(context.Background(), srv.URL)

	var dl *DownloadError
	if !errors.As(err, &dl) || dl.Kind != DownloadTooLarge {
		t.Fatalf("expected too_large error, got %v", err)
	}
}

func TestFetchTooLargeWhileStreaming(t *testing.T) {
	// Chunked response with no Content-Length: the declared-size check
	// cannot catch it, so the streaming hard stop must.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; i < 64; i++ {
			w.Write(make([]byte, 1024))
			flusher.Flush()
		}
	}))
	defer srv.Close()

	cfg := testMediaConfig()
	cfg.MaxBytes = 4096
	f := NewHTTPFetcher(srv.Client(), cfg)
	_, err := f.Fetch(context.Background(), srv.URL)

	var dl *DownloadError
	if !errors.As(err, &dl) || dl.Kind != DownloadTooLarge {
		t.Fatalf("expected too_large error, got %v", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	cfg := testMediaConfig()
	cfg.FetchTimeout = 50 * time.Millisecond
	f := NewHTTPFetcher(srv.Client(), cfg)
	_, err := f.Fetch(context.Background(), srv.URL)

	var dl *DownloadError
	if !errors.As(err, &dl) || dl.Kind != DownloadTimeout {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestFetchNetworkError(t *testing.T) {
	f := NewHTTPFetcher(NewHTTPClient(), testMediaConfig())
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")

	var dl *DownloadError
	if !errors.As(err, &dl) || dl.Kind != DownloadNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
}
