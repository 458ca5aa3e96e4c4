// Package fetcher retrieves HTML pages with timeout and error capture.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ikhlasbhojani/learnme/internal/httpclient"
)

// MaxTimeout caps per-page latency regardless of configured timeout so
// one slow host cannot stall a whole BFS level.
const MaxTimeout = 30 * time.Second

// maxBodySize bounds how much of a page is read into memory.
const maxBodySize = 10 << 20 // 10MB

// ErrorKind classifies a fetch failure.
type ErrorKind string

const (
	KindTimeout      ErrorKind = "timeout"
	KindHTTPError    ErrorKind = "http_error"
	KindNetworkError ErrorKind = "network_error"
)

// FetchError describes why a page could not be retrieved.
type FetchError struct {
	URL        string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindHTTPError {
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves pages over HTTP, following redirects.
type Fetcher struct {
	client  *http.Client
	rotator *httpclient.Rotator
	timeout time.Duration
}

// New creates a fetcher. The timeout is clamped to MaxTimeout.
func New(client *http.Client, timeout time.Duration) *Fetcher {
	if timeout <= 0 || timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	return &Fetcher{
		client:  client,
		rotator: httpclient.NewRotator(),
		timeout: timeout,
	}
}

// Fetch retrieves the HTML body of url. All failures are reported as a
// *FetchError so callers can branch on the kind.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Kind: KindNetworkError, Err: err}
	}
	f.rotator.ApplyHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &FetchError{URL: url, Kind: KindHTTPError, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", &FetchError{URL: url, Kind: classify(err), Err: err}
	}

	return string(body), nil
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetworkError
}
