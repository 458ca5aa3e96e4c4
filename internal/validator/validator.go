// Package validator confirms that discovered URLs resolve to live pages.
package validator

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ikhlasbhojani/learnme/internal/httpclient"
	"github.com/ikhlasbhojani/learnme/internal/types"
)

const (
	// maxConcurrent bounds outbound validation requests process-wide.
	maxConcurrent = 10
	// maxJitter spreads validation bursts so a target host is not hit
	// by ten simultaneous HEADs.
	maxJitter = 100 * time.Millisecond
)

// LocalCache is the per-crawl validation cache, checked before the
// shared global one. Sibling validations within a BFS level run
// concurrently, so access is locked.
type LocalCache struct {
	mu sync.Mutex
	m  map[string]types.ValidationRecord
}

// NewLocalCache creates an empty per-crawl cache.
func NewLocalCache() *LocalCache {
	return &LocalCache{m: make(map[string]types.ValidationRecord)}
}

func (c *LocalCache) get(url string) (types.ValidationRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.m[url]
	return rec, ok
}

func (c *LocalCache) put(url string, rec types.ValidationRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[url] = rec
}

// Validator performs HEAD/GET liveness checks backed by a two-tier
// cache and a process-wide concurrency cap.
type Validator struct {
	client  *http.Client
	cache   *Cache
	sem     *semaphore.Weighted
	rotator *httpclient.Rotator
}

// New creates a validator around the shared cache.
func New(client *http.Client, cache *Cache) *Validator {
	return &Validator{
		client:  client,
		cache:   cache,
		sem:     semaphore.NewWeighted(maxConcurrent),
		rotator: httpclient.NewRotator(),
	}
}

// Validate checks that url resolves to a live page. Results are
// written through to both the local and the global cache.
func (v *Validator) Validate(ctx context.Context, url string, local *LocalCache, timeout time.Duration) types.ValidationRecord {
	if rec, ok := local.get(url); ok {
		return rec
	}
	if rec, ok := v.cache.Get(url); ok {
		local.put(url, rec)
		return rec
	}

	rec := v.check(ctx, url, timeout)

	local.put(url, rec)
	v.cache.Put(url, rec)
	return rec
}

// check performs the network round trip under the semaphore.
func (v *Validator) check(ctx context.Context, url string, timeout time.Duration) types.ValidationRecord {
	if err := v.sem.Acquire(ctx, 1); err != nil {
		return types.ValidationRecord{Reason: types.SkipRequestError}
	}
	defer v.sem.Release(1)

	select {
	case <-time.After(time.Duration(rand.Int63n(int64(maxJitter)))):
	case <-ctx.Done():
		return types.ValidationRecord{Reason: types.SkipRequestError}
	}

	status, err := v.request(ctx, http.MethodHead, url, timeout)
	if err == nil && (status == http.StatusForbidden || status == http.StatusMethodNotAllowed) {
		// Some servers reject HEAD outright; a GET settles it.
		status, err = v.request(ctx, http.MethodGet, url, timeout)
	}

	switch {
	case err != nil:
		reason := types.SkipRequestError
		if isTimeout(err) {
			reason = types.SkipTimeout
		}
		return types.ValidationRecord{Reason: reason}
	case status < 400:
		return types.ValidationRecord{Verified: true, StatusCode: status}
	default:
		return types.ValidationRecord{StatusCode: status, Reason: types.SkipValidationFailed}
	}
}

func (v *Validator) request(ctx context.Context, method, url string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	v.rotator.ApplyHeaders(req)

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
