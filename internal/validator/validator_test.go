package validator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ikhlasbhojani/learnme/internal/types"
)

func TestValidateLivePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := New(srv.Client(), NewCache(10))
	rec := v.Validate(context.Background(), srv.URL, NewLocalCache(), 5*time.Second)

	if !rec.Verified {
		t.Fatalf("Expected verified, got %+v", rec)
	}
	if rec.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.StatusCode)
	}
}

func TestValidateHeadFallsBackToGet(t *testing.T) {
	var sawGet bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sawGet = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := New(srv.Client(), NewCache(10))
	rec := v.Validate(context.Background(), srv.URL, NewLocalCache(), 5*time.Second)

	if !sawGet {
		t.Error("Expected GET retry after 405 on HEAD")
	}
	if !rec.Verified {
		t.Errorf("Expected verified after GET fallback, got %+v", rec)
	}
}

func TestValidateDeadPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	v := New(srv.Client(), NewCache(10))
	rec := v.Validate(context.Background(), srv.URL, NewLocalCache(), 5*time.Second)

	if rec.Verified {
		t.Fatal("Expected validation failure for 404")
	}
	if rec.Reason != types.SkipValidationFailed {
		t.Errorf("Expected reason validation_failed, got %s", rec.Reason)
	}
	if rec.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.StatusCode)
	}
}

func TestValidateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	v := New(srv.Client(), NewCache(10))
	rec := v.Validate(context.Background(), srv.URL, NewLocalCache(), 200*time.Millisecond)

	if rec.Verified {
		t.Fatal("Expected timeout failure")
	}
	if rec.Reason != types.SkipTimeout {
		t.Errorf("Expected reason timeout, got %s", rec.Reason)
	}
}

func TestValidateRequestError(t *testing.T) {
	v := New(&http.Client{}, NewCache(10))
	rec := v.Validate(context.Background(), "http://127.0.0.1:1/", NewLocalCache(), 2*time.Second)

	if rec.Verified {
		t.Fatal("Expected failure for unreachable host")
	}
	if rec.Reason != types.SkipRequestError && rec.Reason != types.SkipTimeout {
		t.Errorf("Unexpected reason %s", rec.Reason)
	}
}

func TestValidateUsesLocalCache(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := New(srv.Client(), NewCache(10))
	local := NewLocalCache()
	v.Validate(context.Background(), srv.URL, local, 5*time.Second)
	v.Validate(context.Background(), srv.URL, local, 5*time.Second)

	if calls != 1 {
		t.Errorf("Expected 1 network call, got %d", calls)
	}
}

func TestValidateSharesGlobalCache(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cache := NewCache(10)
	v := New(srv.Client(), cache)

	// Two independent crawls, separate local caches.
	v.Validate(context.Background(), srv.URL, NewLocalCache(), 5*time.Second)
	v.Validate(context.Background(), srv.URL, NewLocalCache(), 5*time.Second)

	if calls != 1 {
		t.Errorf("Expected global cache to absorb second crawl's lookup, got %d calls", calls)
	}
}

func TestCacheBound(t *testing.T) {
	cache := NewCache(MaxGlobalCacheSize)
	for i := 0; i < MaxGlobalCacheSize+1; i++ {
		cache.Put(fmt.Sprintf("https://example.com/p%d", i), types.ValidationRecord{Verified: true})
	}

	if cache.Len() != MaxGlobalCacheSize {
		t.Errorf("Expected cache bounded at %d, got %d", MaxGlobalCacheSize, cache.Len())
	}
	if cache.contains("https://example.com/p0") {
		t.Error("Expected least-recently-used entry to be evicted")
	}
	if !cache.contains(fmt.Sprintf("https://example.com/p%d", MaxGlobalCacheSize)) {
		t.Error("Expected newest entry to be present")
	}
}

func TestCacheLRUOrderRespectsAccess(t *testing.T) {
	cache := NewCache(2)
	cache.Put("a", types.ValidationRecord{})
	cache.Put("b", types.ValidationRecord{})

	// Touch "a" so "b" becomes the eviction candidate.
	cache.Get("a")
	cache.Put("c", types.ValidationRecord{})

	if !cache.contains("a") {
		t.Error("Expected recently-used entry to survive")
	}
	if cache.contains("b") {
		t.Error("Expected least-recently-used entry to be evicted")
	}
}
