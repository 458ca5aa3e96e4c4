package httpclient

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestApplyHeadersSetsBrowserIdentity(t *testing.T) {
	rotator := NewRotator()
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)

	rotator.ApplyHeaders(req)

	if req.Header.Get("User-Agent") == "" {
		t.Error("User-Agent not set")
	}
	if req.Header.Get("Accept") == "" || req.Header.Get("Accept-Language") == "" {
		t.Error("Accept headers not set")
	}
	if req.Header.Get("Upgrade-Insecure-Requests") != "1" {
		t.Error("Upgrade-Insecure-Requests not set")
	}
}

func TestPickCoversProfiles(t *testing.T) {
	rotator := NewRotator()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[rotator.Pick().Name] = true
	}
	if len(seen) < 2 {
		t.Errorf("rotation stuck on %d profile(s)", len(seen))
	}
}

func TestNewDefaultClient(t *testing.T) {
	client := New(Options{Timeout: 5 * time.Second})
	if client.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", client.Timeout)
	}
}

func TestRetryPolicyShouldRetry(t *testing.T) {
	policy := DefaultRetryPolicy()

	tests := []struct {
		name    string
		attempt int
		status  int
		err     error
		want    bool
	}{
		{"network error first attempt", 1, 0, errors.New("refused"), true},
		{"429 rate limited", 1, 429, nil, true},
		{"503 unavailable", 2, 503, nil, true},
		{"404 permanent", 1, 404, nil, false},
		{"200 success", 1, 200, nil, false},
		{"attempts exhausted", 3, 503, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.ShouldRetry(tt.attempt, tt.status, tt.err); got != tt.want {
				t.Errorf("ShouldRetry(%d, %d, %v) = %v, want %v", tt.attempt, tt.status, tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryPolicyBackoffCapped(t *testing.T) {
	policy := DefaultRetryPolicy()
	if got := policy.Backoff(1); got != policy.InitialBackoff {
		t.Errorf("Backoff(1) = %v, want %v", got, policy.InitialBackoff)
	}
	if got := policy.Backoff(2); got != 2*policy.InitialBackoff {
		t.Errorf("Backoff(2) = %v, want %v", got, 2*policy.InitialBackoff)
	}
	if got := policy.Backoff(10); got != policy.MaxBackoff {
		t.Errorf("Backoff(10) = %v, want cap %v", got, policy.MaxBackoff)
	}
}
