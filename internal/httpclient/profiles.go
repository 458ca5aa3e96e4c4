// Package httpclient builds the HTTP clients used for fetching and
// validating documentation pages. Some documentation hosts sit behind
// bot protection that rejects default Go clients, so requests carry
// real browser headers and can optionally present a matching TLS
// fingerprint.
package httpclient

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	utls "github.com/refraction-networking/utls"
)

// Profile pairs browser request headers with the TLS ClientHello the
// same browser would send.
type Profile struct {
	Name           string
	UserAgent      string
	Accept         string
	AcceptLanguage string
	SecChUA        string
	SecChUAMobile  string
	ClientHello    utls.ClientHelloID
}

var profiles = []Profile{
	{
		Name:           "chrome-linux",
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",
		SecChUA:        `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		SecChUAMobile:  "?0",
		ClientHello:    utls.HelloChrome_131,
	},
	{
		Name:           "chrome-windows",
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",
		SecChUA:        `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		SecChUAMobile:  "?0",
		ClientHello:    utls.HelloChrome_131,
	},
	{
		Name:           "firefox-windows",
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:134.0) Gecko/20100101 Firefox/134.0",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.5",
		ClientHello:    utls.HelloFirefox_120,
	},
	{
		Name:           "safari-macos",
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",
		ClientHello:    utls.HelloSafari_16_0,
	},
}

// Rotator hands out browser profiles and stamps their headers onto
// outgoing requests.
type Rotator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRotator creates a profile rotator.
func NewRotator() *Rotator {
	return &Rotator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Pick returns a random browser profile.
func (r *Rotator) Pick() Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return profiles[r.rnd.Intn(len(profiles))]
}

// ApplyHeaders sets browser-like headers from a random profile.
func (r *Rotator) ApplyHeaders(req *http.Request) {
	p := r.Pick()
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Accept", p.Accept)
	req.Header.Set("Accept-Language", p.AcceptLanguage)
	if p.SecChUA != "" {
		req.Header.Set("Sec-Ch-Ua", p.SecChUA)
		req.Header.Set("Sec-Ch-Ua-Mobile", p.SecChUAMobile)
	}
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}
