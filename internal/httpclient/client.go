package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
)

// Options controls client construction.
type Options struct {
	Timeout time.Duration
	// Fingerprint swaps the TLS dialer for one presenting a real
	// browser ClientHello. HTTP/2 is disabled on this path because the
	// transport speaks HTTP/1.1 over the fingerprinted connection.
	Fingerprint bool
	Profile     Profile
}

// New builds an HTTP client that follows redirects, reuses connections
// and optionally presents a browser TLS fingerprint.
func New(opts Options) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if opts.Fingerprint {
		if opts.Profile.Name == "" {
			opts.Profile = NewRotator().Pick()
		}
		transport.ForceAttemptHTTP2 = false
		transport.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
		transport.DialTLSContext = fingerprintDialer(opts.Profile)
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}
}

// fingerprintDialer performs the TLS handshake through utls so the
// ClientHello matches the profile's browser.
func fingerprintDialer(p Profile) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("split host port %q: %w", addr, err)
		}

		d := &net.Dialer{Timeout: 15 * time.Second}
		raw, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}

		cfg := &utls.Config{
			ServerName: host,
			NextProtos: []string{"http/1.1"},
		}
		conn := utls.UClient(raw, cfg, p.ClientHello)
		if err := conn.HandshakeContext(ctx); err != nil {
			raw.Close()
			return nil, fmt.Errorf("tls handshake with %s: %w", host, err)
		}
		return conn, nil
	}
}
