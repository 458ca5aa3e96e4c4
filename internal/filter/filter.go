// Package filter decides whether a discovered URL is worth visiting.
package filter

import (
	"fmt"
	"net/url"
	"strings"
)

// Path substrings that mark auth/session pages and asset directories.
var excludedPathParts = []string{
	"/login", "/logout", "/signup", "/register", "/sign-in", "/sign-out",
	"/_next/", "/static/", "/assets/", "/images/", "/css/", "/js/",
}

// Extensions of binary or asset files that are never documentation pages.
var excludedExtensions = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".webp",
	".zip", ".tar", ".gz", ".tgz", ".bz2", ".7z", ".rar",
	".exe", ".dmg", ".msi", ".deb", ".rpm",
	".woff", ".woff2", ".ttf", ".eot", ".otf",
	".css", ".js", ".mjs", ".map",
	".mp4", ".mp3", ".webm", ".mov",
}

// Check reports whether candidate is a relevant documentation link when
// discovered on origin. Parse failures return a non-nil error together
// with false, so the fail-closed path is explicit for callers.
func Check(candidate, origin string) (bool, error) {
	cu, err := url.Parse(candidate)
	if err != nil {
		return false, fmt.Errorf("parse candidate %q: %w", candidate, err)
	}
	ou, err := url.Parse(origin)
	if err != nil {
		return false, fmt.Errorf("parse origin %q: %w", origin, err)
	}

	if cu.Scheme != "http" && cu.Scheme != "https" {
		return false, nil
	}

	if registrableDomain(cu.Hostname()) != registrableDomain(ou.Hostname()) {
		return false, nil
	}

	// Same-page anchor links point at content we already have.
	if cu.Path == ou.Path && cu.Fragment != "" {
		return false, nil
	}

	pathLower := strings.ToLower(cu.Path)
	for _, part := range excludedPathParts {
		if strings.Contains(pathLower, part) {
			return false, nil
		}
	}

	for _, ext := range excludedExtensions {
		if strings.HasSuffix(pathLower, ext) {
			return false, nil
		}
	}

	return true, nil
}

// IsRelevant is Check with the parse error folded into the verdict.
func IsRelevant(candidate, origin string) bool {
	ok, err := Check(candidate, origin)
	return err == nil && ok
}

// registrableDomain approximates the "same site" suffix as the last two
// dot-separated labels of the host, so docs.example.com and
// api.example.com compare equal.
func registrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
