package renderer

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Framework fingerprints matched against lower-cased HTML. Docusaurus and
// Nextra markers are included because documentation sites are the common
// input here.
var spaIndicators = []*regexp.Regexp{
	regexp.MustCompile(`react`),
	regexp.MustCompile(`_next`),
	regexp.MustCompile(`__next_data__`),
	regexp.MustCompile(`vue`),
	regexp.MustCompile(`v-app`),
	regexp.MustCompile(`ng-app`),
	regexp.MustCompile(`angular`),
	regexp.MustCompile(`docusaurus`),
	regexp.MustCompile(`data-theme=`),
	regexp.MustCompile(`<div id="root"`),
	regexp.MustCompile(`<div id="app"`),
	regexp.MustCompile(`<div id="__docusaurus"`),
	regexp.MustCompile(`<script[^>]*type="module"`),
	regexp.MustCompile(`webpack`),
	regexp.MustCompile(`vite`),
}

const (
	maxNavSamples    = 3
	navSampleTimeout = 10 * time.Second
)

// Detector decides whether a site needs a rendering browser to expose
// its navigation. Detection errors resolve to false so callers stay on
// the plain HTTP path.
type Detector struct {
	client *http.Client
	log    *zap.Logger
}

func NewDetector(client *http.Client, log *zap.Logger) *Detector {
	return &Detector{client: client, log: log}
}

// Detect fetches rawURL and applies three heuristics in order: framework
// fingerprints in the HTML, a 500 on the root URL, and nav links that
// fail a direct HEAD. Any one of them marks the site as an SPA.
func (d *Detector) Detect(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Warn("spa detection fetch failed, assuming http mode",
			zap.String("url", rawURL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusInternalServerError {
		d.log.Info("root url returned 500, treating as client-side routed",
			zap.String("url", rawURL))
		return true
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return false
	}
	html := string(body)

	if indicator := matchIndicator(html); indicator != "" {
		d.log.Info("spa framework fingerprint found",
			zap.String("url", rawURL), zap.String("indicator", indicator))
		return true
	}

	return d.navLinksBroken(ctx, rawURL, html)
}

func matchIndicator(html string) string {
	lower := strings.ToLower(html)
	for _, re := range spaIndicators {
		if re.MatchString(lower) {
			return re.String()
		}
	}
	return ""
}

// navLinksBroken samples up to 3 links from navigation containers and
// reports true when any of them 400s over direct HTTP. Nav links that
// exist only in the client router do exactly that.
func (d *Detector) navLinksBroken(ctx context.Context, pageURL, html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return false
	}

	var targets []string
	seen := make(map[string]bool)
	doc.Find("nav a[href], aside a[href], .sidebar a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref).String()
		if abs == pageURL || seen[abs] {
			return true
		}
		seen[abs] = true
		targets = append(targets, abs)
		return len(targets) < maxNavSamples
	})

	for _, target := range targets {
		sampleCtx, cancel := context.WithTimeout(ctx, navSampleTimeout)
		req, err := http.NewRequestWithContext(sampleCtx, http.MethodHead, target, nil)
		if err != nil {
			cancel()
			continue
		}
		resp, err := d.client.Do(req)
		cancel()
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			d.log.Info("nav link unreachable over plain http",
				zap.String("url", target), zap.Int("status", resp.StatusCode))
			return true
		}
	}
	return false
}
