// Package parser extracts anchors and headings from HTML documents.
package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ikhlasbhojani/learnme/internal/types"
)

// Parse builds a queryable document from raw HTML.
func Parse(htmlContent string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
}

// Links extracts the unique anchors of a page, resolved against baseURL.
// Fragments are preserved so the link filter can reject same-page
// anchors; tracking parameters are stripped.
func Links(doc *goquery.Document, baseURL string) []types.DiscoveredLink {
	links := make([]types.DiscoveredLink, 0)
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		resolved := normalizeURL(href, baseURL)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, types.DiscoveredLink{
			URL:        resolved,
			AnchorText: strings.TrimSpace(s.Text()),
		})
	})

	return links
}

// Title returns the document's <title> text.
func Title(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// normalizeURL resolves href against baseURL and drops schemes that can
// never be documentation links.
func normalizeURL(href, baseURL string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(u)
	stripTrackingParams(resolved)
	return resolved.String()
}

var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid", "msclkid", "mc_cid", "mc_eid",
}

func stripTrackingParams(u *url.URL) {
	if u.RawQuery == "" {
		return
	}
	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
}
