// Package topics turns raw verified crawl records into the
// presentation-ready topic list.
package topics

import (
	"net/url"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ikhlasbhojani/learnme/internal/types"
)

// URL keywords consulted only when the path carries no segments to name
// a section after.
var sectionKeywords = []struct {
	keywords []string
	section  string
}{
	{[]string{"ref/", "reference/"}, "API Reference"},
	{[]string{"examples/"}, "Examples"},
	{[]string{"guide/", "guides/", "tutorial/"}, "Guides"},
	{[]string{"quickstart", "getting_started"}, "Getting Started"},
	{[]string{"overview"}, "Overview"},
}

// Organize dedupes records by URL (first occurrence wins), drops the
// root itself, assigns section and id from the URL path, and sorts by
// (depth, url). Output is deterministic for a given input and running
// it over an already-organized list changes nothing.
func Organize(records []types.VerifiedRecord, mainURL string) []types.Topic {
	topics := make([]types.Topic, 0, len(records))
	seen := make(map[string]bool)

	for _, rec := range records {
		if rec.URL == mainURL || seen[rec.URL] {
			continue
		}
		seen[rec.URL] = true

		segments := pathSegments(rec.URL)
		topics = append(topics, types.Topic{
			ID:          topicID(segments),
			Title:       rec.Title,
			URL:         rec.URL,
			Description: "Documentation page: " + rec.Title,
			Section:     section(segments, rec.URL),
			Depth:       rec.Depth,
		})
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Depth != topics[j].Depth {
			return topics[i].Depth < topics[j].Depth
		}
		return topics[i].URL < topics[j].URL
	})
	return topics
}

func pathSegments(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// topicID joins the lower-cased path segments with dashes; the site
// root becomes "home".
func topicID(segments []string) string {
	if len(segments) == 0 {
		return "home"
	}
	return strings.ToLower(strings.Join(segments, "-"))
}

// section names the display section after the first path segment when
// one exists; segment-less URLs fall back to keyword matching over the
// whole URL, then the generic bucket.
func section(segments []string, rawURL string) string {
	if len(segments) > 0 {
		return titleCase(segments[0])
	}
	lower := strings.ToLower(rawURL)
	for _, kw := range sectionKeywords {
		for _, k := range kw.keywords {
			if strings.Contains(lower, k) {
				return kw.section
			}
		}
	}
	return "Documentation"
}

func titleCase(segment string) string {
	words := strings.FieldsFunc(segment, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		// First character may be multi-byte once percent-decoded.
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	if len(words) == 0 {
		return "Documentation"
	}
	return strings.Join(words, " ")
}
