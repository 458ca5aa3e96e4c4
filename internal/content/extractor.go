// Package content extracts readable text from documentation pages and
// prepares it for summarization.
package content

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Elements that never carry article text.
var strippedElements = []string{
	"script", "style", "nav", "footer", "header", "aside",
	"noscript", "iframe", "embed", "object", "form", "button",
	"input", "select", "textarea", "svg", "canvas", "audio", "video",
}

// Class and id substrings marking chrome rather than content.
var chromeKeywords = []string{
	"nav", "menu", "sidebar", "footer", "header", "advertisement",
	"cookie", "banner", "popup", "modal", "overlay", "skip", "breadcrumb",
	"toc", "table-of-contents", "social", "share", "comment", "related",
}

// Short lines matching these are UI furniture, not prose.
var uiPatterns = []string{
	"skip to", "menu", "navigation", "home", "about", "contact",
	"privacy", "terms", "cookie", "subscribe", "follow us", "share",
	"previous", "next", "back to top", "scroll to", "click here",
	"read more", "learn more", "view all", "see all", "show more",
	"sign up", "log in", "register", "login", "logout", "search",
	"filter", "sort", "categories", "tags", "related", "popular",
	"recent posts", "archives", "rss", "feed", "newsletter",
}

var (
	blankRuns = regexp.MustCompile(`\n{3,}`)
	spaceRuns = regexp.MustCompile(` {3,}`)
)

// Extract pulls the main textual content out of a page. It strips
// non-content elements and chrome containers, picks the most specific
// content region available, and cleans the resulting lines.
func Extract(doc *goquery.Document) string {
	doc.Find(strings.Join(strippedElements, ", ")).Remove()

	doc.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		marker := strings.ToLower(class + " " + id)
		for _, kw := range chromeKeywords {
			if strings.Contains(marker, kw) {
				s.Remove()
				return
			}
		}
	})

	region := doc.Find("main").First()
	if region.Length() == 0 {
		region = doc.Find("article").First()
	}
	if region.Length() == 0 {
		region = doc.Find(`div[class*="content"], div[id*="content"]`).First()
	}
	if region.Length() == 0 {
		region = doc.Find("section").First()
	}
	if region.Length() == 0 {
		region = doc.Find("body")
	}

	var sb strings.Builder
	for _, node := range region.Nodes {
		collectText(node, &sb)
	}

	return cleanText(sb.String())
}

// collectText emits each text node on its own line so block boundaries
// survive flattening.
func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// cleanText drops lines that are navigation noise, bare URLs, or
// decoration, then collapses excess whitespace.
func cleanText(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) < 10 {
			continue
		}
		if isUIFurniture(line) || isURLOrEmail(line) || isDecoration(line) {
			continue
		}
		kept = append(kept, line)
	}
	out := strings.Join(kept, "\n")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	out = spaceRuns.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

func isUIFurniture(line string) bool {
	if len(line) >= 50 {
		return false
	}
	lower := strings.ToLower(line)
	for _, pattern := range uiPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func isURLOrEmail(line string) bool {
	if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
		return true
	}
	return strings.Contains(line, "@") && strings.Contains(line, ".") && !strings.Contains(line, " ")
}

// isDecoration reports lines made of too few distinct characters, like
// separator rules or repeated bullets.
func isDecoration(line string) bool {
	distinct := make(map[rune]bool)
	for _, r := range strings.ReplaceAll(line, " ", "") {
		distinct[r] = true
	}
	return len(distinct) < 3
}
