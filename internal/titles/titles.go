// Package titles derives human-readable titles for discovered links.
package titles

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ikhlasbhojani/learnme/internal/httpclient"
)

// fetchTimeout bounds the optional page fetch; title lookup is best
// effort and must not slow the crawl down.
const fetchTimeout = 5 * time.Second

// maxAnchorLen is the longest anchor text accepted verbatim.
const maxAnchorLen = 100

// Resolver determines titles with a fast anchor-text path and a
// short-timeout page fetch as fallback.
type Resolver struct {
	client  *http.Client
	rotator *httpclient.Rotator
}

// New creates a resolver sharing the given HTTP client.
func New(client *http.Client) *Resolver {
	return &Resolver{client: client, rotator: httpclient.NewRotator()}
}

// Resolve picks a title for candidateURL. Precedence: anchor text, the
// source page's heading for same-page fragments, the candidate page's
// own h1/h2/<title>, then a title derived from the URL path. Network
// failures never propagate.
func (r *Resolver) Resolve(ctx context.Context, candidateURL, anchorText string, sourceDoc *goquery.Document, sourceURL string) string {
	anchorText = strings.TrimSpace(anchorText)
	if anchorText != "" && utf8.RuneCountInString(anchorText) < maxAnchorLen {
		return anchorText
	}

	cu, err := url.Parse(candidateURL)
	if err != nil {
		return fallbackTitle(anchorText, nil)
	}

	if sourceDoc != nil {
		if su, err := url.Parse(sourceURL); err == nil && cu.Path == su.Path && cu.Fragment != "" {
			if title := fragmentHeading(sourceDoc, cu.Fragment); title != "" {
				return title
			}
		}
	}

	if title := r.fetchTitle(ctx, candidateURL); title != "" {
		return title
	}

	return fallbackTitle(anchorText, cu)
}

// FromPath derives a title from the last non-empty path segment.
func FromPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "Home"
	}
	return fallbackTitle("", u)
}

// fragmentHeading searches the source document for the element the
// fragment points at, or any heading whose id contains it.
func fragmentHeading(doc *goquery.Document, fragment string) string {
	if sel := doc.Find("#" + cssEscape(fragment)); sel.Length() > 0 {
		if text := strings.TrimSpace(sel.First().Text()); text != "" {
			return text
		}
	}

	fragLower := strings.ToLower(fragment)
	var found string
	doc.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(i int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		if strings.Contains(strings.ToLower(id), fragLower) {
			found = strings.TrimSpace(s.Text())
			return false
		}
		return true
	})
	return found
}

// fetchTitle retrieves the candidate page and extracts its heading.
func (r *Resolver) fetchTitle(ctx context.Context, pageURL string) string {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	r.rotator.ApplyHeaders(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return ""
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return ""
	}

	if h1 := firstElementText(root, "h1"); h1 != "" {
		return h1
	}
	if h2 := firstElementText(root, "h2"); h2 != "" {
		return h2
	}
	if title := firstElementText(root, "title"); title != "" {
		return stripSiteSuffix(title)
	}
	return ""
}

// firstElementText walks the tree for the first element with the given
// tag and returns its flattened text.
func firstElementText(root *html.Node, tag string) string {
	var walk func(*html.Node) string
	walk = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == tag {
			return strings.TrimSpace(nodeText(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if text := walk(c); text != "" {
				return text
			}
		}
		return ""
	}
	return walk(root)
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// stripSiteSuffix removes trailing " - Site" / " | Site" decorations
// that documentation <title> tags commonly carry.
func stripSiteSuffix(title string) string {
	if idx := strings.Index(title, " - "); idx > 0 {
		title = title[:idx]
	}
	if idx := strings.Index(title, " | "); idx > 0 {
		title = title[:idx]
	}
	return strings.TrimSpace(title)
}

// fallbackTitle prefers the anchor text, then the last URL path
// segment with separators replaced and words title-cased.
func fallbackTitle(anchorText string, u *url.URL) string {
	if anchorText != "" {
		return anchorText
	}
	if u == nil {
		return "Home"
	}

	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "" {
			continue
		}
		seg := strings.NewReplacer("-", " ", "_", " ").Replace(segments[i])
		return titleCase(seg)
	}
	return "Home"
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		// Path segments are already percent-decoded, so the first
		// character may be multi-byte.
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// cssEscape quotes characters that would change the meaning of an id
// selector.
func cssEscape(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
