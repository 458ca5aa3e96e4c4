// Package crawler walks a documentation site breadth-first, producing
// verified (url, title, depth) records.
package crawler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ikhlasbhojani/learnme/internal/fetcher"
	"github.com/ikhlasbhojani/learnme/internal/filter"
	"github.com/ikhlasbhojani/learnme/internal/parser"
	"github.com/ikhlasbhojani/learnme/internal/titles"
	"github.com/ikhlasbhojani/learnme/internal/types"
	"github.com/ikhlasbhojani/learnme/internal/validator"
)

// queueItem is one frontier entry.
type queueItem struct {
	url   string
	depth int
}

// Engine orchestrates fetch, filter, title resolution and validation
// across BFS levels. Validation gates expansion: an unverified link is
// never explored further.
type Engine struct {
	fetcher   *fetcher.Fetcher
	resolver  *titles.Resolver
	validator *validator.Validator
	log       *zap.Logger
}

// New creates a crawl engine.
func New(f *fetcher.Fetcher, r *titles.Resolver, v *validator.Validator, log *zap.Logger) *Engine {
	return &Engine{fetcher: f, resolver: r, validator: v, log: log}
}

// Crawl runs the BFS from cc.MainURL. The returned error is non-nil
// only when the root page itself is unreachable; per-page failures
// deeper in the traversal are logged and skipped. Output records are
// sorted by (depth, url) so results are deterministic regardless of
// validation completion order.
func (e *Engine) Crawl(ctx context.Context, cc types.CrawlContext) (types.CrawlResult, error) {
	cc = cc.WithDefaults()

	ctx, cancel := context.WithTimeout(ctx, cc.CrawlBudget)
	defer cancel()

	result := types.CrawlResult{
		Records:    make([]types.VerifiedRecord, 0),
		Skipped:    make([]types.SkippedLink, 0),
		Unverified: make([]types.SkippedLink, 0),
	}

	queue := []queueItem{{url: cc.MainURL, depth: 0}}
	visited := map[string]bool{cc.MainURL: true}
	local := validator.NewLocalCache()

	var mu sync.Mutex // guards result, queue, visited during fan-out

	for len(queue) > 0 {
		if ctx.Err() != nil {
			e.log.Warn("crawl budget exhausted, returning partial results",
				zap.String("url", cc.MainURL),
				zap.Int("pending", len(queue)))
			break
		}

		item := queue[0]
		queue = queue[1:]

		html, err := e.fetcher.Fetch(ctx, item.url)
		if err != nil {
			if item.depth == 0 {
				return result, fmt.Errorf("fetch root page: %w", err)
			}
			e.log.Warn("page fetch failed, continuing crawl",
				zap.String("url", item.url),
				zap.Int("depth", item.depth),
				zap.Error(err))
			continue
		}

		doc, err := parser.Parse(html)
		if err != nil {
			e.log.Warn("page parse failed, continuing crawl",
				zap.String("url", item.url), zap.Error(err))
			continue
		}

		candidates := e.relevantLinks(doc, item.url, cc.MaxURLsPerLevel)

		var wg sync.WaitGroup
		for _, link := range candidates {
			mu.Lock()
			if visited[link.URL] {
				mu.Unlock()
				continue
			}
			visited[link.URL] = true
			mu.Unlock()

			wg.Add(1)
			go func(link types.DiscoveredLink, pageURL string, depth int) {
				defer wg.Done()

				title := e.resolver.Resolve(ctx, link.URL, link.AnchorText, doc, pageURL)
				rec := e.validator.Validate(ctx, link.URL, local, cc.Timeout)

				mu.Lock()
				defer mu.Unlock()

				result.Metadata.TotalChecked++
				if rec.Verified {
					childDepth := depth + 1
					result.Metadata.Verified++
					result.Records = append(result.Records, types.VerifiedRecord{
						URL:   link.URL,
						Title: title,
						Depth: childDepth,
					})
					if childDepth > result.Metadata.MaxDepth {
						result.Metadata.MaxDepth = childDepth
					}
					if childDepth < cc.MaxDepth && ctx.Err() == nil {
						queue = append(queue, queueItem{url: link.URL, depth: childDepth})
					}
					return
				}

				skipped := types.SkippedLink{
					URL:        link.URL,
					Reason:     rec.Reason,
					StatusCode: rec.StatusCode,
				}
				result.Metadata.Failed++
				result.Skipped = append(result.Skipped, skipped)
				if !cc.StrictMode {
					result.Metadata.Unverified++
					result.Unverified = append(result.Unverified, skipped)
				}
			}(link, item.url, item.depth)
		}
		wg.Wait()
	}

	sortRecords(result.Records)
	return result, nil
}

// relevantLinks filters a page's anchors and caps them at the per-page
// expansion limit. Filter errors count as rejection.
func (e *Engine) relevantLinks(doc *goquery.Document, pageURL string, limit int) []types.DiscoveredLink {
	links := parser.Links(doc, pageURL)
	kept := make([]types.DiscoveredLink, 0, len(links))
	for _, link := range links {
		ok, err := filter.Check(link.URL, pageURL)
		if err != nil {
			e.log.Debug("link rejected by filter",
				zap.String("url", link.URL), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		kept = append(kept, link)
		if len(kept) >= limit {
			break
		}
	}
	return kept
}

func sortRecords(records []types.VerifiedRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Depth != records[j].Depth {
			return records[i].Depth < records[j].Depth
		}
		return records[i].URL < records[j].URL
	})
}
