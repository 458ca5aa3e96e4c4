// Package renderer renders SPA documentation sites in headless Chrome
// and extracts their navigation links.
package renderer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/ikhlasbhojani/learnme/internal/titles"
	"github.com/ikhlasbhojani/learnme/internal/types"
)

// Chrome startup is expensive, so a single exec allocator is shared by
// every render in the process. Init failure is remembered and returned
// on every subsequent call; it never panics.
var (
	allocOnce   sync.Once
	allocCtx    context.Context
	allocCancel context.CancelFunc
	allocErr    error
)

func sharedAllocator() (context.Context, error) {
	allocOnce.Do(func() {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)

		// Probe for a usable Chrome binary now so callers learn about a
		// missing browser at startup rather than mid-extraction.
		probeCtx, probeCancel := chromedp.NewContext(allocCtx)
		defer probeCancel()
		probeCtx, timeoutCancel := context.WithTimeout(probeCtx, 15*time.Second)
		defer timeoutCancel()
		if err := chromedp.Run(probeCtx); err != nil {
			allocErr = fmt.Errorf("start headless chrome: %w", err)
			allocCancel()
		}
	})
	return allocCtx, allocErr
}

// Shutdown releases the shared Chrome allocator. Call once at process
// exit; renders started afterwards will fail.
func Shutdown() {
	if allocCancel != nil && allocErr == nil {
		allocCancel()
	}
}

// navLink mirrors the object shape produced by the extraction script.
type navLink struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// extractScript walks prioritized navigation-container selectors in the
// rendered DOM. When fewer than 5 links match, it falls back to any link
// positioned in the left 30% of the viewport, which is where doc-site
// sidebars live. Hash links with empty text borrow their target
// heading's text.
const extractScript = `
(() => {
	const links = [];
	const seen = new Set();

	const selectors = [
		'nav a[href]',
		'aside a[href]',
		'.sidebar a[href]',
		'[class*="nav"] a[href]',
		'[class*="menu"] a[href]',
		'[class*="toc"] a[href]',
		'[class*="table-of-contents"] a[href]',
		'[data-sidebar] a[href]',
		'[role="navigation"] a[href]',
		'[aria-label*="navigation"] a[href]',
		'[aria-label*="menu"] a[href]',
		'ul[class*="nav"] a[href]',
		'ul[class*="menu"] a[href]',
		'div[class*="sidebar"] a[href]',
		'div[class*="nav"] a[href]',
		'nav > ul a[href]',
		'aside > ul a[href]'
	];

	const headingText = (href, text) => {
		if (href && href.includes('#') && (!text || text.length < 2)) {
			const hashId = href.split('#')[1];
			if (hashId) {
				const heading = document.getElementById(hashId);
				if (heading) {
					return heading.innerText.trim();
				}
			}
		}
		return text;
	};

	selectors.forEach(selector => {
		try {
			document.querySelectorAll(selector).forEach(el => {
				const href = el.href;
				const text = headingText(href, el.innerText.trim());
				if (href && !seen.has(href)) {
					seen.add(href);
					links.push({ href, text: text || 'Untitled' });
				}
			});
		} catch (e) {
			// selector unsupported in this engine
		}
	});

	if (links.length < 5) {
		document.querySelectorAll('a[href]').forEach(el => {
			const rect = el.getBoundingClientRect();
			const href = el.href;
			const text = headingText(href, el.innerText.trim());
			if (rect.left < window.innerWidth * 0.3 &&
				href &&
				!seen.has(href) &&
				href.includes(window.location.hostname)) {
				seen.add(href);
				links.push({ href, text: text || 'Untitled' });
			}
		});
	}

	return links;
})()
`

// Browser extracts navigation links from rendered pages.
type Browser struct {
	log *zap.Logger
}

func NewBrowser(log *zap.Logger) *Browser {
	return &Browser{log: log}
}

// Available reports whether headless Chrome can be started. The first
// call pays the startup probe; later calls return the cached result.
func (b *Browser) Available() bool {
	_, err := sharedAllocator()
	if err != nil {
		b.log.Warn("headless chrome unavailable, http mode only", zap.Error(err))
	}
	return err == nil
}

// ExtractLinks renders mainURL, runs the navigation query, and returns
// every discovered link as a depth-1 record. The browser resolved these
// links by rendering them, so no separate HTTP validation is needed.
func (b *Browser) ExtractLinks(ctx context.Context, mainURL string, timeout time.Duration, maxLinks int) ([]types.VerifiedRecord, error) {
	alloc, err := sharedAllocator()
	if err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(alloc)
	defer cancel()
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, timeout)
	defer timeoutCancel()

	var raw []navLink
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(mainURL),
		chromedp.WaitReady("body"),
		// Client routers populate the sidebar after load; give them a beat.
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(extractScript, &raw),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", mainURL, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	b.log.Info("browser extraction complete",
		zap.String("url", mainURL), zap.Int("found", len(raw)))

	records := make([]types.VerifiedRecord, 0, len(raw))
	seen := make(map[string]bool)
	for _, link := range raw {
		if link.Href == "" || seen[link.Href] || link.Href == mainURL {
			continue
		}
		seen[link.Href] = true
		title := strings.TrimSpace(link.Text)
		if title == "" || title == "Untitled" {
			title = titles.FromPath(link.Href)
		}
		records = append(records, types.VerifiedRecord{URL: link.Href, Title: title, Depth: 1})
		if len(records) >= maxLinks {
			b.log.Warn("browser links truncated",
				zap.Int("limit", maxLinks), zap.Int("found", len(raw)))
			break
		}
	}
	return records, nil
}
