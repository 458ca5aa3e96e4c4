// Package service ties the extraction pipeline together: mode
// selection, crawl, topic organization, and run persistence.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ikhlasbhojani/learnme/internal/content"
	"github.com/ikhlasbhojani/learnme/internal/crawler"
	"github.com/ikhlasbhojani/learnme/internal/fetcher"
	"github.com/ikhlasbhojani/learnme/internal/filter"
	"github.com/ikhlasbhojani/learnme/internal/httpclient"
	"github.com/ikhlasbhojani/learnme/internal/parser"
	"github.com/ikhlasbhojani/learnme/internal/renderer"
	"github.com/ikhlasbhojani/learnme/internal/storage"
	"github.com/ikhlasbhojani/learnme/internal/topics"
	"github.com/ikhlasbhojani/learnme/internal/types"
)

// BrowserExtractor is the rendering path used for SPA sites.
type BrowserExtractor interface {
	Available() bool
	ExtractLinks(ctx context.Context, mainURL string, timeout time.Duration, maxLinks int) ([]types.VerifiedRecord, error)
}

// SPADetector decides whether a site needs the rendering path.
type SPADetector interface {
	Detect(ctx context.Context, url string) bool
}

// RunStore persists extraction runs; nil-able via the noop in tests.
type RunStore interface {
	SaveRun(ctx context.Context, run types.ExtractionRun) (types.ExtractionRun, error)
	ListRuns(ctx context.Context, userID string, limit int) ([]types.ExtractionRun, error)
	GetRun(ctx context.Context, id string) (types.ExtractionRun, error)
}

// Extractor runs topic and content extraction end to end.
type Extractor struct {
	engine     *crawler.Engine
	detector   SPADetector
	browser    BrowserExtractor
	fetcher    *fetcher.Fetcher
	summarizer content.Summarizer
	store      RunStore
	browserTO  time.Duration
	log        *zap.Logger
}

// Options configures an Extractor. Store and Browser may be nil when
// persistence or rendering is disabled.
type Options struct {
	Engine         *crawler.Engine
	Detector       SPADetector
	Browser        BrowserExtractor
	Fetcher        *fetcher.Fetcher
	Summarizer     content.Summarizer
	Store          RunStore
	BrowserTimeout time.Duration
	Log            *zap.Logger
}

func New(opts Options) *Extractor {
	if opts.Summarizer == nil {
		opts.Summarizer = content.Passthrough{}
	}
	if opts.BrowserTimeout <= 0 {
		opts.BrowserTimeout = 60 * time.Second
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Extractor{
		engine:     opts.Engine,
		detector:   opts.Detector,
		browser:    opts.Browser,
		fetcher:    opts.Fetcher,
		summarizer: opts.Summarizer,
		store:      opts.Store,
		browserTO:  opts.BrowserTimeout,
		log:        opts.Log,
	}
}

// ExtractTopics crawls a documentation site and returns its organized
// topic list. It never panics and never returns a Go error to the
// caller: total failure is reported through the Error field so the
// result shape stays uniform.
func (e *Extractor) ExtractTopics(ctx context.Context, userID string, cc types.CrawlContext) types.ExtractionResult {
	cc = cc.WithDefaults()
	result := types.ExtractionResult{
		Topics:          []types.Topic{},
		SkippedLinks:    []types.SkippedLink{},
		UnverifiedLinks: []types.SkippedLink{},
		MainURL:         cc.MainURL,
		ExtractionMode:  cc.Mode,
	}

	mode := cc.Mode
	if mode == types.ModeAuto {
		mode = types.ModeHTTP
		if e.detector != nil && e.detector.Detect(ctx, cc.MainURL) {
			result.SPADetected = true
			mode = types.ModeBrowser
		}
	}

	var crawl types.CrawlResult
	var err error
	switch {
	case mode == types.ModeBrowser && e.browser != nil && e.browser.Available():
		crawl, err = e.extractWithBrowser(ctx, cc)
		if err != nil {
			e.log.Warn("browser extraction failed, falling back to http",
				zap.String("url", cc.MainURL), zap.Error(err))
			mode = types.ModeHTTP
			crawl, err = e.engine.Crawl(ctx, cc)
		}
	default:
		if mode == types.ModeBrowser {
			e.log.Warn("browser mode requested but unavailable, using http",
				zap.String("url", cc.MainURL))
		}
		mode = types.ModeHTTP
		crawl, err = e.engine.Crawl(ctx, cc)
	}
	result.ExtractionMode = mode

	if err != nil {
		result.Error = fmt.Sprintf("extraction failed for %s: %v", cc.MainURL, err)
		return result
	}

	result.Topics = topics.Organize(crawl.Records, cc.MainURL)
	result.SkippedLinks = crawl.Skipped
	result.UnverifiedLinks = crawl.Unverified
	result.Metadata = crawl.Metadata
	result.TotalPages = len(result.Topics)
	result.MaxDepth = crawl.Metadata.MaxDepth

	e.persist(ctx, userID, result)
	return result
}

// extractWithBrowser renders the root page and treats the extracted
// navigation links as the complete depth-1 result set. Rendered nav
// menus carry social and external links, so the same relevance filter
// the crawl loop uses applies here too.
func (e *Extractor) extractWithBrowser(ctx context.Context, cc types.CrawlContext) (types.CrawlResult, error) {
	records, err := e.browser.ExtractLinks(ctx, cc.MainURL, e.browserTO, cc.MaxURLsPerLevel)
	if err != nil {
		return types.CrawlResult{}, err
	}

	kept := make([]types.VerifiedRecord, 0, len(records))
	for _, rec := range records {
		if !filter.IsRelevant(rec.URL, cc.MainURL) {
			continue
		}
		kept = append(kept, rec)
	}

	result := types.CrawlResult{
		Records:    kept,
		Skipped:    []types.SkippedLink{},
		Unverified: []types.SkippedLink{},
		Metadata: types.ExtractionMetadata{
			TotalChecked: len(records),
			Verified:     len(kept),
		},
	}
	if len(kept) > 0 {
		result.Metadata.MaxDepth = 1
	}
	return result, nil
}

func (e *Extractor) persist(ctx context.Context, userID string, result types.ExtractionResult) {
	if e.store == nil {
		return
	}
	run := types.ExtractionRun{
		MainURL:     result.MainURL,
		UserID:      userID,
		Mode:        string(result.ExtractionMode),
		SPADetected: result.SPADetected,
		TotalPages:  result.TotalPages,
		MaxDepth:    result.MaxDepth,
		Topics:      result.Topics,
	}
	if _, err := e.store.SaveRun(ctx, run); err != nil {
		e.log.Warn("failed to persist extraction run",
			zap.String("url", result.MainURL), zap.Error(err))
	}
}

// ExtractContent fetches one page, extracts its readable text, and
// summarizes it. Unlike the crawl loop, this path retries transient
// failures.
func (e *Extractor) ExtractContent(ctx context.Context, url string) (types.ContentResult, error) {
	html, err := e.fetchWithRetry(ctx, url)
	if err != nil {
		return types.ContentResult{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	doc, err := parser.Parse(html)
	if err != nil {
		return types.ContentResult{}, fmt.Errorf("parse %s: %w", url, err)
	}

	text := content.PrepareInput(content.Extract(doc))
	result, err := e.summarizer.Summarize(ctx, text, url)
	if err != nil {
		return types.ContentResult{}, fmt.Errorf("summarize %s: %w", url, err)
	}
	if result.PageTitle == "" {
		result.PageTitle = parser.Title(doc)
	}
	return result, nil
}

func (e *Extractor) fetchWithRetry(ctx context.Context, url string) (string, error) {
	policy := httpclient.DefaultRetryPolicy()
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		html, err := e.fetcher.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		// HTTP errors retry on status, everything else on the error itself.
		status := 0
		retryErr := err
		var fe *fetcher.FetchError
		if errors.As(err, &fe) && fe.Kind == fetcher.KindHTTPError {
			status = fe.StatusCode
			retryErr = nil
		}
		if !policy.ShouldRetry(attempt, status, retryErr) {
			break
		}

		select {
		case <-time.After(policy.Backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// ListRuns exposes recent extraction history.
func (e *Extractor) ListRuns(ctx context.Context, userID string, limit int) ([]types.ExtractionRun, error) {
	if e.store == nil {
		return []types.ExtractionRun{}, nil
	}
	return e.store.ListRuns(ctx, userID, limit)
}

var _ SPADetector = (*renderer.Detector)(nil)
var _ BrowserExtractor = (*renderer.Browser)(nil)
var _ RunStore = (*storage.Store)(nil)
