package types

import (
	"time"
)

// ExtractionMode selects how topic URLs are discovered.
type ExtractionMode string

const (
	ModeHTTP    ExtractionMode = "http"
	ModeBrowser ExtractionMode = "browser"
	ModeAuto    ExtractionMode = "auto"
)

// SkipReason classifies why a discovered link was not verified.
type SkipReason string

const (
	SkipValidationFailed SkipReason = "validation_failed"
	SkipTimeout          SkipReason = "timeout"
	SkipRequestError     SkipReason = "request_error"
)

// Defaults applied when a CrawlContext field is zero.
const (
	DefaultMaxDepth        = 5
	DefaultMaxURLsPerLevel = 200
	DefaultTimeout         = 30 * time.Second
	DefaultCrawlBudget     = 3 * time.Minute
)

// CrawlContext holds per-crawl configuration. It is immutable for the
// duration of one crawl.
type CrawlContext struct {
	MainURL         string
	Timeout         time.Duration
	MaxDepth        int
	MaxURLsPerLevel int
	StrictMode      bool
	Mode            ExtractionMode
	CrawlBudget     time.Duration
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (c CrawlContext) WithDefaults() CrawlContext {
	if c.MaxDepth < 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MaxURLsPerLevel <= 0 {
		c.MaxURLsPerLevel = DefaultMaxURLsPerLevel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CrawlBudget <= 0 {
		c.CrawlBudget = DefaultCrawlBudget
	}
	if c.Mode == "" {
		c.Mode = ModeAuto
	}
	return c
}

// DiscoveredLink is the raw output of parsing one page's anchors, before
// filtering and validation.
type DiscoveredLink struct {
	URL        string
	AnchorText string
}

// VerifiedRecord is a link that passed filtering and validation, tagged
// with its BFS depth relative to the root (root is depth 0).
type VerifiedRecord struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Depth int    `json:"depth"`
}

// SkippedLink is a link that failed validation; retained for diagnostics,
// never crawled further.
type SkippedLink struct {
	URL        string     `json:"url"`
	Reason     SkipReason `json:"reason"`
	StatusCode int        `json:"statusCode,omitempty"`
}

// ValidationRecord is a cached validation outcome, keyed by absolute URL.
type ValidationRecord struct {
	Verified   bool
	StatusCode int
	Reason     SkipReason
}

// Topic is the final presentation-ready output unit.
type Topic struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Section     string `json:"section,omitempty"`
	Depth       int    `json:"depth"`
}

// ExtractionMetadata summarizes validation work done during one crawl.
type ExtractionMetadata struct {
	TotalChecked int `json:"totalChecked"`
	Verified     int `json:"verified"`
	Failed       int `json:"failed"`
	Unverified   int `json:"unverified"`
	MaxDepth     int `json:"maxDepth"`
}

// CrawlResult is the raw output of the BFS engine.
type CrawlResult struct {
	Records    []VerifiedRecord
	Skipped    []SkippedLink
	Unverified []SkippedLink
	Metadata   ExtractionMetadata
}

// ExtractionResult is the JSON-serializable shape returned to callers.
// On unrecoverable failure Topics is empty, TotalPages is 0 and Error is
// set; callers check Error rather than relying on panics.
type ExtractionResult struct {
	Topics          []Topic            `json:"topics"`
	SkippedLinks    []SkippedLink      `json:"skippedLinks"`
	UnverifiedLinks []SkippedLink      `json:"unverifiedLinks"`
	MainURL         string             `json:"mainUrl"`
	TotalPages      int                `json:"totalPages"`
	MaxDepth        int                `json:"maxDepth"`
	Metadata        ExtractionMetadata `json:"metadata"`
	ExtractionMode  ExtractionMode     `json:"extractionMode"`
	SPADetected     bool               `json:"spaDetected"`
	Error           string             `json:"error,omitempty"`
}

// ContentResult is the output of single-page content extraction.
type ContentResult struct {
	Content     string `json:"content"`
	PageTitle   string `json:"pageTitle,omitempty"`
	Source      string `json:"source"`
	ExtractedAt string `json:"extractedAt"`
}

// ExtractionRun is a persisted record of one topic-extraction invocation.
type ExtractionRun struct {
	ID          string    `json:"id"`
	MainURL     string    `json:"mainUrl"`
	UserID      string    `json:"userId,omitempty"`
	Mode        string    `json:"mode"`
	SPADetected bool      `json:"spaDetected"`
	TotalPages  int       `json:"totalPages"`
	MaxDepth    int       `json:"maxDepth"`
	Topics      []Topic   `json:"topics"`
	CreatedAt   time.Time `json:"createdAt"`
}
