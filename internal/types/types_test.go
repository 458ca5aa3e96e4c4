package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestCrawlContextWithDefaults(t *testing.T) {
	cc := CrawlContext{MainURL: "https://example.com", MaxDepth: -1}.WithDefaults()

	if cc.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", cc.MaxDepth, DefaultMaxDepth)
	}
	if cc.MaxURLsPerLevel != DefaultMaxURLsPerLevel {
		t.Errorf("MaxURLsPerLevel = %d, want %d", cc.MaxURLsPerLevel, DefaultMaxURLsPerLevel)
	}
	if cc.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cc.Timeout, DefaultTimeout)
	}
	if cc.CrawlBudget != DefaultCrawlBudget {
		t.Errorf("CrawlBudget = %v, want %v", cc.CrawlBudget, DefaultCrawlBudget)
	}
	if cc.Mode != ModeAuto {
		t.Errorf("Mode = %q, want auto", cc.Mode)
	}
}

func TestCrawlContextZeroDepthPreserved(t *testing.T) {
	// MaxDepth 0 means root-level extraction only; it must not be
	// replaced by the default.
	cc := CrawlContext{MainURL: "https://example.com", MaxDepth: 0, Timeout: time.Second}.WithDefaults()
	if cc.MaxDepth != 0 {
		t.Errorf("MaxDepth = %d, want 0 preserved", cc.MaxDepth)
	}
}

func TestExtractionResultJSONShape(t *testing.T) {
	result := ExtractionResult{
		Topics:          []Topic{{ID: "a", Title: "A", URL: "https://e.com/a", Depth: 1}},
		SkippedLinks:    []SkippedLink{},
		UnverifiedLinks: []SkippedLink{},
		MainURL:         "https://e.com/",
		TotalPages:      1,
		MaxDepth:        1,
		ExtractionMode:  ModeHTTP,
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, key := range []string{
		`"topics"`, `"skippedLinks"`, `"unverifiedLinks"`, `"mainUrl"`,
		`"totalPages"`, `"maxDepth"`, `"metadata"`, `"extractionMode"`, `"spaDetected"`,
	} {
		if !strings.Contains(s, key) {
			t.Errorf("serialized result missing %s: %s", key, s)
		}
	}
	if strings.Contains(s, `"error"`) {
		t.Error("error field should be omitted when empty")
	}
}

func TestSkippedLinkStatusOmitted(t *testing.T) {
	data, err := json.Marshal(SkippedLink{URL: "https://e.com/x", Reason: SkipTimeout})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "statusCode") {
		t.Errorf("zero status should be omitted: %s", data)
	}
}
