package content

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ikhlasbhojani/learnme/internal/types"
)

// MaxContentChars bounds the content field of a summarizer response.
// Longer model output is repaired and truncated rather than rejected.
const MaxContentChars = 10000

// maxInputChars bounds what is handed to the summarizer; headroom over
// MaxContentChars leaves room for the response envelope.
const maxInputChars = 12000

// Summarizer condenses extracted page text into a bounded summary.
// Implementations typically call an LLM; Passthrough is the no-model
// fallback.
type Summarizer interface {
	Summarize(ctx context.Context, text, sourceURL string) (types.ContentResult, error)
}

// Passthrough returns the cleaned text unchanged, truncated to the
// summary bound at a sentence boundary. Used when no model backend is
// configured.
type Passthrough struct{}

func (Passthrough) Summarize(_ context.Context, text, sourceURL string) (types.ContentResult, error) {
	return types.ContentResult{
		Content:     TruncateAtSentence(text, MaxContentChars),
		Source:      sourceURL,
		ExtractedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// PrepareInput trims summarizer input to the size the response envelope
// can accommodate, preferring a paragraph, newline, or sentence break.
func PrepareInput(text string) string {
	if len(text) <= maxInputChars {
		return text
	}
	truncated := text[:maxInputChars]
	cut := truncated
	for _, sep := range []string{"\n\n", "\n", "."} {
		if idx := strings.LastIndex(truncated, sep); idx > maxInputChars*7/10 {
			cut = truncated[:idx+len(sep)]
			break
		}
	}
	return cut + "\n\n[Content truncated for processing - original was too long...]"
}

var contentField = regexp.MustCompile(`"content"\s*:\s*"`)

// RepairResponse recovers a ContentResult from malformed model output:
// markdown fences are stripped, an overlong or unterminated content
// string is truncated and closed, and unbalanced braces are closed.
// Returns an error only when no JSON object can be located at all.
func RepairResponse(raw, sourceURL string) (types.ContentResult, error) {
	var result types.ContentResult
	if err := json.Unmarshal([]byte(raw), &result); err == nil {
		result.Content = TruncateAtSentence(result.Content, MaxContentChars)
		return withDefaults(result, sourceURL), nil
	}

	text := stripFences(raw)
	start := strings.Index(text, "{")
	if start == -1 {
		return types.ContentResult{}, fmt.Errorf("no JSON object in summarizer output")
	}
	jsonStr := text[start:]
	jsonStr = repairContentString(jsonStr)
	jsonStr = closeBraces(jsonStr)

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return types.ContentResult{}, fmt.Errorf("repair summarizer output: %w", err)
	}
	result.Content = TruncateAtSentence(result.Content, MaxContentChars)
	return withDefaults(result, sourceURL), nil
}

func withDefaults(result types.ContentResult, sourceURL string) types.ContentResult {
	if result.Source == "" {
		result.Source = sourceURL
	}
	if result.ExtractedAt == "" {
		result.ExtractedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return result
}

func stripFences(raw string) string {
	if idx := strings.Index(raw, "```json"); idx != -1 {
		raw = raw[idx+len("```json"):]
		if end := strings.Index(raw, "```"); end != -1 {
			raw = raw[:end]
		}
	} else if idx := strings.Index(raw, "```"); idx != -1 {
		raw = raw[idx+3:]
		if end := strings.Index(raw, "```"); end != -1 {
			raw = raw[:end]
		}
	}
	return strings.TrimSpace(raw)
}

// repairContentString closes an unterminated content field and bounds
// its length. Escaped quotes inside the value are honored.
func repairContentString(jsonStr string) string {
	loc := contentField.FindStringIndex(jsonStr)
	if loc == nil {
		return jsonStr
	}
	start := loc[1]
	end := -1
	for i := start; i < len(jsonStr); i++ {
		if jsonStr[i] == '"' && jsonStr[i-1] != '\\' {
			end = i
			break
		}
	}

	if end == -1 {
		// Value ran off the end of the output; bound it and close the
		// string ourselves.
		value := TruncateAtSentence(jsonStr[start:], MaxContentChars)
		return jsonStr[:start] + value + `... [truncated]"`
	}

	value := jsonStr[start:end]
	if len(value) > MaxContentChars {
		value = TruncateAtSentence(value, MaxContentChars)
		return jsonStr[:start] + value + `... [truncated]"` + jsonStr[end+1:]
	}
	return jsonStr
}

func closeBraces(jsonStr string) string {
	open := strings.Count(jsonStr, "{")
	closed := strings.Count(jsonStr, "}")
	if open > closed {
		jsonStr += strings.Repeat("}", open-closed)
	}
	return jsonStr
}

// TruncateAtSentence bounds text to limit characters, cutting at the
// last sentence end when one falls in the final fifth of the window.
func TruncateAtSentence(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	truncated := text[:limit]
	if idx := strings.LastIndex(truncated, "."); idx > limit*4/5 {
		return truncated[:idx+1]
	}
	return truncated
}
