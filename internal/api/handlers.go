package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ikhlasbhojani/learnme/internal/service"
	"github.com/ikhlasbhojani/learnme/internal/types"
)

// userIDHeader carries the caller identity used to scope extraction
// history. Anonymous callers are allowed.
const userIDHeader = "X-User-Id"

type handler struct {
	extractor *service.Extractor
	log       *zap.Logger
}

type extractTopicsRequest struct {
	URL        string `json:"url" binding:"required"`
	MaxDepth   *int   `json:"maxDepth"`
	MaxURLs    int    `json:"maxUrls"`
	StrictMode bool   `json:"strictMode"`
	Mode       string `json:"mode"`
	TimeoutSec int    `json:"timeout"`
}

type extractContentRequest struct {
	URL string `json:"url" binding:"required"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (h *handler) extractTopics(c *gin.Context) {
	var req extractTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if !validHTTPURL(req.URL) {
		respondError(c, http.StatusBadRequest, "invalid_url", "url must be absolute http(s)")
		return
	}

	cc := types.CrawlContext{
		MainURL:         req.URL,
		MaxDepth:        -1,
		MaxURLsPerLevel: req.MaxURLs,
		StrictMode:      req.StrictMode,
		Mode:            types.ModeAuto,
		Timeout:         time.Duration(req.TimeoutSec) * time.Second,
	}
	if req.MaxDepth != nil {
		cc.MaxDepth = *req.MaxDepth
	}
	switch req.Mode {
	case "http":
		cc.Mode = types.ModeHTTP
	case "browser":
		cc.Mode = types.ModeBrowser
	case "", "auto":
	default:
		respondError(c, http.StatusBadRequest, "invalid_mode", "mode must be http, browser or auto")
		return
	}

	result := h.extractor.ExtractTopics(c.Request.Context(), c.GetHeader(userIDHeader), cc)
	if result.Error != "" && len(result.Topics) == 0 {
		respondError(c, http.StatusBadGateway, "extraction_failed", result.Error)
		return
	}
	respondOK(c, result)
}

func (h *handler) extractContent(c *gin.Context) {
	var req extractContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if !validHTTPURL(req.URL) {
		respondError(c, http.StatusBadRequest, "invalid_url", "url must be absolute http(s)")
		return
	}

	result, err := h.extractor.ExtractContent(c.Request.Context(), req.URL)
	if err != nil {
		h.log.Warn("content extraction failed",
			zap.String("url", req.URL), zap.Error(err))
		respondError(c, http.StatusBadGateway, "extraction_failed", err.Error())
		return
	}
	respondOK(c, result)
}

func (h *handler) listExtractions(c *gin.Context) {
	runs, err := h.extractor.ListRuns(c.Request.Context(), c.GetHeader(userIDHeader), 50)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	respondOK(c, runs)
}
