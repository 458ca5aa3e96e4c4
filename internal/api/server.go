// Package api exposes the extraction pipeline over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ikhlasbhojani/learnme/internal/service"
)

const (
	readTimeoutSeconds  = 15
	writeTimeoutSeconds = 300 // crawls can legitimately run for minutes
	idleTimeoutSeconds  = 120
)

// Server wraps the gin router and the underlying http.Server.
type Server struct {
	router *gin.Engine
	server *http.Server
	log    *zap.Logger
}

// NewServer builds the API server around an extractor.
func NewServer(addr string, extractor *service.Extractor, log *zap.Logger, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	h := &handler{extractor: extractor, log: log}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	contentGroup := router.Group("/api/content")
	contentGroup.POST("/extract-topics", h.extractTopics)
	contentGroup.POST("/extract", h.extractContent)

	router.GET("/api/extractions", h.listExtractions)

	return &Server{
		router: router,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeoutSeconds * time.Second,
			WriteTimeout: writeTimeoutSeconds * time.Second,
			IdleTimeout:  idleTimeoutSeconds * time.Second,
		},
		log: log,
	}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info("api server listening", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
