package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"NewsVerdict/internal/domain"
)

// Analyzer is the use case surface the API needs.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (domain.Report, error)
	Recent(ctx context.Context, limit int) ([]domain.Verdict, error)
	HistoryEnabled() bool
}

// Options tunes the router.
type Options struct {
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(analyzer Analyzer, info domain.ModelInfo, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	if opts.MaxBodyBytes > 0 {
		r.Use(limitBody(opts.MaxBodyBytes))
	}

	h := &handlers{analyzer: analyzer, info: info, logger: logger}
	RegisterHealthRoutes(r)

	v1 := r.Group("/api/v1")
	v1.POST("/classify", h.classify)
	v1.GET("/model", h.model)
	v1.GET("/verdicts", h.verdicts)

	return r
}

// RegisterHealthRoutes registers health check endpoints.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/api/health", handleHealth)
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
