package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"NewsVerdict/internal/domain"
)

const (
	defaultVerdictLimit = 20
	maxVerdictLimit     = 500
)

type classifyRequest struct {
	Text string `json:"text"`
}

type handlers struct {
	analyzer Analyzer
	info     domain.ModelInfo
	logger   *slog.Logger
}

// classify accepts {"text": "..."} and returns a domain.Report.
func (h *handlers) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	report, err := h.analyzer.Analyze(c.Request.Context(), req.Text)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, report)
	case errors.Is(err, domain.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("classification failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "classification failed"})
	}
}

func (h *handlers) model(c *gin.Context) {
	c.JSON(http.StatusOK, h.info)
}

// verdicts lists recent history entries; ?limit=n caps the result.
func (h *handlers) verdicts(c *gin.Context) {
	if !h.analyzer.HistoryEnabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrHistoryDisabled.Error()})
		return
	}

	limit := defaultVerdictLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxVerdictLimit)
	}

	verdicts, err := h.analyzer.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("load verdicts failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load verdicts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verdicts": verdicts})
}
