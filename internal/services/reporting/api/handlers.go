package api

import (
	"errors"
	"net/http"
	"strings"

	platformerrors "github.com/cbta/cbta-mcp/internal/platform/errors"
	"github.com/cbta/cbta-mcp/internal/platform/requestctx"
	"github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

type handlers struct {
	reports *report.Service
	logger  *zap.Logger
}

type errorBody struct {
	Code     platformerrors.Code `json:"code"`
	Message  string              `json:"message"`
	Metadata map[string]string   `json:"metadata,omitempty"`
}

type textBody struct {
	Text string `json:"text"`
}

func (h *handlers) listReports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reports": report.Catalog()})
}

func (h *handlers) runReport(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", formatJSON))
	if format != formatJSON && format != formatMarkdown {
		h.fail(c, platformerrors.WithMetadata(platformerrors.CodeUnsupportedFormat,
			"format must be json or markdown", map[string]string{"format": format}))
		return
	}

	table, err := h.reports.Run(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if format == formatMarkdown {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(table.Markdown()))
		return
	}
	if table.Rows == nil {
		table.Rows = [][]string{}
	}
	c.JSON(http.StatusOK, table)
}

func (h *handlers) salesmanHistory(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	history, err := h.reports.SalesmanHistory(c.Request.Context(), name)
	if err != nil {
		h.fail(c, err)
		return
	}
	if history.Notes == nil {
		history.Notes = []string{}
	}
	c.JSON(http.StatusOK, history)
}

func (h *handlers) compareSalesmen(c *gin.Context) {
	a := strings.TrimSpace(c.Query("a"))
	b := strings.TrimSpace(c.Query("b"))
	if a == "" || b == "" {
		h.fail(c, platformerrors.New(platformerrors.CodeArgumentMissing, "query parameters a and b are required"))
		return
	}
	text, err := h.reports.Comparison(c.Request.Context(), a, b)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, textBody{Text: text})
}

func (h *handlers) bestPerformers(c *gin.Context) {
	perf, err := h.reports.BestPerformers(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if perf.Performers == nil {
		perf.Performers = []report.Performer{}
	}
	c.JSON(http.StatusOK, gin.H{"performance": perf, "text": perf.Text()})
}

// fail writes err as a JSON error body with the status its code maps to.
// Errors without a domain code are logged and hidden behind a generic message.
func (h *handlers) fail(c *gin.Context, err error) {
	status := platformerrors.HTTPStatus(err)
	body := errorBody{Code: platformerrors.CodeOf(err), Message: err.Error()}
	var domainErr *platformerrors.Error
	if errors.As(err, &domainErr) {
		body.Message = domainErr.Message
		body.Metadata = domainErr.Metadata
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("api request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestctx.RequestIDFromContext(c.Request.Context())),
			zap.Error(err),
		)
		if body.Code == platformerrors.CodeUnknown {
			body.Message = "internal error"
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
