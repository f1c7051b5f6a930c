// Package api serves the report service over a JSON REST surface.
package api

import (
	"time"

	"github.com/cbta/cbta-mcp/internal/platform/requestctx"
	"github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// NewRouter builds the gin engine for the /api/v1 routes.
func NewRouter(reports *report.Service, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	h := &handlers{reports: reports, logger: logger}
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(logger))

	v1 := router.Group("/api/v1")
	v1.GET("/reports", h.listReports)
	v1.GET("/reports/:name", h.runReport)
	v1.GET("/salesmen/compare", h.compareSalesmen)
	v1.GET("/salesmen/:name/history", h.salesmanHistory)
	v1.GET("/performance", h.bestPerformers)
	return router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(requestctx.WithRequestID(c.Request.Context(), id))
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("api request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", requestctx.RequestIDFromContext(c.Request.Context())),
		)
	}
}
