// Package report builds the consolidated field-sales reports. Every report
// reads raw activity from storage, reconciles it against the official
// directories and renders a Markdown table or text block.
package report

import (
	"context"
	"fmt"
	"strconv"

	platformerrors "github.com/cbta/cbta-mcp/internal/platform/errors"
	"github.com/cbta/cbta-mcp/internal/platform/otel"
	"github.com/cbta/cbta-mcp/internal/platform/requestctx"
	"github.com/cbta/cbta-mcp/internal/platform/timeouts"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/cbta/cbta-mcp/internal/services/reporting/report"

// Service runs reports against one store.
type Service struct {
	store  storage.Reader
	logger *zap.Logger
	tracer trace.Tracer
}

// NewService returns a report service. A nil logger discards logs.
func NewService(store storage.Reader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, tracer: otel.Tracer(tracerName)}
}

// Store returns the reader the service queries.
func (s *Service) Store() storage.Reader { return s.store }

// begin opens a span and applies the report deadline. The returned finish
// records err on the span and logs the outcome; a salesman lookup miss is an
// answer, not a failure. A request id in ctx is attached to both.
func (s *Service) begin(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	fields := []zap.Field{zap.String("report", name)}
	if requestID := requestctx.RequestIDFromContext(ctx); requestID != "" {
		attrs = append(attrs, attribute.String("request.id", requestID))
		fields = append(fields, zap.String("request_id", requestID))
	}
	ctx, span := s.tracer.Start(ctx, "report."+name, trace.WithAttributes(attrs...))
	ctx, cancel := context.WithTimeout(ctx, timeouts.Report)
	return ctx, func(errp *error) {
		defer span.End()
		defer cancel()
		if errp != nil && platformerrors.CodeOf(*errp) == platformerrors.CodeSalesmanNotFound {
			span.SetAttributes(attribute.Bool("salesman.found", false))
			s.logger.Debug("salesman not found", append(fields, zap.Error(*errp))...)
			return
		}
		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
			s.logger.Warn("report failed", append(fields, zap.Error(*errp))...)
			return
		}
		s.logger.Debug("report built", fields...)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func ratio(num, den int64) float64 {
	return float64(num) / float64(den)
}

func fixed2(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
