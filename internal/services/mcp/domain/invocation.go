package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	platformerrors "github.com/cbta/cbta-mcp/internal/platform/errors"
	"github.com/cbta/cbta-mcp/internal/platform/otel"
	"github.com/cbta/cbta-mcp/internal/platform/requestctx"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/cbta/cbta-mcp/internal/services/mcp/domain"

// NewInvocationID generates an invocation identifier for a tool call.
func NewInvocationID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// toolInvocation carries the correlation state of one tool call.
type toolInvocation struct {
	ID     string
	RunCtx context.Context
	span   trace.Span
	logger *zap.Logger
	start  time.Time
}

func newToolInvocation(ctx context.Context, logger *zap.Logger, tool string) (*toolInvocation, error) {
	id, err := NewInvocationID()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	runCtx, span := otel.Tracer(tracerName).Start(ctx, "mcp.tool "+tool, trace.WithAttributes(
		attribute.String("mcp.tool", tool),
		attribute.String("mcp.invocation_id", id),
	))
	return &toolInvocation{
		ID:     id,
		RunCtx: requestctx.WithRequestID(runCtx, id),
		span:   span,
		logger: logger.With(zap.String("tool", tool), zap.String("invocation_id", id)),
		start:  time.Now(),
	}, nil
}

// Finish ends the span and writes the call's log line.
func (c *toolInvocation) Finish(err error) {
	defer c.span.End()
	elapsed := zap.Duration("elapsed", time.Since(c.start))
	if err != nil {
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("tool call failed", elapsed, zap.String("code", string(platformerrors.CodeOf(err))), zap.Error(err))
		return
	}
	c.logger.Info("tool call", elapsed)
}

// toolRun produces the text content and structured output of one tool.
type toolRun[I, O any] func(ctx context.Context, input I) (string, O, error)

// instrument wraps run with invocation tracking and the error contract shared
// by every tool. The server validates structured output against the schema
// even on tool errors, so empty must return a value whose slices are non-nil.
func instrument[I, O any](logger *zap.Logger, tool string, empty func() O, run toolRun[I, O]) mcp.ToolHandlerFor[I, O] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input I) (*mcp.CallToolResult, O, error) {
		call, err := newToolInvocation(ctx, logger, tool)
		if err != nil {
			return nil, empty(), fmt.Errorf("generate invocation id: %w", err)
		}

		text, output, err := run(call.RunCtx, input)
		call.Finish(err)
		if err != nil {
			if isArgumentError(err) {
				return toolErrorResult(err), empty(), nil
			}
			return nil, empty(), fmt.Errorf("%s failed: %w", tool, err)
		}
		return textResult(text), output, nil
	}
}

func isArgumentError(err error) bool {
	switch platformerrors.CodeOf(err) {
	case platformerrors.CodeArgumentMissing, platformerrors.CodeInvalidDate, platformerrors.CodeInvalidDateRange:
		return true
	}
	return false
}

func errorMessage(err error) string {
	var domainErr *platformerrors.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return err.Error()
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolErrorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + errorMessage(err)}},
	}
}
