package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Config configures how the MCP server is exposed.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the listen address for HTTP transport. Defaults to localhost:8081.
	HTTPAddr string
	// AllowedHosts extends the loopback-only Host/Origin allow list. "*" allows any host.
	AllowedHosts []string
	// AuthToken enables static bearer-token auth when set.
	AuthToken string
	// JWTSecret enables HS256 JWT bearer auth when set.
	JWTSecret string
	// RateLimit caps requests per second across the process; zero disables it.
	RateLimit float64
	RateBurst int
	// MaxConnections caps concurrently open HTTP connections; zero disables it.
	MaxConnections int
	// RequestAuthorizer replaces the token/JWT authorizer built from AuthToken and JWTSecret.
	RequestAuthorizer RequestAuthorizer
	// RateLimiter replaces the limiter built from RateLimit.
	RateLimiter RequestRateLimiter
	// API is mounted under /api/ on the HTTP server when set.
	API http.Handler
}

// Run is the service entrypoint for MCP and blocks until context cancellation.
// stdio serves one local client; HTTP serves Streamable HTTP sessions next to
// the health check and the optional REST API.
func Run(ctx context.Context, cfg Config, reports *report.Service, logger *zap.Logger) error {
	server, err := New(reports, logger)
	if err != nil {
		return err
	}
	return server.Run(ctx, cfg)
}

// Run serves the server on the configured transport.
func (s *Server) Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		return s.Serve(ctx)
	case TransportHTTP:
		return s.runWithHTTPTransport(ctx, cfg)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// runWithHTTPTransport keeps HTTP guardrails isolated from the MCP handlers
// shared with stdio.
func (s *Server) runWithHTTPTransport(ctx context.Context, cfg Config) error {
	transport := NewHTTPTransportWithServer(cfg.HTTPAddr, s.mcpServer)
	transport.logger = s.logger
	transport.health = s.reports.Store().Ping
	transport.applyConfig(cfg)
	return transport.Start(ctx)
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.logger.Info("serving MCP", zap.String("server", serverName))
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
