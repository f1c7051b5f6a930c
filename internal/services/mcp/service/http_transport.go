package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/cbta/cbta-mcp/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
)

var listenTCP = net.Listen

const (
	// defaultHTTPAddr keeps the default footprint on loopback.
	defaultHTTPAddr = "localhost:8081"

	// anyHost in the allow list disables Host/Origin checks.
	anyHost = "*"
)

// HTTPTransport serves MCP over Streamable HTTP. Every request passes the
// same host validation, rate limiting and auth before it reaches the MCP
// session handler or the REST API.
type HTTPTransport struct {
	addr         string
	allowedHosts map[string]struct{}
	allowAnyHost bool
	mcpHandler   http.Handler
	api          http.Handler
	health       func(context.Context) error
	requestAuthz RequestAuthorizer
	rateLimiter  RequestRateLimiter
	maxConns     int
	logger       *zap.Logger
	httpServer   *http.Server
}

// NewHTTPTransport creates an HTTP transport without an MCP server attached.
func NewHTTPTransport(addr string) *HTTPTransport {
	if addr == "" {
		addr = defaultHTTPAddr
	}
	return &HTTPTransport{
		addr:         addr,
		allowedHosts: map[string]struct{}{},
		logger:       zap.NewNop(),
	}
}

// NewHTTPTransportWithServer creates an HTTP transport that serves server.
// One MCP server backs every Streamable HTTP session.
func NewHTTPTransportWithServer(addr string, server *mcp.Server) *HTTPTransport {
	transport := NewHTTPTransport(addr)
	if server != nil {
		transport.mcpHandler = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return server
		}, nil)
	}
	return transport
}

func (t *HTTPTransport) applyConfig(cfg Config) {
	if t == nil {
		return
	}
	if addr := strings.TrimSpace(cfg.HTTPAddr); addr != "" {
		t.addr = addr
	}
	t.allowedHosts, t.allowAnyHost = parseAllowedHosts(cfg.AllowedHosts)
	t.api = cfg.API
	t.maxConns = cfg.MaxConnections

	t.rateLimiter = cfg.RateLimiter
	if t.rateLimiter == nil && cfg.RateLimit > 0 {
		t.rateLimiter = newTokenBucketLimiter(cfg.RateLimit, cfg.RateBurst)
	}

	if cfg.RequestAuthorizer != nil {
		t.requestAuthz = cfg.RequestAuthorizer
		return
	}
	apiToken := strings.TrimSpace(cfg.AuthToken)
	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if apiToken == "" && jwtSecret == "" {
		t.requestAuthz = nil
		return
	}
	t.requestAuthz = newBearerAuthorizer(apiToken, jwtSecret)
}

// Handler returns the routed HTTP handler.
func (t *HTTPTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	if t.mcpHandler != nil {
		mux.Handle("/mcp", t.guard(t.mcpHandler))
	}
	mux.HandleFunc("/mcp/health", t.handleHealth)
	if t.api != nil {
		mux.Handle("/api/", t.guard(t.api))
	}
	return mux
}

// guard applies host validation, rate limiting and auth in that order.
func (t *HTTPTransport) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := t.validateLocalRequest(r); err != nil {
			t.logger.Warn("rejected MCP HTTP request", zap.String("host", r.Host), zap.Error(err))
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		if !t.authorizeRequest(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start starts the HTTP server and blocks until ctx ends or the server fails.
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.httpServer = &http.Server{
		Addr:              t.addr,
		Handler:           t.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	t.logger.Info("starting MCP HTTP server", zap.String("addr", t.addr))

	errChan := make(chan error, 1)
	go func() {
		listener, err := listenTCP("tcp", t.addr)
		if err != nil {
			errChan <- err
			return
		}
		if t.maxConns > 0 {
			listener = netutil.LimitListener(listener, t.maxConns)
		}
		if err := t.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		t.logger.Info("shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
