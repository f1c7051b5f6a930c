// Package mcp parses MCP command configuration and runs the server on stdio
// or HTTP.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"strings"

	platformcmd "github.com/cbta/cbta-mcp/internal/platform/cmd"
	"github.com/cbta/cbta-mcp/internal/services/mcp/service"
	"github.com/cbta/cbta-mcp/internal/services/reporting/api"
	"github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/backend"
	"go.uber.org/zap"
)

// Config holds MCP command configuration.
type Config struct {
	Transport      string   `env:"CBTA_MCP_TRANSPORT"       envDefault:"stdio"`
	HTTPAddr       string   `env:"CBTA_MCP_HTTP_ADDR"       envDefault:"localhost:8081"`
	AllowedHosts   []string `env:"CBTA_MCP_ALLOWED_HOSTS"   envSeparator:","`
	AuthToken      string   `env:"CBTA_MCP_AUTH_TOKEN"`
	JWTSecret      string   `env:"CBTA_MCP_JWT_SECRET"`
	RateLimit      float64  `env:"CBTA_MCP_RATE_LIMIT"`
	RateBurst      int      `env:"CBTA_MCP_RATE_BURST"`
	MaxConnections int      `env:"CBTA_MCP_MAX_CONNECTIONS"`
	DisableAPI     bool     `env:"CBTA_MCP_DISABLE_API"`
	Storage        backend.Config
}

// ParseConfig parses environment and flags into a Config. Flags win.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	allowedHosts := strings.Join(cfg.AllowedHosts, ",")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&allowedHosts, "allowed-hosts", allowedHosts, "comma-separated extra Host/Origin values; * allows any")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "requests per second across the process (0 = unlimited)")
	fs.IntVar(&cfg.MaxConnections, "max-connections", cfg.MaxConnections, "max concurrent HTTP connections (0 = unlimited)")
	fs.BoolVar(&cfg.DisableAPI, "no-api", cfg.DisableAPI, "do not mount the REST API on the HTTP server")
	fs.StringVar(&cfg.Storage.Driver, "db-driver", cfg.Storage.Driver, "storage driver: mysql or sqlite")
	fs.StringVar(&cfg.Storage.Path, "db-path", cfg.Storage.Path, "SQLite database path (for -db-driver sqlite)")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.AllowedHosts = splitList(allowedHosts)
	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Run opens storage and serves MCP until ctx ends.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMCP, func(ctx context.Context) error {
		store, err := backend.Open(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("close storage", zap.Error(err))
			}
		}()

		reports := report.NewService(store, logger)
		serviceCfg := service.Config{
			Transport:      service.TransportKind(strings.ToLower(strings.TrimSpace(cfg.Transport))),
			HTTPAddr:       cfg.HTTPAddr,
			AllowedHosts:   cfg.AllowedHosts,
			AuthToken:      cfg.AuthToken,
			JWTSecret:      cfg.JWTSecret,
			RateLimit:      cfg.RateLimit,
			RateBurst:      cfg.RateBurst,
			MaxConnections: cfg.MaxConnections,
		}
		if serviceCfg.Transport == service.TransportHTTP && !cfg.DisableAPI {
			serviceCfg.API = api.NewRouter(reports, logger.Named("api"))
		}
		return service.Run(ctx, serviceCfg, reports, logger)
	})
}
