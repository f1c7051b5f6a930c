package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	mcpcmd "github.com/cbta/cbta-mcp/internal/cmd/mcp"
	platformcmd "github.com/cbta/cbta-mcp/internal/platform/cmd"
	"github.com/cbta/cbta-mcp/internal/platform/config"
)

// main starts the MCP server on stdio or HTTP.
func main() {
	logger, err := platformcmd.Bootstrap(platformcmd.ServiceMCP)
	if err != nil {
		config.Exitf("bootstrap: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcpcmd.Run(ctx, cfg, logger); err != nil {
		stop()
		config.Exitf("failed to serve MCP: %v", err)
	}
}
