// Package main writes a synthetic field-sales SQLite database for demos.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	platformcmd "github.com/cbta/cbta-mcp/internal/platform/cmd"
	"github.com/cbta/cbta-mcp/internal/platform/config"
	"github.com/cbta/cbta-mcp/internal/tools/seed"
)

func main() {
	logger, err := platformcmd.Bootstrap(platformcmd.ServiceSeed)
	if err != nil {
		config.Exitf("bootstrap: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := seed.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seed.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		stop()
		config.Exitf("Error: %v", err)
	}
}
