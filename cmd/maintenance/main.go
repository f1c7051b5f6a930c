// Package main purges soft-deleted rows from the field-sales database.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	platformcmd "github.com/cbta/cbta-mcp/internal/platform/cmd"
	"github.com/cbta/cbta-mcp/internal/platform/config"
	"github.com/cbta/cbta-mcp/internal/tools/maintenance"
)

func main() {
	logger, err := platformcmd.Bootstrap(platformcmd.ServiceMaintenance)
	if err != nil {
		config.Exitf("bootstrap: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := maintenance.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMaintenance, func(ctx context.Context) error {
		return maintenance.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		cancel()
		stop()
		config.Exitf("Error: %v", err)
	}
}
