package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	reportcmd "github.com/cbta/cbta-mcp/internal/cmd/report"
	platformcmd "github.com/cbta/cbta-mcp/internal/platform/cmd"
	"github.com/cbta/cbta-mcp/internal/platform/config"
)

// main runs the report CLI.
func main() {
	logger, err := platformcmd.Bootstrap(platformcmd.ServiceReport)
	if err != nil {
		config.Exitf("bootstrap: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := reportcmd.NewRootCommand(reportcmd.Options{Logger: logger})
	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceReport, root.ExecuteContext)
	if err != nil {
		stop()
		config.Exitf("Error: %v", err)
	}
}
