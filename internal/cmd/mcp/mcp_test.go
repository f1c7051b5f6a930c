package mcp

import (
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/backend"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "localhost:8081" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("expected default transport stdio, got %q", cfg.Transport)
	}
	if cfg.Storage.Driver != backend.DriverMySQL {
		t.Fatalf("expected default driver mysql, got %q", cfg.Storage.Driver)
	}
	if cfg.AllowedHosts != nil {
		t.Fatalf("expected no allowed hosts, got %v", cfg.AllowedHosts)
	}
}

func TestParseConfigEnv(t *testing.T) {
	t.Setenv("CBTA_MCP_TRANSPORT", "http")
	t.Setenv("CBTA_MCP_ALLOWED_HOSTS", "reports.example.com, *")
	t.Setenv("CBTA_MCP_AUTH_TOKEN", "secret")
	t.Setenv("CBTA_MCP_RATE_LIMIT", "2.5")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/cbta.db")

	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Transport != "http" || cfg.AuthToken != "secret" || cfg.RateLimit != 2.5 {
		t.Fatalf("config = %+v", cfg)
	}
	if diff := cmp.Diff([]string{"reports.example.com", "*"}, cfg.AllowedHosts); diff != "" {
		t.Fatalf("allowed hosts mismatch (-want +got):\n%s", diff)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.Path != "/tmp/cbta.db" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("CBTA_MCP_HTTP_ADDR", "env-http")
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	args := []string{
		"-http-addr", "flag-http",
		"-transport", "http",
		"-allowed-hosts", "a.example.com,,b.example.com",
		"-db-driver", "sqlite",
		"-no-api",
	}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-http" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Transport != "http" {
		t.Fatalf("expected transport http, got %q", cfg.Transport)
	}
	if diff := cmp.Diff([]string{"a.example.com", "b.example.com"}, cfg.AllowedHosts); diff != "" {
		t.Fatalf("allowed hosts mismatch (-want +got):\n%s", diff)
	}
	if cfg.Storage.Driver != "sqlite" || !cfg.DisableAPI {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestParseConfigRejectsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(&strings.Builder{})
	if _, err := ParseConfig(fs, []string{"-addr", "x"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	cfg := Config{
		Transport: "websocket",
		Storage:   backend.Config{Driver: backend.DriverSQLite, Path: filepath.Join(t.TempDir(), "cbta.db")},
	}
	err := Run(context.Background(), cfg, nil)
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("expected unsupported transport error, got %v", err)
	}
}

func TestRunReportsStorageErrors(t *testing.T) {
	cfg := Config{Storage: backend.Config{Driver: "postgres"}}
	err := Run(context.Background(), cfg, nil)
	if err == nil || !strings.Contains(err.Error(), "open storage") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestRunServesHTTPUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{
		Transport: "http",
		HTTPAddr:  "127.0.0.1:0",
		Storage:   backend.Config{Driver: backend.DriverSQLite, Path: filepath.Join(t.TempDir(), "cbta.db")},
	}
	if err := Run(ctx, cfg, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
}
