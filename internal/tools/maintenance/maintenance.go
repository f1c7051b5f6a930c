// Package maintenance reports and purges soft-deleted rows of the field-sales
// database.
package maintenance

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	platformcmd "github.com/cbta/cbta-mcp/internal/platform/cmd"
	platformerrors "github.com/cbta/cbta-mcp/internal/platform/errors"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/backend"
)

// Config holds maintenance command configuration.
type Config struct {
	Storage    backend.Config
	Timeout    time.Duration `env:"CBTA_MAINTENANCE_TIMEOUT" envDefault:"10m"`
	Tables     string
	DryRun     bool
	JSONOutput bool
}

// closableStore is a purger that owns a connection.
type closableStore interface {
	storage.Purger
	Close() error
}

var openStore = func(ctx context.Context, cfg backend.Config) (closableStore, error) {
	return backend.Open(ctx, cfg)
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Tables, "tables", "", "comma-separated tables to purge (default: "+strings.Join(storage.PurgeTables, ",")+")")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "count soft-deleted rows without deleting them")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output a JSON report")
	fs.StringVar(&cfg.Storage.Driver, "db-driver", cfg.Storage.Driver, "storage driver: mysql or sqlite")
	fs.StringVar(&cfg.Storage.Path, "db-path", cfg.Storage.Path, "SQLite database path (for -db-driver sqlite)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the maintenance command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	tables, err := resolveTables(cfg.Tables)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintf(errOut, "Error: close storage: %v\n", closeErr)
		}
	}()

	results, err := purge(ctx, store, tables, cfg.DryRun)
	if err != nil {
		return err
	}
	return writeResults(out, results, cfg.DryRun, cfg.JSONOutput)
}

// tableResult is the outcome for one table.
type tableResult struct {
	Table  string `json:"table"`
	Rows   int64  `json:"rows"`
	Purged bool   `json:"purged"`
}

// purge counts or deletes soft-deleted rows table by table and stops at the
// first failure.
func purge(ctx context.Context, store storage.Purger, tables []string, dryRun bool) ([]tableResult, error) {
	results := make([]tableResult, 0, len(tables))
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			rows int64
			err  error
		)
		if dryRun {
			rows, err = store.CountSoftDeleted(ctx, table)
		} else {
			rows, err = store.PurgeSoftDeleted(ctx, table)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", table, err)
		}
		results = append(results, tableResult{Table: table, Rows: rows, Purged: !dryRun})
	}
	return results, nil
}

func writeResults(out io.Writer, results []tableResult, dryRun, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"dry_run": dryRun, "tables": results})
	}

	var total int64
	for _, result := range results {
		total += result.Rows
		if dryRun {
			fmt.Fprintf(out, "%s: %d soft-deleted rows\n", result.Table, result.Rows)
		} else {
			fmt.Fprintf(out, "%s: purged %d rows\n", result.Table, result.Rows)
		}
	}
	if dryRun {
		fmt.Fprintf(out, "Dry run: %d rows would be purged\n", total)
	} else {
		fmt.Fprintf(out, "Purged %d rows\n", total)
	}
	return nil
}

// resolveTables returns every purge table for an empty list.
func resolveTables(list string) ([]string, error) {
	tables := splitCSV(list)
	if len(tables) == 0 {
		return append([]string(nil), storage.PurgeTables...), nil
	}
	for _, table := range tables {
		if !storage.IsPurgeTable(table) {
			return nil, platformerrors.WithMetadata(platformerrors.CodeMaintenanceNoTable,
				fmt.Sprintf("table %q has no soft-delete column (want one of %s)", table, strings.Join(storage.PurgeTables, ", ")),
				map[string]string{"table": table})
		}
	}
	return tables, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}
