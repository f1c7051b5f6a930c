// Package seed writes a synthetic field-sales SQLite database for local runs
// and demos.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	platformcmd "github.com/cbta/cbta-mcp/internal/platform/cmd"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	Path   string `env:"DB_PATH" envDefault:"data/cbta.db"`
	Preset Preset
	Seed   int64
	Force  bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	var preset string
	fs.StringVar(&cfg.Path, "db-path", cfg.Path, "SQLite database to create")
	fs.StringVar(&preset, "preset", string(PresetDemo), "dataset size (demo, stress)")
	fs.Int64Var(&cfg.Seed, "seed", 1, "random seed for reproducibility (0 = random)")
	fs.BoolVar(&cfg.Force, "force", false, "replace an existing database file")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Preset = Preset(strings.ToLower(strings.TrimSpace(preset)))
	return cfg, nil
}

// Run generates a dataset and loads it into a new SQLite database at
// cfg.Path. An existing file is an error unless cfg.Force is set.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	preset, ok := GetPresetConfig(cfg.Preset)
	if !ok {
		return fmt.Errorf("unknown preset %q (valid presets: demo, stress)", cfg.Preset)
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return errors.New("-db-path is required")
	}
	if err := prepare(path, cfg.Force); err != nil {
		return err
	}

	store, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(errOut, "Error: close database: %v\n", err)
		}
	}()

	data := NewGenerator(cfg.Seed, preset).Generate()
	if err := store.Load(ctx, data); err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	fmt.Fprintf(out, "Seeded %s (preset %s, seed %d)\n", path, cfg.Preset, cfg.Seed)
	fmt.Fprintf(out, "  users:         %d\n", len(data.Users))
	fmt.Fprintf(out, "  customers:     %d\n", len(data.Customers))
	fmt.Fprintf(out, "  clinics:       %d\n", len(data.Clinics))
	fmt.Fprintf(out, "  plans:         %d\n", len(data.Plans))
	fmt.Fprintf(out, "  reports:       %d\n", len(data.Reports))
	fmt.Fprintf(out, "  transactions:  %d\n", len(data.Transactions))
	fmt.Fprintf(out, "  soft-deleted:  %d\n", len(data.Deleted))
	return nil
}

// prepare makes sure path's directory exists and that no database is there,
// removing one (with its WAL files) when force is set.
func prepare(path string, force bool) error {
	if _, err := os.Stat(path); err == nil {
		if !force {
			return fmt.Errorf("%s already exists (use -force to replace it)", path)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", path+suffix, err)
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
