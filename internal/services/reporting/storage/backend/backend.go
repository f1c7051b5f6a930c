// Package backend opens the reporting store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/mysql"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config selects and configures a storage driver.
type Config struct {
	Driver string `env:"DB_DRIVER" envDefault:"mysql"`
	Path   string `env:"DB_PATH" envDefault:"data/cbta.db"`
	MySQL  mysql.Config
}

// Open returns a store for cfg.Driver.
func Open(ctx context.Context, cfg Config) (storage.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverMySQL, "":
		store, err := mysql.Open(ctx, cfg.MySQL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverSQLite:
		store, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want mysql or sqlite)", cfg.Driver)
	}
}
