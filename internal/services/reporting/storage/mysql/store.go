// Package mysql opens the production field-sales database.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cbta/cbta-mcp/internal/platform/timeouts"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/sqlstore"
	driver "github.com/go-sql-driver/mysql"
)

const defaultPort = "3306"

// Config holds the connection settings read from the environment.
type Config struct {
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Host     string `env:"DB_HOST" envDefault:"localhost:3306"`
	Name     string `env:"DB_NAME"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// DSN renders cfg as a go-sql-driver DSN. A host without a port gets 3306.
func (cfg Config) DSN() (string, error) {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return "", fmt.Errorf("DB_NAME is required")
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "localhost"
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(strings.Trim(host, "[]"), defaultPort)
	}

	dc := driver.NewConfig()
	dc.User = cfg.User
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = host
	dc.DBName = name
	dc.ParseTime = false
	dc.Timeout = timeouts.Ping
	return dc.FormatDSN(), nil
}

// Open connects to MySQL, checks the connection and returns a reporting store.
func Open(ctx context.Context, cfg Config) (*sqlstore.Store, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping mysql db: %w", err)
	}
	return sqlstore.New(sqlDB, "mysql"), nil
}
