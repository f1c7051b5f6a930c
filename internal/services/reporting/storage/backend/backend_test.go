package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenSQLite(t *testing.T) {
	t.Parallel()

	store, err := Open(context.Background(), Config{Driver: "SQLite", Path: filepath.Join(t.TempDir(), "cbta.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{Driver: "postgres"})
	if err == nil || !strings.Contains(err.Error(), "unsupported DB_DRIVER") {
		t.Fatalf("err = %v, want unsupported driver", err)
	}
}

func TestOpenMySQLNeedsName(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{Driver: DriverMySQL}); err == nil {
		t.Fatal("expected missing DB_NAME error")
	}
}
