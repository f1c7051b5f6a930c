package mysql

import (
	"context"
	"strings"
	"testing"

	driver "github.com/go-sql-driver/mysql"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		host     string
		wantAddr string
	}{
		{name: "host and port", host: "db.internal:3307", wantAddr: "db.internal:3307"},
		{name: "host only", host: "db.internal", wantAddr: "db.internal:3306"},
		{name: "ipv6 host only", host: "[::1]", wantAddr: "[::1]:3306"},
		{name: "empty host", host: "", wantAddr: "localhost:3306"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dsn, err := Config{User: "cbta", Password: "s3cret", Host: tt.host, Name: "fieldsales"}.DSN()
			if err != nil {
				t.Fatalf("dsn: %v", err)
			}
			parsed, err := driver.ParseDSN(dsn)
			if err != nil {
				t.Fatalf("parse dsn %q: %v", dsn, err)
			}
			if parsed.Addr != tt.wantAddr {
				t.Fatalf("addr = %q, want %q", parsed.Addr, tt.wantAddr)
			}
			if parsed.User != "cbta" || parsed.Passwd != "s3cret" || parsed.DBName != "fieldsales" {
				t.Fatalf("parsed = %+v", parsed)
			}
		})
	}
}

func TestDSNRequiresName(t *testing.T) {
	t.Parallel()

	_, err := Config{Host: "localhost"}.DSN()
	if err == nil || !strings.Contains(err.Error(), "DB_NAME") {
		t.Fatalf("err = %v, want DB_NAME error", err)
	}
}

func TestOpenRejectsMissingName(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{}); err == nil {
		t.Fatal("expected configuration error")
	}
}
