// Package sqlite provides a file-backed field-sales database for local runs,
// demos and tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/cbta/cbta-mcp/internal/platform/storage/sqlitemigrate"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/sqlite/migrations"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/sqlstore"
	_ "modernc.org/sqlite"
)

// Store is a reporting store over a SQLite file.
type Store struct {
	*sqlstore.Store
}

// Open opens a SQLite database and applies the embedded schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{Store: sqlstore.New(sqlDB, "sqlite")}, nil
}

func nullable(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return value
}

// Load inserts every row of data in one transaction. Empty strings are
// stored as NULL, and rows listed in data.Deleted get a deleted_at stamp.
func (s *Store) Load(ctx context.Context, data storage.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sqlDB := s.DB()
	if sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	exec := func(table, query string, args ...any) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
		return nil
	}

	for _, u := range data.Users {
		if err := exec("users", `INSERT INTO users (id, username, name) VALUES (?, ?, ?)`,
			u.ID, nullable(u.Username), nullable(u.Name)); err != nil {
			return err
		}
	}
	for _, c := range data.Customers {
		if err := exec("customers", `INSERT INTO customers (id, custname, phone) VALUES (?, ?, ?)`,
			c.ID, nullable(c.Name), nullable(c.Phone)); err != nil {
			return err
		}
	}
	for _, a := range data.AccountCustomers {
		if err := exec("acc_customers", `INSERT INTO acc_customers (cid, cust_name) VALUES (?, ?)`,
			nullable(a.CID), nullable(a.Name)); err != nil {
			return err
		}
	}
	for _, c := range data.Clinics {
		if err := exec("clinics", `INSERT INTO clinics (id, clinicname, citycode, custcode) VALUES (?, ?, ?, ?)`,
			c.ID, nullable(c.Name), nullable(c.City), nullable(c.CustomerCode)); err != nil {
			return err
		}
	}
	for _, p := range data.Products {
		if err := exec("products", `INSERT INTO products (id, prodname) VALUES (?, ?)`,
			p.ID, nullable(p.Name)); err != nil {
			return err
		}
	}
	for _, p := range data.Plans {
		if err := exec("plans", `INSERT INTO plans (id, userid, custcode, cliniccode, date) VALUES (?, ?, ?, ?, ?)`,
			p.ID, nullable(p.UserID), nullable(p.CustomerCode), nullable(p.ClinicCode), nullable(p.Date)); err != nil {
			return err
		}
	}
	for _, r := range data.Reports {
		if err := exec("reports", `INSERT INTO reports (id, idplan, visitnote) VALUES (?, ?, ?)`,
			r.ID, r.PlanID, r.VisitNote); err != nil {
			return err
		}
	}
	for _, tr := range data.Transactions {
		if err := exec("transactions",
			`INSERT INTO transactions (id, salesman_name, product, item_id, cust_id, qty, amount, inv_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			tr.ID, nullable(tr.SalesmanName), nullable(tr.Product), nullable(tr.ItemID),
			nullable(tr.CustomerID), tr.Qty, tr.Amount, nullable(tr.InvoiceDate)); err != nil {
			return err
		}
	}

	deletedAt := time.Now().UTC().Format(time.DateTime)
	for _, d := range data.Deleted {
		if !storage.IsPurgeTable(d.Table) {
			return fmt.Errorf("soft delete %s: table has no deleted_at column", d.Table)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE `+d.Table+` SET deleted_at = ? WHERE id = ?`, deletedAt, d.ID); err != nil {
			return fmt.Errorf("soft delete %s %s: %w", d.Table, d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}
