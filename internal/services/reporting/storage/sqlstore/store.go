// Package sqlstore implements the reporting queries over database/sql. The
// SQL sticks to the subset MySQL and SQLite share, so both backends reuse it
// unchanged.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	platformerrors "github.com/cbta/cbta-mcp/internal/platform/errors"
	"github.com/cbta/cbta-mcp/internal/platform/otel"
	"github.com/cbta/cbta-mcp/internal/platform/timeouts"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/cbta/cbta-mcp/internal/services/reporting/storage/sqlstore"

// Store runs reporting queries against one SQL database.
type Store struct {
	sqlDB  *sql.DB
	system string
	tracer trace.Tracer
}

var _ storage.Store = (*Store)(nil)

// New wraps an open database. system names the engine ("mysql", "sqlite")
// on trace spans.
func New(sqlDB *sql.DB, system string) *Store {
	return &Store{sqlDB: sqlDB, system: system, tracer: otel.Tracer(tracerName)}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Ping)
	defer cancel()
	if err := s.sqlDB.PingContext(ctx); err != nil {
		return platformerrors.Wrap(platformerrors.CodeStorageUnavailable, "ping database", err)
	}
	return nil
}

func (s *Store) ready(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return platformerrors.New(platformerrors.CodeStorageUnavailable, "storage is not configured")
	}
	return ctx.Err()
}

// query runs one SELECT inside a span and hands each row to scan.
func (s *Store) query(ctx context.Context, op, query string, args []any, scan func(*sql.Rows) error) (err error) {
	if err := s.ready(ctx); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "sqlstore."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", s.system),
			attribute.String("db.operation", op),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ctx, cancel := context.WithTimeout(ctx, timeouts.Query)
	defer cancel()

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return platformerrors.Wrap(platformerrors.CodeStorageQuery, op, err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		if err := scan(rows); err != nil {
			return platformerrors.Wrap(platformerrors.CodeStorageQuery, op+" scan", err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return platformerrors.Wrap(platformerrors.CodeStorageQuery, op, err)
	}
	span.SetAttributes(attribute.Int("db.rows", n))
	return nil
}

// naturalIDOrder sorts text codes that share a prefix by numeric suffix, so
// C2 comes before C10 on every backend.
const naturalIDOrder = "LENGTH(id), id"

func text(value sql.NullString) string {
	if !value.Valid {
		return ""
	}
	return strings.TrimSpace(value.String)
}

// counts runs a two-column key/count query.
func (s *Store) counts(ctx context.Context, op, query string, args ...any) ([]storage.Count, error) {
	var out []storage.Count
	err := s.query(ctx, op, query, args, func(rows *sql.Rows) error {
		var (
			key   sql.NullString
			count int64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		out = append(out, storage.Count{Key: text(key), Count: count})
		return nil
	})
	return out, err
}

// ListUsers returns the user directory ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]storage.User, error) {
	var out []storage.User
	err := s.query(ctx, "ListUsers", `SELECT id, username, name FROM users ORDER BY `+naturalIDOrder, nil, func(rows *sql.Rows) error {
		var id, username, name sql.NullString
		if err := rows.Scan(&id, &username, &name); err != nil {
			return err
		}
		out = append(out, storage.User{ID: text(id), Username: text(username), Name: text(name)})
		return nil
	})
	return out, err
}

// ListCustomers returns the customer directory ordered by id.
func (s *Store) ListCustomers(ctx context.Context) ([]storage.Customer, error) {
	var out []storage.Customer
	err := s.query(ctx, "ListCustomers", `SELECT id, custname, phone FROM customers ORDER BY `+naturalIDOrder, nil, func(rows *sql.Rows) error {
		var id, name, phone sql.NullString
		if err := rows.Scan(&id, &name, &phone); err != nil {
			return err
		}
		out = append(out, storage.Customer{ID: text(id), Name: text(name), Phone: text(phone)})
		return nil
	})
	return out, err
}

// ListAccountCustomers returns accounting customers that carry a cid.
func (s *Store) ListAccountCustomers(ctx context.Context) ([]storage.AccountCustomer, error) {
	var out []storage.AccountCustomer
	err := s.query(ctx, "ListAccountCustomers", `SELECT cid, cust_name FROM acc_customers ORDER BY id`, nil, func(rows *sql.Rows) error {
		var cid, name sql.NullString
		if err := rows.Scan(&cid, &name); err != nil {
			return err
		}
		if key := text(cid); key != "" {
			out = append(out, storage.AccountCustomer{CID: key, Name: text(name)})
		}
		return nil
	})
	return out, err
}

// ListProducts returns the product registry ordered by id.
func (s *Store) ListProducts(ctx context.Context) ([]storage.Product, error) {
	var out []storage.Product
	err := s.query(ctx, "ListProducts", `SELECT id, prodname FROM products ORDER BY `+naturalIDOrder, nil, func(rows *sql.Rows) error {
		var id, name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		out = append(out, storage.Product{ID: text(id), Name: text(name)})
		return nil
	})
	return out, err
}

// ListClinics returns the clinic directory ordered by id.
func (s *Store) ListClinics(ctx context.Context) ([]storage.Clinic, error) {
	var out []storage.Clinic
	err := s.query(ctx, "ListClinics", `SELECT id, clinicname, citycode FROM clinics ORDER BY `+naturalIDOrder, nil, func(rows *sql.Rows) error {
		var id, name, city sql.NullString
		if err := rows.Scan(&id, &name, &city); err != nil {
			return err
		}
		out = append(out, storage.Clinic{ID: text(id), Name: text(name), City: text(city)})
		return nil
	})
	return out, err
}

// CountPlansByCustomer counts plans per customer code.
func (s *Store) CountPlansByCustomer(ctx context.Context) ([]storage.Count, error) {
	return s.counts(ctx, "CountPlansByCustomer",
		`SELECT custcode, COUNT(*) FROM plans GROUP BY custcode ORDER BY custcode`)
}

// CountPlansByUser counts plans per user id.
func (s *Store) CountPlansByUser(ctx context.Context) ([]storage.Count, error) {
	return s.counts(ctx, "CountPlansByUser",
		`SELECT userid, COUNT(*) FROM plans GROUP BY userid ORDER BY userid`)
}

// CountPlansByClinic counts plans per clinic code.
func (s *Store) CountPlansByClinic(ctx context.Context) ([]storage.Count, error) {
	return s.counts(ctx, "CountPlansByClinic",
		`SELECT cliniccode, COUNT(*) FROM plans GROUP BY cliniccode ORDER BY cliniccode`)
}

// CountReportsByUser counts completed visit reports per planning user id.
func (s *Store) CountReportsByUser(ctx context.Context) ([]storage.Count, error) {
	return s.counts(ctx, "CountReportsByUser",
		`SELECT p.userid, COUNT(r.id) FROM reports r JOIN plans p ON r.idplan = p.id GROUP BY p.userid ORDER BY p.userid`)
}

// CountTransactionsBySalesman counts transactions per raw salesman field.
func (s *Store) CountTransactionsBySalesman(ctx context.Context) ([]storage.Count, error) {
	return s.counts(ctx, "CountTransactionsBySalesman",
		`SELECT salesman_name, COUNT(*) FROM transactions GROUP BY salesman_name ORDER BY salesman_name`)
}

// CountTransactionsByProduct counts transactions per raw product name.
func (s *Store) CountTransactionsByProduct(ctx context.Context) ([]storage.Count, error) {
	return s.counts(ctx, "CountTransactionsByProduct",
		`SELECT product, COUNT(*) FROM transactions GROUP BY product ORDER BY product`)
}

// CountTransactionsByCustomer counts transactions per non-empty customer id.
func (s *Store) CountTransactionsByCustomer(ctx context.Context) ([]storage.Count, error) {
	return s.counts(ctx, "CountTransactionsByCustomer",
		`SELECT cust_id, COUNT(*) FROM transactions WHERE cust_id IS NOT NULL AND cust_id != '' GROUP BY cust_id ORDER BY cust_id`)
}

// SumProductSales totals units and revenue per item id and raw product name.
func (s *Store) SumProductSales(ctx context.Context) ([]storage.ProductSales, error) {
	var out []storage.ProductSales
	err := s.query(ctx, "SumProductSales",
		`SELECT item_id, product, SUM(qty), SUM(amount) FROM transactions GROUP BY item_id, product ORDER BY item_id, product`,
		nil, func(rows *sql.Rows) error {
			var (
				itemID, product sql.NullString
				units, revenue  sql.NullFloat64
			)
			if err := rows.Scan(&itemID, &product, &units, &revenue); err != nil {
				return err
			}
			out = append(out, storage.ProductSales{
				ItemID:  text(itemID),
				Product: text(product),
				Units:   units.Float64,
				Revenue: revenue.Float64,
			})
			return nil
		})
	return out, err
}

// RecentVisitNotes returns up to limit visit notes filed by userID, newest
// report first. Notes are returned as stored, blank ones included.
func (s *Store) RecentVisitNotes(ctx context.Context, userID string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	var out []string
	err := s.query(ctx, "RecentVisitNotes",
		`SELECT r.visitnote FROM reports r JOIN plans p ON r.idplan = p.id WHERE p.userid = ? ORDER BY r.id DESC LIMIT ?`,
		[]any{userID, limit}, func(rows *sql.Rows) error {
			var note sql.NullString
			if err := rows.Scan(&note); err != nil {
				return err
			}
			out = append(out, note.String)
			return nil
		})
	return out, err
}

// CountVisitsByUserName counts completed visits per user name for plans
// dated inside period.
func (s *Store) CountVisitsByUserName(ctx context.Context, period storage.DateRange) ([]storage.Count, error) {
	return s.counts(ctx, "CountVisitsByUserName",
		`SELECT u.name, COUNT(r.id)
		   FROM reports r
		   JOIN plans p ON r.idplan = p.id
		   JOIN users u ON p.userid = u.id
		  WHERE p.date BETWEEN ? AND ?
		  GROUP BY u.name
		  ORDER BY u.name`,
		period.Start, period.End)
}

// SumSalesBySalesman counts transactions and totals amount*qty per raw
// salesman field for invoices dated inside period.
func (s *Store) SumSalesBySalesman(ctx context.Context, period storage.DateRange) ([]storage.SalesmanSales, error) {
	var out []storage.SalesmanSales
	err := s.query(ctx, "SumSalesBySalesman",
		`SELECT salesman_name, COUNT(*), SUM(amount * qty)
		   FROM transactions
		  WHERE inv_date BETWEEN ? AND ?
		  GROUP BY salesman_name
		  ORDER BY salesman_name`,
		[]any{period.Start, period.End}, func(rows *sql.Rows) error {
			var (
				name    sql.NullString
				count   int64
				revenue sql.NullFloat64
			)
			if err := rows.Scan(&name, &count, &revenue); err != nil {
				return err
			}
			out = append(out, storage.SalesmanSales{SalesmanName: text(name), Transactions: count, Revenue: revenue.Float64})
			return nil
		})
	return out, err
}

// TopProduct returns the raw product name with the most units sold inside
// period. ok is false when no transaction falls in the range.
func (s *Store) TopProduct(ctx context.Context, period storage.DateRange) (storage.ProductVolume, bool, error) {
	var (
		out   storage.ProductVolume
		found bool
	)
	err := s.query(ctx, "TopProduct",
		`SELECT product, SUM(qty) AS total_qty
		   FROM transactions
		  WHERE inv_date BETWEEN ? AND ?
		  GROUP BY product
		  ORDER BY total_qty DESC, product
		  LIMIT 1`,
		[]any{period.Start, period.End}, func(rows *sql.Rows) error {
			var (
				product sql.NullString
				units   sql.NullFloat64
			)
			if err := rows.Scan(&product, &units); err != nil {
				return err
			}
			out = storage.ProductVolume{Product: text(product), Units: units.Float64}
			found = true
			return nil
		})
	return out, found, err
}

func validatePurgeTable(table string) error {
	if !storage.IsPurgeTable(table) {
		return platformerrors.WithMetadata(platformerrors.CodeMaintenanceNoTable,
			fmt.Sprintf("table %q has no soft-delete column", table),
			map[string]string{"table": table})
	}
	return nil
}

// CountSoftDeleted counts rows of table with deleted_at set.
func (s *Store) CountSoftDeleted(ctx context.Context, table string) (int64, error) {
	if err := validatePurgeTable(table); err != nil {
		return 0, err
	}
	var total int64
	err := s.query(ctx, "CountSoftDeleted", `SELECT COUNT(*) FROM `+table+` WHERE deleted_at IS NOT NULL`, nil, func(rows *sql.Rows) error {
		return rows.Scan(&total)
	})
	return total, err
}

// PurgeSoftDeleted deletes rows of table with deleted_at set and returns how
// many were removed.
func (s *Store) PurgeSoftDeleted(ctx context.Context, table string) (removed int64, err error) {
	if err := validatePurgeTable(table); err != nil {
		return 0, err
	}
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	ctx, span := s.tracer.Start(ctx, "sqlstore.PurgeSoftDeleted",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", s.system), attribute.String("db.table", table)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM `+table+` WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return 0, platformerrors.Wrap(platformerrors.CodeStorageQuery, "purge "+table, err)
	}
	removed, err = result.RowsAffected()
	if err != nil {
		return 0, platformerrors.Wrap(platformerrors.CodeStorageQuery, "purge "+table+" rows affected", err)
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", removed))
	return removed, nil
}
