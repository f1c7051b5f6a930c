// Package storage defines the rows and queries the reporting layer reads from
// the field-sales database.
package storage

import (
	"context"
	"slices"
)

// User is one row of the official user directory.
type User struct {
	ID       string
	Username string
	Name     string
}

// Customer is one row of the customer directory.
type Customer struct {
	ID    string
	Name  string
	Phone string
}

// AccountCustomer links an accounting customer id to the name accounting uses.
type AccountCustomer struct {
	CID  string
	Name string
}

// Product is one row of the official product registry.
type Product struct {
	ID   string
	Name string
}

// Clinic is one row of the clinic directory.
type Clinic struct {
	ID   string
	Name string
	City string
}

// Count is one GROUP BY bucket. Key is the trimmed group value, "" for NULL.
type Count struct {
	Key   string
	Count int64
}

// ProductSales aggregates transactions sharing an item id and raw product name.
type ProductSales struct {
	ItemID  string
	Product string
	Units   float64
	Revenue float64
}

// SalesmanSales aggregates transactions sharing a raw salesman field.
type SalesmanSales struct {
	SalesmanName string
	Transactions int64
	Revenue      float64
}

// ProductVolume is the quantity sold of one raw product name.
type ProductVolume struct {
	Product string
	Units   float64
}

// DateRange is an inclusive YYYY-MM-DD range.
type DateRange struct {
	Start string
	End   string
}

// Directories lists reference data.
type Directories interface {
	ListUsers(ctx context.Context) ([]User, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	ListAccountCustomers(ctx context.Context) ([]AccountCustomer, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListClinics(ctx context.Context) ([]Clinic, error)
}

// Activity aggregates plans, visit reports and transactions.
type Activity interface {
	CountPlansByCustomer(ctx context.Context) ([]Count, error)
	CountPlansByUser(ctx context.Context) ([]Count, error)
	CountPlansByClinic(ctx context.Context) ([]Count, error)
	CountReportsByUser(ctx context.Context) ([]Count, error)
	CountTransactionsBySalesman(ctx context.Context) ([]Count, error)
	CountTransactionsByProduct(ctx context.Context) ([]Count, error)
	CountTransactionsByCustomer(ctx context.Context) ([]Count, error)
	SumProductSales(ctx context.Context) ([]ProductSales, error)
	RecentVisitNotes(ctx context.Context, userID string, limit int) ([]string, error)
}

// Performance aggregates activity inside a date range.
type Performance interface {
	CountVisitsByUserName(ctx context.Context, period DateRange) ([]Count, error)
	SumSalesBySalesman(ctx context.Context, period DateRange) ([]SalesmanSales, error)
	TopProduct(ctx context.Context, period DateRange) (ProductVolume, bool, error)
}

// Reader is everything the reports read.
type Reader interface {
	Directories
	Activity
	Performance
	Ping(ctx context.Context) error
}

// PurgeTables are the tables that carry a deleted_at soft-delete column.
var PurgeTables = []string{"clinics", "customers", "transactions", "users"}

// IsPurgeTable reports whether table may be purged.
func IsPurgeTable(table string) bool {
	return slices.Contains(PurgeTables, table)
}

// Purger removes soft-deleted rows.
type Purger interface {
	CountSoftDeleted(ctx context.Context, table string) (int64, error)
	PurgeSoftDeleted(ctx context.Context, table string) (int64, error)
}

// Store is a complete reporting backend.
type Store interface {
	Reader
	Purger
	Close() error
}
