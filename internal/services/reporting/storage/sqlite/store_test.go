package sqlite_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	platformerrors "github.com/cbta/cbta-mcp/internal/platform/errors"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/sqlite"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/storagetest"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := sqlite.Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenReappliesNothingOnExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cbta.db")
	first, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	if err := first.Load(context.Background(), storage.Dataset{Users: []storage.User{{ID: "1", Username: "PS101", Name: "Gladys"}}}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close first: %v", err)
	}

	second, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	users, err := second.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("users = %d, want 1", len(users))
	}
}

func TestDirectoriesUseNaturalIDOrder(t *testing.T) {
	t.Parallel()

	store := storagetest.OpenSQLite(t, storage.Dataset{
		Users:     []storage.User{{ID: "10", Name: "Ten"}, {ID: "2", Name: "Two"}, {ID: "1", Name: "One"}},
		Customers: []storage.Customer{{ID: "C10", Name: "Ten"}, {ID: "C2", Name: "Two"}, {ID: "C1", Name: "One"}},
		Clinics: []storage.ClinicRow{
			{Clinic: storage.Clinic{ID: "K11", Name: "Eleven"}},
			{Clinic: storage.Clinic{ID: "K3", Name: "Three"}},
		},
		Products: []storage.Product{{ID: "P12", Name: "Twelve"}, {ID: "P9", Name: "Nine"}},
	})
	ctx := context.Background()

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	customers, err := store.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	clinics, err := store.ListClinics(ctx)
	if err != nil {
		t.Fatalf("list clinics: %v", err)
	}
	products, err := store.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}

	var got []string
	for _, u := range users {
		got = append(got, u.ID)
	}
	for _, c := range customers {
		got = append(got, c.ID)
	}
	for _, c := range clinics {
		got = append(got, c.ID)
	}
	for _, p := range products {
		got = append(got, p.ID)
	}
	want := []string{"1", "2", "10", "C1", "C2", "C10", "K3", "K11", "P9", "P12"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("id order mismatch (-want +got):\n%s", diff)
	}
}

func TestDirectories(t *testing.T) {
	t.Parallel()

	store := storagetest.OpenSQLite(t, storagetest.Fixture())
	ctx := context.Background()

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 4 || users[1] != (storage.User{ID: "2", Username: "PS102", Name: "Drg. Wilson Sp.Ort"}) {
		t.Fatalf("users = %+v", users)
	}

	customers, err := store.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if customers[1].Phone != "" {
		t.Fatalf("C2 phone = %q, want empty for NULL", customers[1].Phone)
	}

	accounts, err := store.ListAccountCustomers(ctx)
	if err != nil {
		t.Fatalf("list account customers: %v", err)
	}
	if got := accounts[3]; got != (storage.AccountCustomer{CID: "4004"}) {
		t.Fatalf("account 4004 = %+v", got)
	}

	clinics, err := store.ListClinics(ctx)
	if err != nil {
		t.Fatalf("list clinics: %v", err)
	}
	if clinics[2].City != "Pilih Kota/Kab" {
		t.Fatalf("K3 city = %q", clinics[2].City)
	}
}

func TestActivityCounts(t *testing.T) {
	t.Parallel()

	store := storagetest.OpenSQLite(t, storagetest.Fixture())
	ctx := context.Background()

	tests := []struct {
		name  string
		query func(context.Context) ([]storage.Count, error)
		want  []storage.Count
	}{
		{
			name:  "plans by user",
			query: store.CountPlansByUser,
			want:  []storage.Count{{Key: "1", Count: 3}, {Key: "2", Count: 2}, {Key: "3", Count: 1}, {Key: "9", Count: 1}},
		},
		{
			name:  "reports by user",
			query: store.CountReportsByUser,
			want:  []storage.Count{{Key: "1", Count: 2}, {Key: "2", Count: 2}, {Key: "3", Count: 1}},
		},
		{
			name:  "plans by clinic",
			query: store.CountPlansByClinic,
			want:  []storage.Count{{Key: "", Count: 1}, {Key: "K1", Count: 3}, {Key: "K2", Count: 1}, {Key: "K3", Count: 1}, {Key: "K4", Count: 1}},
		},
		{
			name:  "transactions by customer skips empty ids",
			query: store.CountTransactionsByCustomer,
			want: []storage.Count{
				{Key: "1001", Count: 1}, {Key: "3003", Count: 1}, {Key: "9999", Count: 1},
				{Key: "A-1001", Count: 1}, {Key: "B-2002", Count: 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.query(ctx)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("counts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSumProductSales(t *testing.T) {
	t.Parallel()

	store := storagetest.OpenSQLite(t, storagetest.Fixture())
	got, err := store.SumProductSales(context.Background())
	if err != nil {
		t.Fatalf("sum product sales: %v", err)
	}
	last := got[len(got)-1]
	if last.ItemID != "P1" || last.Units != 3 || math.Abs(last.Revenue-200.4) > 1e-9 {
		t.Fatalf("P1 sales = %+v", last)
	}
	if got[0].ItemID != "" || got[0].Product != "Retainer Case" {
		t.Fatalf("first group = %+v, want NULL item id Retainer Case", got[0])
	}
}

func TestRecentVisitNotesNewestFirst(t *testing.T) {
	t.Parallel()

	store := storagetest.OpenSQLite(t, storagetest.Fixture())
	ctx := context.Background()

	notes, err := store.RecentVisitNotes(ctx, "2", 50)
	if err != nil {
		t.Fatalf("recent notes: %v", err)
	}
	if diff := cmp.Diff([]string{"Follow up next week", "Demo of aligners"}, notes); diff != "" {
		t.Fatalf("notes mismatch (-want +got):\n%s", diff)
	}

	limited, err := store.RecentVisitNotes(ctx, "2", 1)
	if err != nil {
		t.Fatalf("recent notes limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limited notes = %v", limited)
	}
}

func TestPerformanceQueries(t *testing.T) {
	t.Parallel()

	store := storagetest.OpenSQLite(t, storagetest.Fixture())
	ctx := context.Background()
	january := storage.DateRange{Start: "2026-01-01", End: "2026-01-31"}

	visits, err := store.CountVisitsByUserName(ctx, january)
	if err != nil {
		t.Fatalf("visits: %v", err)
	}
	wantVisits := []storage.Count{{Key: "Drg. Wilson Sp.Ort", Count: 1}, {Key: "Gladys Simanjuntak", Count: 2}}
	if diff := cmp.Diff(wantVisits, visits); diff != "" {
		t.Fatalf("visits mismatch (-want +got):\n%s", diff)
	}

	sales, err := store.SumSalesBySalesman(ctx, january)
	if err != nil {
		t.Fatalf("sales: %v", err)
	}
	if len(sales) != 4 || sales[0].SalesmanName != "Dodi" || sales[0].Revenue != 999.5 {
		t.Fatalf("sales = %+v", sales)
	}

	top, ok, err := store.TopProduct(ctx, january)
	if err != nil {
		t.Fatalf("top product: %v", err)
	}
	if !ok || top.Product != "Retainer Case" || top.Units != 3 {
		t.Fatalf("top = %+v ok=%v", top, ok)
	}

	_, ok, err = store.TopProduct(ctx, storage.DateRange{Start: "2020-01-01", End: "2020-01-31"})
	if err != nil {
		t.Fatalf("top product empty: %v", err)
	}
	if ok {
		t.Fatal("expected no top product for an empty period")
	}
}

func TestPurgeSoftDeleted(t *testing.T) {
	t.Parallel()

	data := storagetest.Fixture()
	data.Deleted = []storage.SoftDelete{{Table: "users", ID: "4"}, {Table: "transactions", ID: "6"}}
	store := storagetest.OpenSQLite(t, data)
	ctx := context.Background()

	pending, err := store.CountSoftDeleted(ctx, "users")
	if err != nil {
		t.Fatalf("count soft deleted: %v", err)
	}
	if pending != 1 {
		t.Fatalf("pending = %d, want 1", pending)
	}

	removed, err := store.PurgeSoftDeleted(ctx, "transactions")
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	remaining, err := store.CountSoftDeleted(ctx, "transactions")
	if err != nil {
		t.Fatalf("count after purge: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}

	_, err = store.PurgeSoftDeleted(ctx, "plans")
	if platformerrors.CodeOf(err) != platformerrors.CodeMaintenanceNoTable {
		t.Fatalf("purge plans err = %v, want maintenance no-table code", err)
	}
}

func TestLoadRejectsUnknownSoftDeleteTable(t *testing.T) {
	t.Parallel()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "cbta.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	err = store.Load(context.Background(), storage.Dataset{Deleted: []storage.SoftDelete{{Table: "plans", ID: "1"}}})
	if err == nil {
		t.Fatal("expected soft delete error for plans")
	}
}

func TestPingClosedStore(t *testing.T) {
	t.Parallel()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "cbta.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := store.Ping(context.Background()); platformerrors.CodeOf(err) != platformerrors.CodeStorageUnavailable {
		t.Fatalf("ping after close = %v, want storage unavailable", err)
	}
}
