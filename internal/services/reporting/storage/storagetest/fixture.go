package storagetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/sqlite"
)

// Fixture returns the shared test dataset.
func Fixture() storage.Dataset {
	return storage.Dataset{
		Users: []storage.User{
			{ID: "1", Username: "PS101", Name: "Gladys Simanjuntak"},
			{ID: "2", Username: "PS102", Name: "Drg. Wilson Sp.Ort"},
			{ID: "3", Username: "DC7", Name: "Budi Santoso"},
			{ID: "4", Username: "AM205", Name: "Ani Lestari"},
		},
		Customers: []storage.Customer{
			{ID: "C1", Name: "Klinik Sehat Sentosa", Phone: "+62 812-3456"},
			{ID: "C2", Name: "Klinik Sehat Sentosa."},
			{ID: "C3", Name: "Apotek Maju Jaya", Phone: "null"},
			{ID: "C4", Name: "Toko Baru", Phone: "0899"},
		},
		AccountCustomers: []storage.AccountCustomer{
			{CID: "1001", Name: "KLINIK SEHAT SENTOSA"},
			{CID: "2002", Name: "Apotek Maju Jaya Tbk"},
			{CID: "3003", Name: "Warung Baru Sekali"},
			{CID: "4004"},
		},
		Clinics: []storage.ClinicRow{
			{Clinic: storage.Clinic{ID: "K1", Name: "Klinik Sehat Sentosa", City: "Jakarta"}, CustomerCode: "C1"},
			{Clinic: storage.Clinic{ID: "K2", Name: "Sehat Sentosa", City: "jakarta"}, CustomerCode: "C2"},
			{Clinic: storage.Clinic{ID: "K3", Name: "Apotek Maju Jaya", City: "Pilih Kota/Kab"}, CustomerCode: "C3"},
			{Clinic: storage.Clinic{ID: "K4", Name: "Klinik Sehat Sentosa", City: "Bandung"}, CustomerCode: "C1"},
		},
		Products: []storage.Product{
			{ID: "P1", Name: "Aligner Kit Pro"},
			{ID: "P2", Name: "Retainer Case"},
			{ID: "P3", Name: "Kit"},
		},
		Plans: []storage.Plan{
			{ID: 1, UserID: "1", CustomerCode: "C1", ClinicCode: "K1", Date: "2026-01-05"},
			{ID: 2, UserID: "1", CustomerCode: "C2", ClinicCode: "K2", Date: "2026-01-06"},
			{ID: 3, UserID: "1", CustomerCode: "C3", ClinicCode: "K3", Date: "2026-01-07"},
			{ID: 4, UserID: "2", CustomerCode: "C1", ClinicCode: "K1", Date: "2026-01-08"},
			{ID: 5, UserID: "2", CustomerCode: "C3", ClinicCode: "K4", Date: "2026-02-01"},
			{ID: 6, UserID: "3", CustomerCode: "C1", ClinicCode: "K1", Date: "2026-02-02"},
			{ID: 7, UserID: "9", CustomerCode: "C4", Date: "2026-01-09"},
		},
		Reports: []storage.Report{
			{ID: 1, PlanID: 1, VisitNote: "Met the owner, discussed restock"},
			{ID: 2, PlanID: 2, VisitNote: "   "},
			{ID: 3, PlanID: 4, VisitNote: "Demo of aligners"},
			{ID: 4, PlanID: 5, VisitNote: "Follow up next week"},
			{ID: 5, PlanID: 6},
		},
		Transactions: []storage.Transaction{
			{ID: 1, SalesmanName: "PS101 Gladys", Product: "Aligner Kit Pro", ItemID: "P1", CustomerID: "A-1001", Qty: 2, Amount: 100.4, InvoiceDate: "2026-01-10"},
			{ID: 2, SalesmanName: "ps-101", Product: "aligner kit pro - box", CustomerID: "1001", Qty: 1, Amount: 50.2, InvoiceDate: "2026-01-11"},
			{ID: 3, SalesmanName: "GLADYS / WILSON", Product: "Retainer Case", CustomerID: "B-2002", Qty: 3, Amount: 10, InvoiceDate: "2026-01-12"},
			{ID: 4, SalesmanName: "Dodi", Product: "Unknown Gizmo", CustomerID: "3003", Qty: 1, Amount: 999.5, InvoiceDate: "2026-01-13"},
			{ID: 5, SalesmanName: "wilson", Product: "Retainer Cse", Qty: 5, Amount: 20, InvoiceDate: "2026-02-15"},
			{ID: 6, Product: "Aligner Kit Pro", ItemID: "P1", CustomerID: "9999", Qty: 1, Amount: 100, InvoiceDate: "2026-03-01"},
		},
	}
}

// OpenSQLite opens an empty SQLite store in a temp dir, loads data into it
// and closes it when the test ends.
func OpenSQLite(t testing.TB, data storage.Dataset) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "cbta.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	if err := store.Load(context.Background(), data); err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	return store
}
