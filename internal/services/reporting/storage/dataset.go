package storage

// Plan is a scheduled visit by a salesman to a customer or clinic.
type Plan struct {
	ID           int64
	UserID       string
	CustomerCode string
	ClinicCode   string
	Date         string
}

// Report is a completed visit filed against a plan.
type Report struct {
	ID        int64
	PlanID    int64
	VisitNote string
}

// Transaction is one invoice line as exported by accounting.
type Transaction struct {
	ID           int64
	SalesmanName string
	Product      string
	ItemID       string
	CustomerID   string
	Qty          float64
	Amount       float64
	InvoiceDate  string
}

// ClinicRow is a clinic as stored, including the owning customer code.
type ClinicRow struct {
	Clinic
	CustomerCode string
}

// SoftDelete marks one row of a purge table as deleted.
type SoftDelete struct {
	Table string
	ID    string
}

// Dataset is a complete set of rows used to populate an empty database.
type Dataset struct {
	Users            []User
	Customers        []Customer
	AccountCustomers []AccountCustomer
	Clinics          []ClinicRow
	Products         []Product
	Plans            []Plan
	Reports          []Report
	Transactions     []Transaction
	Deleted          []SoftDelete
}
