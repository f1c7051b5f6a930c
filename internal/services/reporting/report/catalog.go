package report

import (
	"context"
	"slices"

	platformerrors "github.com/cbta/cbta-mcp/internal/platform/errors"
)

// Entry is one named report that needs no arguments.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	run         func(*Service, context.Context) (Table, error)
}

var entries = []Entry{
	{
		Name:        "fetch_deduplicated_visit_report",
		Description: "Planned visits grouped by deduplicated customer.",
		run:         (*Service).VisitsByCustomer,
	},
	{
		Name:        "fetch_deduplicated_sales_report",
		Description: "Transaction counts per resolved salesman.",
		run:         (*Service).SalesBySalesman,
	},
	{
		Name:        "fetch_transaction_report_by_customer_name",
		Description: "Transaction counts per customer linked through accounting ids.",
		run:         (*Service).TransactionsByCustomer,
	},
	{
		Name:        "fetch_visit_plans_by_salesman",
		Description: "Planned visits grouped by salesman.",
		run:         (*Service).VisitPlansBySalesman,
	},
	{
		Name:        "fetch_transaction_report_by_product",
		Description: "Units sold and revenue per official product.",
		run:         (*Service).TransactionsByProduct,
	},
	{
		Name:        "fetch_visit_plans_by_clinic",
		Description: "Planned visits grouped by clinic within each city.",
		run:         (*Service).VisitPlansByClinic,
	},
	{
		Name:        "fetch_report_counts_by_salesman",
		Description: "Completed visit reports grouped by salesman.",
		run:         (*Service).ReportCountsBySalesman,
	},
	{
		Name:        "fetch_comprehensive_salesman_performance",
		Description: "Plans, visits and transactions scorecard per salesman.",
		run:         (*Service).Scorecard,
	},
}

// Catalog lists the named tabular reports in a stable order.
func Catalog() []Entry {
	return slices.Clone(entries)
}

// Lookup returns the catalog entry called name.
func Lookup(name string) (Entry, bool) {
	for _, entry := range entries {
		if entry.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}

// Run builds the named report.
func (s *Service) Run(ctx context.Context, name string) (Table, error) {
	entry, ok := Lookup(name)
	if !ok {
		return Table{}, platformerrors.WithMetadata(platformerrors.CodeReportNotFound,
			"unknown report "+name, map[string]string{"report": name})
	}
	return entry.run(s, ctx)
}
