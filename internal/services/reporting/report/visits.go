package report

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cbta/cbta-mcp/internal/services/reporting/directory"
	"github.com/cbta/cbta-mcp/internal/services/reporting/identity"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
)

const (
	customerCutoff = 0.92
	clinicCutoff   = 0.88
)

func countMap(rows []storage.Count) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] += row.Count
	}
	return out
}

type groupedRow struct {
	ids   string
	name  string
	city  string
	count int64
}

// VisitsByCustomer counts planned visits per customer after merging
// customers whose normalised names are near-duplicates.
func (s *Service) VisitsByCustomer(ctx context.Context) (_ Table, err error) {
	ctx, finish := s.begin(ctx, "VisitsByCustomer")
	defer finish(&err)

	plans, err := s.store.CountPlansByCustomer(ctx)
	if err != nil {
		return Table{}, err
	}
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return Table{}, err
	}
	visits := countMap(plans)

	grouper := identity.NewGrouper[storage.Customer](customerCutoff, true)
	for _, customer := range customers {
		grouper.Add(identity.NormalizeName(customer.Name), customer)
	}

	var rows []groupedRow
	for _, group := range grouper.Groups() {
		ids := make([]string, 0, len(group.Members))
		names := make([]string, 0, len(group.Members))
		var total int64
		for _, member := range group.Members {
			ids = append(ids, member.ID)
			names = append(names, member.Name)
			total += visits[member.ID]
		}
		if total > 0 {
			rows = append(rows, groupedRow{ids: strings.Join(ids, "; "), name: longest(names), count: total})
		}
	}
	sortByDesc(rows, func(r groupedRow) int64 { return r.count })

	table := Table{
		Title:   "CONSOLIDATED VISIT REPORT (Auto-Deduplicated)",
		Columns: []string{"Customer ID(s)", "Customer Name", "Number of Visits"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{row.ids, row.name, itoa(row.count)})
	}
	return table, nil
}

type userCountRow struct {
	code  string
	name  string
	count int64
}

// userCounts maps per-user-id counts onto the user directory. Ids missing
// from the directory render as "ID <id>" with an unknown-user name.
func userCounts(users *directory.Users, counts []storage.Count) []userCountRow {
	rows := make([]userCountRow, 0, len(counts))
	for _, c := range counts {
		if user, ok := users.ByID(c.Key); ok {
			rows = append(rows, userCountRow{code: user.Username, name: user.Name, count: c.Count})
			continue
		}
		rows = append(rows, userCountRow{code: "ID " + c.Key, name: "[Unknown User]", count: c.Count})
	}
	sortByDesc(rows, func(r userCountRow) int64 { return r.count })
	return rows
}

func userCountTable(title, nameColumn, countColumn string, rows []userCountRow) Table {
	table := Table{Title: title, Columns: []string{"Sales User ID", nameColumn, countColumn}}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{row.code, row.name, itoa(row.count)})
	}
	return table
}

// VisitPlansBySalesman counts planned visits per planning user.
func (s *Service) VisitPlansBySalesman(ctx context.Context) (_ Table, err error) {
	ctx, finish := s.begin(ctx, "VisitPlansBySalesman")
	defer finish(&err)

	users, err := directory.LoadUsers(ctx, s.store)
	if err != nil {
		return Table{}, err
	}
	plans, err := s.store.CountPlansByUser(ctx)
	if err != nil {
		return Table{}, err
	}
	return userCountTable("PLANNED VISITS REPORT (Grouped by Salesman)", "Sales Name", "Visit Count",
		userCounts(users, plans)), nil
}

// ReportCountsBySalesman counts completed visit reports per planning user.
func (s *Service) ReportCountsBySalesman(ctx context.Context) (_ Table, err error) {
	ctx, finish := s.begin(ctx, "ReportCountsBySalesman")
	defer finish(&err)

	users, err := directory.LoadUsers(ctx, s.store)
	if err != nil {
		return Table{}, err
	}
	reports, err := s.store.CountReportsByUser(ctx)
	if err != nil {
		return Table{}, err
	}
	return userCountTable("COMPLETED REPORTS BY SALESMAN", "Salesman Name", "Total Reports",
		userCounts(users, reports)), nil
}

// VisitPlansByClinic counts planned visits per clinic. Clinics are merged
// only with near-duplicates in the same city, so branches of one chain in
// different cities stay apart.
func (s *Service) VisitPlansByClinic(ctx context.Context) (_ Table, err error) {
	ctx, finish := s.begin(ctx, "VisitPlansByClinic")
	defer finish(&err)

	clinics, err := directory.LoadClinics(ctx, s.store)
	if err != nil {
		return Table{}, err
	}
	plans, err := s.store.CountPlansByClinic(ctx)
	if err != nil {
		return Table{}, err
	}
	visits := countMap(plans)

	var rows []groupedRow
	for _, bucket := range clinics.Buckets() {
		entries := slices.Clone(bucket.Clinics)
		slices.SortStableFunc(entries, func(a, b directory.Clinic) int {
			return utf8.RuneCountInString(b.Clean) - utf8.RuneCountInString(a.Clean)
		})
		grouper := identity.NewGrouper[directory.Clinic](clinicCutoff, false)
		for _, clinic := range entries {
			grouper.Add(clinic.Clean, clinic)
		}
		for _, group := range grouper.Groups() {
			ids := make([]string, 0, len(group.Members))
			names := make([]string, 0, len(group.Members))
			var total int64
			for _, member := range group.Members {
				ids = append(ids, member.ID)
				names = append(names, member.Name)
				total += visits[member.ID]
			}
			if total > 0 {
				rows = append(rows, groupedRow{
					ids:   strings.Join(ids, ", "),
					name:  longest(names),
					city:  group.Members[0].CityDisplay,
					count: total,
				})
			}
		}
	}
	sortByDesc(rows, func(r groupedRow) int64 { return r.count })

	table := Table{
		Title:   "PLANNED VISITS REPORT (Grouped by Clinic)",
		Columns: []string{"Clinic ID(s)", "Clinic Name", "Clinic Address", "Number of Visits"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{row.ids, row.name, row.city, itoa(row.count)})
	}
	return table, nil
}
