package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	platformerrors "github.com/cbta/cbta-mcp/internal/platform/errors"
	"github.com/cbta/cbta-mcp/internal/services/reporting/directory"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// HistoryNoteLimit is how many of the newest visit reports a history reads.
const HistoryNoteLimit = 50

type scoreStats struct {
	plans        int64
	reports      int64
	transactions int64
}

// Scorecard sets plans, completed visits and resolved transactions side by
// side for every official user with any activity.
func (s *Service) Scorecard(ctx context.Context) (_ Table, err error) {
	ctx, finish := s.begin(ctx, "Scorecard")
	defer finish(&err)

	var (
		users                  *directory.Users
		plans, reports, trades []storage.Count
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = directory.LoadUsers(gctx, s.store)
		return err
	})
	g.Go(func() error {
		var err error
		plans, err = s.store.CountPlansByUser(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = s.store.CountReportsByUser(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		trades, err = s.store.CountTransactionsBySalesman(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Table{}, err
	}

	stats := newOrdered[scoreStats]()
	for _, row := range plans {
		if _, ok := users.ByID(row.Key); ok {
			stats.at(row.Key).plans += row.Count
		}
	}
	for _, row := range reports {
		if _, ok := users.ByID(row.Key); ok {
			stats.at(row.Key).reports += row.Count
		}
	}
	for _, row := range trades {
		users.ResolveField(row.Key, func(_ string, user storage.User, ok bool) {
			if ok {
				stats.at(user.ID).transactions += row.Count
			}
		})
	}

	type row struct {
		user storage.User
		scoreStats
	}
	var rows []row
	stats.each(func(id string, st *scoreStats) {
		if user, ok := users.ByID(id); ok {
			rows = append(rows, row{user: user, scoreStats: *st})
		}
	})
	sortByDesc(rows, func(r row) int64 { return r.transactions })

	table := Table{
		Title: "SALESMAN PERFORMANCE SCORECARD (360 View)",
		Columns: []string{
			"Sales User ID", "Salesman Name", "Total Plans", "Total Visits",
			"Total Transactions", "Plan to Visit Ratio", "Visit to Transaction Ratio",
		},
	}
	for _, r := range rows {
		var planToVisit, visitToTrade float64
		if r.plans > 0 {
			planToVisit = ratio(r.reports, r.plans)
		}
		switch {
		case r.reports > 0:
			visitToTrade = ratio(r.transactions, r.reports)
		case r.transactions > 0:
			visitToTrade = float64(r.transactions)
		}
		table.Rows = append(table.Rows, []string{
			r.user.Username, r.user.Name,
			itoa(r.plans), itoa(r.reports), itoa(r.transactions),
			fixed2(planToVisit), fixed2(visitToTrade),
		})
	}
	return table, nil
}

// History is one salesman's transaction total and recent visit notes.
type History struct {
	UserID       string   `json:"user_id"`
	Name         string   `json:"name"`
	Transactions int64    `json:"transactions"`
	Notes        []string `json:"notes"`
}

// Text renders the history block.
func (h History) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== DATA FOR: %s (ID: %s) ===\n", h.Name, h.UserID)
	fmt.Fprintf(&b, "Total Transactions: %d\n", h.Transactions)
	fmt.Fprintf(&b, "Total Visit Reports: %d\n", len(h.Notes))
	b.WriteString("Recent Visit Notes:\n")
	if len(h.Notes) == 0 {
		b.WriteString("(No notes found)")
	} else {
		for i, note := range h.Notes {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- ")
			b.WriteString(note)
		}
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", 40))
	b.WriteString("\n")
	return b.String()
}

// SalesmanNotFound builds the error returned when a name resolves to nobody.
func SalesmanNotFound(name string) error {
	return platformerrors.WithMetadata(platformerrors.CodeSalesmanNotFound,
		fmt.Sprintf("Could not find salesman '%s'. Please check the name or code.", name),
		map[string]string{"salesman": name})
}

// SalesmanHistory resolves name to an official user and collects their
// resolved transaction count and non-empty notes from the newest reports.
func (s *Service) SalesmanHistory(ctx context.Context, name string) (_ History, err error) {
	ctx, finish := s.begin(ctx, "SalesmanHistory", attribute.String("salesman", name))
	defer finish(&err)

	users, err := directory.LoadUsers(ctx, s.store)
	if err != nil {
		return History{}, err
	}
	return s.history(ctx, users, name)
}

func (s *Service) history(ctx context.Context, users *directory.Users, name string) (History, error) {
	target, ok := users.Resolve(name)
	if !ok {
		return History{}, SalesmanNotFound(name)
	}

	counts, err := s.store.CountTransactionsBySalesman(ctx)
	if err != nil {
		return History{}, err
	}
	history := History{UserID: target.ID, Name: target.Name, Notes: []string{}}
	for _, row := range counts {
		users.ResolveField(row.Key, func(_ string, user storage.User, ok bool) {
			if ok && user.ID == target.ID {
				history.Transactions += row.Count
			}
		})
	}

	notes, err := s.store.RecentVisitNotes(ctx, target.ID, HistoryNoteLimit)
	if err != nil {
		return History{}, err
	}
	for _, note := range notes {
		if note = strings.TrimSpace(note); note != "" {
			history.Notes = append(history.Notes, note)
		}
	}
	return history, nil
}

// HistoryText renders a salesman history, or the lookup error line when the
// name resolves to nobody. Only storage failures are returned as errors.
func (s *Service) HistoryText(ctx context.Context, name string) (string, error) {
	history, err := s.SalesmanHistory(ctx, name)
	return historyText(history, err)
}

func historyText(history History, err error) (string, error) {
	if err != nil {
		if platformerrors.CodeOf(err) == platformerrors.CodeSalesmanNotFound {
			return "Error: " + notFoundMessage(err), nil
		}
		return "", err
	}
	return history.Text(), nil
}

func notFoundMessage(err error) string {
	var domainErr *platformerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// Comparison renders two salesman histories as one dataset.
func (s *Service) Comparison(ctx context.Context, a, b string) (_ string, err error) {
	ctx, finish := s.begin(ctx, "Comparison",
		attribute.String("salesman_a", a), attribute.String("salesman_b", b))
	defer finish(&err)

	users, err := directory.LoadUsers(ctx, s.store)
	if err != nil {
		return "", err
	}
	first, err := historyText(s.history(ctx, users, a))
	if err != nil {
		return "", err
	}
	second, err := historyText(s.history(ctx, users, b))
	if err != nil {
		return "", err
	}
	return "COMPARISON DATASET:\n\n" + first + "\n\n" + second, nil
}

// Performer is one salesman's activity inside a period.
type Performer struct {
	Name         string  `json:"name"`
	Visits       int64   `json:"visits"`
	Transactions int64   `json:"transactions"`
	Revenue      float64 `json:"revenue"`
}

// Performance summarises the winners of a period.
type Performance struct {
	Start      string      `json:"start_date"`
	End        string      `json:"end_date"`
	Performers []Performer `json:"performers"`
	TopProduct string      `json:"top_product"`
	TopUnits   float64     `json:"top_units"`
	HasProduct bool        `json:"has_product"`
}

// best returns the first performer with the highest metric.
func best(performers []Performer, metric func(Performer) float64) (Performer, float64) {
	var (
		winner Performer
		top    float64
	)
	for i, p := range performers {
		if v := metric(p); i == 0 || v > top {
			winner, top = p, v
		}
	}
	return winner, top
}

// Text renders the winners table, or the no-data line for an empty period.
func (p Performance) Text() string {
	if len(p.Performers) == 0 {
		return fmt.Sprintf("No performance data found between %s and %s.", p.Start, p.End)
	}

	visits, _ := best(p.Performers, func(x Performer) float64 { return float64(x.Visits) })
	trades, _ := best(p.Performers, func(x Performer) float64 { return float64(x.Transactions) })
	revenue, _ := best(p.Performers, func(x Performer) float64 { return x.Revenue })

	var withVisits []Performer
	for _, x := range p.Performers {
		if x.Visits > 0 {
			withVisits = append(withVisits, x)
		}
	}
	conversion := "No valid visits recorded to calculate conversion."
	if len(withVisits) > 0 {
		winner, rate := best(withVisits, func(x Performer) float64 {
			return float64(x.Transactions) / float64(x.Visits) * 100
		})
		conversion = fmt.Sprintf("**%s** with %.2f%%", winner.Name, rate)
	}

	product := "N/A"
	if p.HasProduct {
		product = fmt.Sprintf("%s (%s units)", p.TopProduct, strconv.FormatFloat(p.TopUnits, 'f', -1, 64))
	}

	var b strings.Builder
	b.WriteString("\n### 🏆 Best Performers Report\n")
	fmt.Fprintf(&b, "**Period:** %s to %s\n\n", p.Start, p.End)
	b.WriteString("| Category | Winner | Stat |\n")
	b.WriteString("| :--- | :--- | :--- |\n")
	fmt.Fprintf(&b, "| **Highest Visit Count** | **%s** | %d visits |\n", visits.Name, visits.Visits)
	fmt.Fprintf(&b, "| **Highest Transaction Count** | **%s** | %d transactions |\n", trades.Name, trades.Transactions)
	fmt.Fprintf(&b, "| **Highest Revenue** | **%s** | $%s |\n", revenue.Name, groupMoney(revenue.Revenue))
	fmt.Fprintf(&b, "| **Best Conversion Ratio** | %s | (Trans / Visits) |\n\n", conversion)
	b.WriteString("#### 📦 Most Popular Product\n")
	fmt.Fprintf(&b, "**%s**\n", product)
	return b.String()
}

// ParsePeriod validates an inclusive YYYY-MM-DD range.
func ParsePeriod(start, end string) (storage.DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return storage.DateRange{}, platformerrors.New(platformerrors.CodeArgumentMissing, "start_date and end_date are required")
	}
	from, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return storage.DateRange{}, platformerrors.Wrap(platformerrors.CodeInvalidDate, fmt.Sprintf("start_date %q is not YYYY-MM-DD", start), err)
	}
	to, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return storage.DateRange{}, platformerrors.Wrap(platformerrors.CodeInvalidDate, fmt.Sprintf("end_date %q is not YYYY-MM-DD", end), err)
	}
	if to.Before(from) {
		return storage.DateRange{}, platformerrors.WithMetadata(platformerrors.CodeInvalidDateRange,
			fmt.Sprintf("end_date %s is before start_date %s", end, start),
			map[string]string{"start_date": start, "end_date": end})
	}
	return storage.DateRange{Start: start, End: end}, nil
}

// BestPerformers finds the period's leaders. Visits are keyed by official
// user name; transaction salesman fields are resolved to the same names so
// one person's visits and sales land on one row. Fragments that resolve to
// nobody keep their raw text.
func (s *Service) BestPerformers(ctx context.Context, start, end string) (_ Performance, err error) {
	ctx, finish := s.begin(ctx, "BestPerformers",
		attribute.String("start_date", start), attribute.String("end_date", end))
	defer finish(&err)

	period, err := ParsePeriod(start, end)
	if err != nil {
		return Performance{}, err
	}

	var (
		users  *directory.Users
		visits []storage.Count
		sales  []storage.SalesmanSales
		top    storage.ProductVolume
		hasTop bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = directory.LoadUsers(gctx, s.store)
		return err
	})
	g.Go(func() error {
		var err error
		visits, err = s.store.CountVisitsByUserName(gctx, period)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.store.SumSalesBySalesman(gctx, period)
		return err
	})
	g.Go(func() error {
		var err error
		top, hasTop, err = s.store.TopProduct(gctx, period)
		return err
	})
	if err := g.Wait(); err != nil {
		return Performance{}, err
	}

	stats := newOrdered[Performer]()
	for _, row := range visits {
		stats.at(row.Key).Visits += row.Count
	}
	for _, row := range sales {
		if row.SalesmanName == "" {
			continue
		}
		users.ResolveField(row.SalesmanName, func(fragment string, user storage.User, ok bool) {
			key := fragment
			if ok {
				key = user.Name
			}
			entry := stats.at(key)
			entry.Transactions += row.Transactions
			entry.Revenue += row.Revenue
		})
	}

	out := Performance{Start: period.Start, End: period.End, Performers: []Performer{}}
	stats.each(func(name string, p *Performer) {
		p.Name = name
		out.Performers = append(out.Performers, *p)
	})
	if hasTop {
		out.TopProduct, out.TopUnits, out.HasProduct = top.Product, top.Units, true
	}
	return out, nil
}
