package report

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/cbta/cbta-mcp/internal/services/reporting/directory"
	"github.com/cbta/cbta-mcp/internal/services/reporting/identity"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
)

const (
	accountCutoff = 0.85
	productCutoff = 0.70

	noCode          = "[NO CODE]"
	unknownSalesman = "[Unknown Salesman]"
)

var accountPrefix = regexp.MustCompile(`^[A-Z]-`)

// ordered accumulates values under string keys and remembers first-seen
// key order.
type ordered[V any] struct {
	keys   []string
	values map[string]*V
}

func newOrdered[V any]() *ordered[V] {
	return &ordered[V]{values: make(map[string]*V)}
}

func (o *ordered[V]) at(key string) *V {
	v, ok := o.values[key]
	if !ok {
		v = new(V)
		o.values[key] = v
		o.keys = append(o.keys, key)
	}
	return v
}

func (o *ordered[V]) each(fn func(key string, v *V)) {
	for _, key := range o.keys {
		fn(key, o.values[key])
	}
}

// SalesBySalesman credits transaction counts to official users. A field that
// names several salesmen credits the full count to each of them. Fragments
// that resolve to nobody are listed under their cleaned name with no code,
// and transactions with no salesman at all under unknownSalesman.
func (s *Service) SalesBySalesman(ctx context.Context) (_ Table, err error) {
	ctx, finish := s.begin(ctx, "SalesBySalesman")
	defer finish(&err)

	users, err := directory.LoadUsers(ctx, s.store)
	if err != nil {
		return Table{}, err
	}
	counts, err := s.store.CountTransactionsBySalesman(ctx)
	if err != nil {
		return Table{}, err
	}

	official := newOrdered[int64]()
	unmatched := newOrdered[int64]()
	for _, row := range counts {
		if len(identity.SplitSalesmanField(row.Key)) == 0 {
			*unmatched.at(unknownSalesman) += row.Count
			continue
		}
		users.ResolveField(row.Key, func(fragment string, user storage.User, ok bool) {
			if ok {
				*official.at(user.ID) += row.Count
				return
			}
			core := identity.CleanSalesmanName(fragment)
			if core == "" {
				core = fragment
			}
			*unmatched.at(identity.Title(core)) += row.Count
		})
	}

	var rows []userCountRow
	official.each(func(id string, total *int64) {
		if user, ok := users.ByID(id); ok {
			rows = append(rows, userCountRow{code: user.Username, name: user.Name, count: *total})
		}
	})
	unmatched.each(func(name string, total *int64) {
		rows = append(rows, userCountRow{code: noCode, name: name, count: *total})
	})
	sortByDesc(rows, func(r userCountRow) int64 { return r.count })

	return userCountTable("CONSOLIDATED SALES REPORT (Auto-Deduplicated)", "Sales Name", "Transaction Count", rows), nil
}

type customerTotal struct {
	id    string
	count int64
}

// TransactionsByCustomer links accounting customer ids to the customer
// directory and counts transactions per official customer.
func (s *Service) TransactionsByCustomer(ctx context.Context) (_ Table, err error) {
	ctx, finish := s.begin(ctx, "TransactionsByCustomer")
	defer finish(&err)

	customers, err := directory.LoadCustomers(ctx, s.store)
	if err != nil {
		return Table{}, err
	}
	accounts, err := directory.LoadAccountNames(ctx, s.store)
	if err != nil {
		return Table{}, err
	}
	counts, err := s.store.CountTransactionsByCustomer(ctx)
	if err != nil {
		return Table{}, err
	}

	grouped := newOrdered[customerTotal]()
	for _, row := range counts {
		cid := accountPrefix.ReplaceAllString(strings.TrimSpace(row.Key), "")
		accountName := accounts[cid]
		if accountName == "" {
			entry := grouped.at("[Unknown ID] " + cid)
			entry.count += row.Count
			entry.id = cid
			continue
		}

		clean := identity.NormalizeName(accountName)
		if customer, ok := customers.Match(clean, accountCutoff); ok {
			entry := grouped.at(customer.Name)
			entry.count += row.Count
			entry.id = customer.ID
			continue
		}
		label := accountName
		if clean != "" {
			label = "[New] " + identity.Title(clean)
		}
		entry := grouped.at(label)
		entry.count += row.Count
		entry.id = cid
	}

	type row struct {
		id, name string
		count    int64
	}
	var rows []row
	grouped.each(func(name string, total *customerTotal) {
		rows = append(rows, row{id: total.id, name: name, count: total.count})
	})
	sortByDesc(rows, func(r row) int64 { return r.count })

	table := Table{
		Title:   "CUSTOMER TRANSACTION REPORT (Linked & Deduplicated)",
		Columns: []string{"Customer ID", "Customer Name", "Transaction Count"},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{r.id, r.name, itoa(r.count)})
	}
	return table, nil
}

type productTotal struct {
	units   int64
	revenue int64
}

// matchProduct places one raw product under an official product name or an
// uncategorized label. Item ids win, then whole-word containment of an
// official name, then fuzzy similarity.
func matchProduct(products *directory.Products, itemID, rawName string) string {
	if itemID != "" {
		if product, ok := products.ByID(itemID); ok {
			return product.Name
		}
	}
	clean := identity.NormalizeProductName(rawName)
	if clean != "" {
		if product, ok := products.Contained(clean); ok {
			return product.Name
		}
		if product, ok := products.Match(clean, productCutoff); ok {
			return product.Name
		}
		return "[Uncategorized] " + identity.Title(clean)
	}
	return "[Uncategorized] [Unknown Product]"
}

// TransactionsByProduct totals units sold and revenue per official product.
func (s *Service) TransactionsByProduct(ctx context.Context) (_ Table, err error) {
	ctx, finish := s.begin(ctx, "TransactionsByProduct")
	defer finish(&err)

	products, err := directory.LoadProducts(ctx, s.store)
	if err != nil {
		return Table{}, err
	}
	sales, err := s.store.SumProductSales(ctx)
	if err != nil {
		return Table{}, err
	}

	grouped := newOrdered[productTotal]()
	for _, sale := range sales {
		entry := grouped.at(matchProduct(products, strings.TrimSpace(sale.ItemID), sale.Product))
		entry.units += int64(sale.Units)
		entry.revenue += int64(math.Round(sale.Revenue))
	}

	type row struct {
		name    string
		units   int64
		revenue int64
	}
	var rows []row
	grouped.each(func(name string, total *productTotal) {
		rows = append(rows, row{name: name, units: total.units, revenue: total.revenue})
	})
	sortByDesc(rows, func(r row) int64 { return r.revenue })

	table := Table{
		Title:   "PRODUCT SALES REPORT (Consolidated)",
		Columns: []string{"Product Name", "Units Sold (Qty)", "Total Revenue"},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{r.name, itoa(r.units), groupInt(r.revenue)})
	}
	return table, nil
}
