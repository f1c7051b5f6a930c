package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/cbta/cbta-mcp/internal/services/reporting/directory"
	"github.com/cbta/cbta-mcp/internal/services/reporting/identity"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
)

// Listing is a heading followed by one "- " line per item.
type Listing struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// Text renders the listing. Items are joined without a trailing newline.
func (l Listing) Text() string {
	lines := make([]string, len(l.Items))
	for i, item := range l.Items {
		lines[i] = "- " + item
	}
	return l.Title + ":\n" + strings.Join(lines, "\n")
}

func countListing(title string, rows []storage.Count, format func(storage.Count) string) Listing {
	listing := Listing{Title: title, Items: make([]string, 0, len(rows))}
	for _, row := range rows {
		listing.Items = append(listing.Items, format(row))
	}
	return listing
}

// RawSalesLog lists transaction counts per raw salesman field.
func (s *Service) RawSalesLog(ctx context.Context) (_ Listing, err error) {
	ctx, finish := s.begin(ctx, "RawSalesLog")
	defer finish(&err)

	rows, err := s.store.CountTransactionsBySalesman(ctx)
	if err != nil {
		return Listing{}, err
	}
	return countListing("RAW SALES LOG", rows, func(c storage.Count) string {
		return fmt.Sprintf("%s: %d", c.Key, c.Count)
	}), nil
}

// RawProductLog lists transaction counts per raw product name.
func (s *Service) RawProductLog(ctx context.Context) (_ Listing, err error) {
	ctx, finish := s.begin(ctx, "RawProductLog")
	defer finish(&err)

	rows, err := s.store.CountTransactionsByProduct(ctx)
	if err != nil {
		return Listing{}, err
	}
	return countListing("RAW PRODUCT LOG", rows, func(c storage.Count) string {
		return fmt.Sprintf("%s: %d", c.Key, c.Count)
	}), nil
}

// RawPlanLog lists planned visit counts per user id.
func (s *Service) RawPlanLog(ctx context.Context) (_ Listing, err error) {
	ctx, finish := s.begin(ctx, "RawPlanLog")
	defer finish(&err)

	rows, err := s.store.CountPlansByUser(ctx)
	if err != nil {
		return Listing{}, err
	}
	return countListing("RAW PLAN LOG", rows, func(c storage.Count) string {
		return fmt.Sprintf("UserID %s: %d visits", c.Key, c.Count)
	}), nil
}

// ProductRegistry lists official product names.
func (s *Service) ProductRegistry(ctx context.Context) (Listing, error) {
	products, err := directory.LoadProducts(ctx, s.store)
	if err != nil {
		return Listing{}, err
	}
	listing := Listing{Title: "OFFICIAL PRODUCT REGISTRY", Items: make([]string, 0, len(products.List()))}
	for _, p := range products.List() {
		listing.Items = append(listing.Items, p.Name)
	}
	return listing, nil
}

// UserDirectory lists official users with their id and username.
func (s *Service) UserDirectory(ctx context.Context) (Listing, error) {
	users, err := directory.LoadUsers(ctx, s.store)
	if err != nil {
		return Listing{}, err
	}
	listing := Listing{Title: "OFFICIAL USER DIRECTORY", Items: make([]string, 0, len(users.List()))}
	for _, u := range users.List() {
		listing.Items = append(listing.Items, fmt.Sprintf("[ID: %s] [%s] %s", u.ID, u.Username, u.Name))
	}
	return listing, nil
}

// CustomerDirectory lists customers with their id and normalised phone.
func (s *Service) CustomerDirectory(ctx context.Context) (Listing, error) {
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return Listing{}, err
	}
	listing := Listing{Title: "OFFICIAL CUSTOMER DIRECTORY", Items: make([]string, 0, len(customers))}
	for _, c := range customers {
		item := fmt.Sprintf("[ID: %s] %s", c.ID, c.Name)
		if phone := identity.NormalizePhone(c.Phone); phone != "" {
			item += " (" + phone + ")"
		}
		listing.Items = append(listing.Items, item)
	}
	return listing, nil
}
