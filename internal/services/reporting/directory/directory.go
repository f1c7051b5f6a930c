// Package directory loads the official reference tables and indexes them for
// matching raw activity data.
package directory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cbta/cbta-mcp/internal/services/reporting/identity"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
)

// Users is the official user directory with a salesman resolver over it.
type Users struct {
	list     []storage.User
	byID     map[string]storage.User
	resolver *identity.Resolver
}

// LoadUsers reads the user table.
func LoadUsers(ctx context.Context, store storage.Directories) (*Users, error) {
	rows, err := store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return NewUsers(rows), nil
}

// NewUsers indexes rows in directory order.
func NewUsers(rows []storage.User) *Users {
	users := &Users{list: rows, byID: make(map[string]storage.User, len(rows))}
	idents := make([]identity.User, 0, len(rows))
	for _, row := range rows {
		users.byID[row.ID] = row
		idents = append(idents, identity.User{ID: row.ID, Username: row.Username, Name: row.Name})
	}
	users.resolver = identity.NewResolver(identity.BuildDirectory(idents))
	return users
}

// List returns users in directory order.
func (u *Users) List() []storage.User { return u.list }

// ByID returns the user with id.
func (u *Users) ByID(id string) (storage.User, bool) {
	user, ok := u.byID[id]
	return user, ok
}

// Resolve maps one raw salesman fragment to an official user.
func (u *Users) Resolve(raw string) (storage.User, bool) {
	id, ok := u.resolver.Resolve(raw)
	if !ok {
		return storage.User{}, false
	}
	return u.ByID(id)
}

// ResolveField splits a multi-salesman field and reports each fragment with
// the official user it resolved to.
func (u *Users) ResolveField(field string, each func(fragment string, user storage.User, ok bool)) {
	u.resolver.ResolveField(field, func(fragment, id string, ok bool) {
		var user storage.User
		if ok {
			user, ok = u.ByID(id)
		}
		each(fragment, user, ok)
	})
}

// Customer is a named customer with its normalised name.
type Customer struct {
	ID    string
	Name  string
	Clean string
}

// Customers is the customer directory used for linking transactions.
type Customers struct {
	list   []Customer
	cleans []string
}

// LoadCustomers reads customers that carry a name.
func LoadCustomers(ctx context.Context, store storage.Directories) (*Customers, error) {
	rows, err := store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	return NewCustomers(rows), nil
}

// NewCustomers indexes rows, skipping those without a name.
func NewCustomers(rows []storage.Customer) *Customers {
	c := &Customers{}
	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		entry := Customer{ID: row.ID, Name: row.Name, Clean: identity.NormalizeName(row.Name)}
		c.list = append(c.list, entry)
		c.cleans = append(c.cleans, entry.Clean)
	}
	return c
}

// Match returns the first customer whose normalised name is the closest
// match to clean at or above cutoff.
func (c *Customers) Match(clean string, cutoff float64) (Customer, bool) {
	match, ok := identity.ClosestMatch(clean, c.cleans, cutoff)
	if !ok {
		return Customer{}, false
	}
	for _, entry := range c.list {
		if entry.Clean == match {
			return entry, true
		}
	}
	return Customer{}, false
}

// LoadAccountNames maps trimmed accounting customer ids to accounting names.
// A repeated cid keeps the last name.
func LoadAccountNames(ctx context.Context, store storage.Directories) (map[string]string, error) {
	rows, err := store.ListAccountCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load account customers: %w", err)
	}
	names := make(map[string]string, len(rows))
	for _, row := range rows {
		names[strings.TrimSpace(row.CID)] = row.Name
	}
	return names, nil
}

// Product is an official product with its normalised name.
type Product struct {
	ID    string
	Name  string
	Clean string
}

// Products is the official product registry.
type Products struct {
	byID     map[string]Product
	list     []Product
	longest  []Product
	cleans   []string
	cleanIdx map[string]Product
}

// LoadProducts reads the product registry.
func LoadProducts(ctx context.Context, store storage.Directories) (*Products, error) {
	rows, err := store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return NewProducts(rows), nil
}

// NewProducts indexes rows in registry order.
func NewProducts(rows []storage.Product) *Products {
	p := &Products{byID: make(map[string]Product, len(rows)), cleanIdx: make(map[string]Product)}
	for _, row := range rows {
		entry := Product{ID: row.ID, Name: row.Name, Clean: identity.NormalizeProductName(row.Name)}
		p.byID[row.ID] = entry
		p.list = append(p.list, entry)
		p.cleans = append(p.cleans, entry.Clean)
		if _, seen := p.cleanIdx[entry.Clean]; !seen {
			p.cleanIdx[entry.Clean] = entry
		}
	}
	p.longest = slices.Clone(p.list)
	slices.SortStableFunc(p.longest, func(a, b Product) int {
		return utf8.RuneCountInString(b.Clean) - utf8.RuneCountInString(a.Clean)
	})
	return p
}

// List returns products in registry order.
func (p *Products) List() []Product { return p.list }

// ByID returns the product registered under id.
func (p *Products) ByID(id string) (Product, bool) {
	product, ok := p.byID[id]
	return product, ok
}

// Contained returns the longest official product whose normalised name
// appears as whole words inside clean.
func (p *Products) Contained(clean string) (Product, bool) {
	padded := " " + clean + " "
	for _, product := range p.longest {
		if product.Clean == "" {
			continue
		}
		if strings.Contains(padded, " "+product.Clean+" ") {
			return product, true
		}
	}
	return Product{}, false
}

// Match returns the first product whose normalised name is the closest
// match to clean at or above cutoff.
func (p *Products) Match(clean string, cutoff float64) (Product, bool) {
	match, ok := identity.ClosestMatch(clean, p.cleans, cutoff)
	if !ok {
		return Product{}, false
	}
	product, ok := p.cleanIdx[match]
	return product, ok
}

// Clinic is a clinic entry inside a city bucket.
type Clinic struct {
	ID          string
	Name        string
	Clean       string
	CityDisplay string
}

// CityBucket groups clinics that share a city.
type CityBucket struct {
	Key     string
	Clinics []Clinic
}

// Clinics partitions the clinic directory by city.
type Clinics struct {
	buckets []*CityBucket
	byKey   map[string]*CityBucket
}

const unknownCity = "-"

// LoadClinics reads the clinic directory.
func LoadClinics(ctx context.Context, store storage.Directories) (*Clinics, error) {
	rows, err := store.ListClinics(ctx)
	if err != nil {
		return nil, fmt.Errorf("load clinics: %w", err)
	}
	return NewClinics(rows), nil
}

// NewClinics buckets rows by upper-cased city. An empty city or the CRM
// placeholder "Pilih Kota/Kab" goes to the "-" bucket. Buckets keep
// first-seen order.
func NewClinics(rows []storage.Clinic) *Clinics {
	c := &Clinics{byKey: make(map[string]*CityBucket)}
	for _, row := range rows {
		city := strings.TrimSpace(row.City)
		if city == "" || strings.EqualFold(city, "pilih kota/kab") {
			city = unknownCity
		}
		key := strings.ToUpper(city)
		bucket, ok := c.byKey[key]
		if !ok {
			bucket = &CityBucket{Key: key}
			c.byKey[key] = bucket
			c.buckets = append(c.buckets, bucket)
		}
		bucket.Clinics = append(bucket.Clinics, Clinic{
			ID:          row.ID,
			Name:        row.Name,
			Clean:       identity.NormalizeClinicName(row.Name),
			CityDisplay: city,
		})
	}
	return c
}

// Buckets returns the city buckets in first-seen order.
func (c *Clinics) Buckets() []*CityBucket { return c.buckets }
