package seed

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
)

var (
	usernamePrefixes = []string{"PS", "DC", "AM"}
	clinicWords      = []string{"Sehat", "Medika", "Dental", "Senyum", "Ortho", "Prima"}
	cities           = []string{"Jakarta", "Bandung", "Surabaya", "Medan", "Semarang", "Denpasar"}
	products         = []string{
		"Aligner Kit Pro",
		"Retainer Case",
		"Clear Aligner Starter",
		"Bracket Set Ceramic",
		"Orthodontic Wax",
	}
	periodStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
)

// Generator builds noisy field-sales datasets. The same seed always yields
// the same dataset.
type Generator struct {
	faker  *gofakeit.Faker
	preset PresetConfig
}

// NewGenerator returns a generator for preset seeded with seed.
func NewGenerator(seed int64, preset PresetConfig) *Generator {
	return &Generator{faker: gofakeit.New(seed), preset: preset}
}

// Generate builds a dataset. The data carries the defects the reporting
// layer cleans up: salesman fields mixing codes, names and several people,
// duplicate customers and clinics, prefixed accounting ids and misspelled
// products.
func (g *Generator) Generate() storage.Dataset {
	var data storage.Dataset
	data.Users = g.users()
	data.Customers, data.AccountCustomers = g.customers()
	data.Clinics = g.clinics(data.Customers)
	data.Products = g.products()
	data.Plans, data.Reports = g.plans(data.Users, data.Customers, data.Clinics)
	data.Transactions = g.transactions(data.Users, data.AccountCustomers)
	data.Deleted = g.deletions(data)
	return data
}

func (g *Generator) chance(percent int) bool {
	return g.faker.Number(1, 100) <= percent
}

func (g *Generator) pick(values []string) string {
	return values[g.faker.Number(0, len(values)-1)]
}

func (g *Generator) users() []storage.User {
	users := make([]storage.User, 0, g.preset.Salesmen)
	for i := 1; i <= g.preset.Salesmen; i++ {
		name := g.faker.FirstName() + " " + g.faker.LastName()
		if g.chance(15) {
			name = "Drg. " + name + " Sp.Ort"
		}
		users = append(users, storage.User{
			ID:       strconv.Itoa(i),
			Username: fmt.Sprintf("%s%d", g.pick(usernamePrefixes), 100+i),
			Name:     name,
		})
	}
	return users
}

// customers returns the directory and the accounting ledger. Some customers
// are listed twice with trivial differences; accounting spells every name
// its own way.
func (g *Generator) customers() ([]storage.Customer, []storage.AccountCustomer) {
	var customers []storage.Customer
	var accounts []storage.AccountCustomer
	for i := 1; len(customers) < g.preset.Customers; i++ {
		name := fmt.Sprintf("Klinik %s %s", g.pick(clinicWords), g.faker.LastName())
		customers = append(customers, storage.Customer{
			ID:    fmt.Sprintf("C%d", len(customers)+1),
			Name:  name,
			Phone: g.phone(),
		})
		if g.chance(20) && len(customers) < g.preset.Customers {
			customers = append(customers, storage.Customer{
				ID:   fmt.Sprintf("C%d", len(customers)+1),
				Name: name + ".",
			})
		}

		accountName := strings.ToUpper(name)
		switch {
		case g.chance(15):
			accountName = name + " Tbk"
		case g.chance(10):
			accountName = ""
		}
		accounts = append(accounts, storage.AccountCustomer{CID: strconv.Itoa(1000 + i), Name: accountName})
	}
	for i := 0; i < max(1, g.preset.Customers/10); i++ {
		accounts = append(accounts, storage.AccountCustomer{
			CID:  strconv.Itoa(5000 + i),
			Name: "Toko " + g.faker.LastName(),
		})
	}
	return customers, accounts
}

func (g *Generator) phone() string {
	switch {
	case g.chance(10):
		return ""
	case g.chance(10):
		return "null"
	case g.chance(30):
		return g.faker.Numerify("+62 8##-####-####")
	default:
		return g.faker.Numerify("08##########")
	}
}

func (g *Generator) clinics(customers []storage.Customer) []storage.ClinicRow {
	var clinics []storage.ClinicRow
	for _, customer := range customers {
		name := strings.TrimSuffix(customer.Name, ".")
		for n := g.faker.Number(1, 2); n > 0; n-- {
			city := g.pick(cities)
			switch {
			case g.chance(10):
				city = "Pilih Kota/Kab"
			case g.chance(10):
				city = strings.ToLower(city)
			}
			if g.chance(20) {
				name = strings.TrimPrefix(name, "Klinik ")
			}
			clinics = append(clinics, storage.ClinicRow{
				Clinic: storage.Clinic{
					ID:   fmt.Sprintf("K%d", len(clinics)+1),
					Name: name,
					City: city,
				},
				CustomerCode: customer.ID,
			})
		}
	}
	return clinics
}

func (g *Generator) products() []storage.Product {
	out := make([]storage.Product, len(products))
	for i, name := range products {
		out[i] = storage.Product{ID: fmt.Sprintf("P%d", i+1), Name: name}
	}
	return out
}

func (g *Generator) date() string {
	return g.faker.DateRange(periodStart, periodEnd).Format(time.DateOnly)
}

func (g *Generator) plans(users []storage.User, customers []storage.Customer, clinics []storage.ClinicRow) ([]storage.Plan, []storage.Report) {
	var plans []storage.Plan
	var reports []storage.Report
	for i := 1; i <= g.preset.Plans; i++ {
		userID := users[g.faker.Number(0, len(users)-1)].ID
		if g.chance(3) {
			userID = strconv.Itoa(len(users) + g.faker.Number(1, 5))
		}
		plan := storage.Plan{
			ID:           int64(i),
			UserID:       userID,
			CustomerCode: customers[g.faker.Number(0, len(customers)-1)].ID,
			Date:         g.date(),
		}
		if !g.chance(10) {
			plan.ClinicCode = clinics[g.faker.Number(0, len(clinics)-1)].ID
		}
		plans = append(plans, plan)

		if g.chance(65) {
			note := g.faker.Sentence(g.faker.Number(4, 10))
			if g.chance(15) {
				note = "   "
			}
			reports = append(reports, storage.Report{ID: int64(len(reports) + 1), PlanID: plan.ID, VisitNote: note})
		}
	}
	return plans, reports
}

// salesmanField renders how accounting typed the salesman: code plus first
// name, a bare lowercase code with a dash, several people, or just a name.
func (g *Generator) salesmanField(users []storage.User) string {
	user := users[g.faker.Number(0, len(users)-1)]
	first := strings.Fields(strings.TrimPrefix(user.Name, "Drg. "))[0]
	switch g.faker.Number(1, 10) {
	case 1, 2, 3:
		return user.Username + " " + first
	case 4:
		prefix := strings.TrimRightFunc(user.Username, func(r rune) bool { return r >= '0' && r <= '9' })
		return strings.ToLower(prefix) + "-" + strings.TrimPrefix(user.Username, prefix)
	case 5:
		other := users[g.faker.Number(0, len(users)-1)]
		return strings.ToUpper(first) + " / " + strings.ToUpper(strings.Fields(other.Name)[0])
	case 6:
		return g.faker.FirstName()
	case 7:
		return ""
	default:
		return user.Name
	}
}

func (g *Generator) productField() (name, itemID string) {
	index := g.faker.Number(0, len(products)-1)
	name = products[index]
	switch g.faker.Number(1, 10) {
	case 1, 2, 3:
		return name, fmt.Sprintf("P%d", index+1)
	case 4:
		return strings.ToLower(name) + " - box", ""
	case 5:
		runes := []rune(name)
		cut := g.faker.Number(1, len(runes)-2)
		return string(runes[:cut]) + string(runes[cut+1:]), ""
	case 6:
		return "Gizmo " + g.faker.LastName(), ""
	default:
		return name, ""
	}
}

func (g *Generator) customerField(accounts []storage.AccountCustomer) string {
	cid := accounts[g.faker.Number(0, len(accounts)-1)].CID
	switch {
	case g.chance(25):
		return string(rune('A'+g.faker.Number(0, 25))) + "-" + cid
	case g.chance(5):
		return "9999"
	case g.chance(5):
		return " " + cid + " "
	default:
		return cid
	}
}

func (g *Generator) transactions(users []storage.User, accounts []storage.AccountCustomer) []storage.Transaction {
	out := make([]storage.Transaction, 0, g.preset.Transactions)
	for i := 1; i <= g.preset.Transactions; i++ {
		product, itemID := g.productField()
		qty := float64(g.faker.Number(1, 10))
		out = append(out, storage.Transaction{
			ID:           int64(i),
			SalesmanName: g.salesmanField(users),
			Product:      product,
			ItemID:       itemID,
			CustomerID:   g.customerField(accounts),
			Qty:          qty,
			Amount:       math.Round(qty*g.faker.Float64Range(5, 250)*100) / 100,
			InvoiceDate:  g.date(),
		})
	}
	return out
}

// deletions soft-deletes a few customers and transactions so maintenance has
// work to do.
func (g *Generator) deletions(data storage.Dataset) []storage.SoftDelete {
	var out []storage.SoftDelete
	for _, c := range data.Customers {
		if g.chance(3) {
			out = append(out, storage.SoftDelete{Table: "customers", ID: c.ID})
		}
	}
	for _, tr := range data.Transactions {
		if g.chance(2) {
			out = append(out, storage.SoftDelete{Table: "transactions", ID: strconv.FormatInt(tr.ID, 10)})
		}
	}
	return out
}
