// ABOUTME: Mock data generator: 50 seed records per entity kind with randomized content
// ABOUTME: Field sets stay consistent per kind; dates are relative to the generator's clock

package mockdata

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
)

// Count is the number of records generated per kind.
const Count = 50

// dateSpread bounds how far generated past and future dates drift from now.
const dateSpread = 10_000_000 * time.Second

// Generator produces seed collections. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// New returns a Generator with a random seed.
func New() *Generator {
	return NewSeeded(rand.Uint64(), rand.Uint64())
}

// NewSeeded returns a Generator with a fixed seed, for reproducible tests.
func NewSeeded(seed1, seed2 uint64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewPCG(seed1, seed2)),
		now: time.Now,
	}
}

// WithClock overrides the reference time used for generated dates.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

type generateFunc func(g *Generator, i int, now time.Time) entity.Record

var generators = map[entity.Kind]generateFunc{
	entity.Users:     (*Generator).user,
	entity.Products:  (*Generator).product,
	entity.Orders:    (*Generator).order,
	entity.Customers: (*Generator).customer,
	entity.Invoices:  (*Generator).invoice,
}

// Generate returns Count fresh records for kind. Unknown kinds get user
// records.
func (g *Generator) Generate(kind entity.Kind) []entity.Record {
	gen, ok := generators[kind]
	if !ok {
		gen = (*Generator).user
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	out := make([]entity.Record, Count)
	for i := range Count {
		out[i] = gen(g, i, now)
	}
	return out
}

var (
	firstNames  = []string{"Jean", "Marie", "Pierre", "Sophie", "Luc", "Anne", "Paul", "Julie"}
	lastNames   = []string{"Dupont", "Martin", "Bernard", "Thomas", "Petit", "Robert", "Richard", "Durand"}
	mailDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"}
	categories  = []string{"Électronique", "Vêtements", "Alimentation", "Maison", "Sports", "Livres"}
	brands      = []string{"Apple", "Samsung", "Sony", "Nike", "Adidas", "Bosch", "Philips"}
	companies   = []string{"TechCorp", "Global Solutions", "Innovate Inc", "FutureTech", "Digital Systems"}
	countries   = []string{"France", "USA", "Germany", "UK", "Canada", "Japan"}

	orderStatuses  = []string{"pending", "processing", "shipped", "delivered", "cancelled"}
	paymentMethods = []string{"credit_card", "paypal", "bank_transfer", "cash"}
)

func (g *Generator) user(i int, now time.Time) entity.Record {
	first := firstNames[i%len(firstNames)]
	last := lastNames[i%len(lastNames)]
	return entity.Record{
		"id":               id(i),
		"firstName":        first,
		"lastName":         last,
		"email":            fmt.Sprintf("%s.%s@%s", strings.ToLower(first), strings.ToLower(last), mailDomains[i%len(mailDomains)]),
		"phone":            fmt.Sprintf("+33 %s %s %s %s", g.digits(2), g.digits(2), g.digits(2), g.digits(2)),
		"role":             g.pick("admin", "user", "editor", "viewer"),
		"status":           g.pick("active", "inactive", "pending"),
		"registrationDate": g.past(now, dateSpread).Format(time.DateOnly),
		"lastLogin":        g.past(now, dateSpread/10).Format(time.RFC3339),
	}
}

func (g *Generator) product(i int, now time.Time) entity.Record {
	n := i + 1
	return entity.Record{
		"id":          id(i),
		"name":        fmt.Sprintf("Produit %d", n),
		"description": fmt.Sprintf("Description détaillée du produit %d. **Caractéristiques** et spécifications.", n),
		"price":       round(g.rnd.Float64()*1000+10, 2),
		"category":    categories[i%len(categories)],
		"brand":       brands[i%len(brands)],
		"stock":       float64(g.rnd.IntN(1000)),
		"sku":         fmt.Sprintf("SKU-%06d", n),
		"rating":      round(g.rnd.Float64()*5, 1),
		"status":      g.pick("in_stock", "out_of_stock", "discontinued"),
	}
}

func (g *Generator) order(i int, now time.Time) entity.Record {
	customer := g.rnd.IntN(20) + 1
	return entity.Record{
		"id":            id(i),
		"orderNumber":   fmt.Sprintf("ORD-%06d", i+1),
		"customerId":    float64(customer),
		"customerName":  fmt.Sprintf("Client %d", g.rnd.IntN(20)+1),
		"totalAmount":   round(g.rnd.Float64()*1000+50, 2),
		"status":        orderStatuses[i%len(orderStatuses)],
		"orderDate":     g.past(now, dateSpread).Format(time.DateOnly),
		"deliveryDate":  g.future(now, dateSpread).Format(time.DateOnly),
		"paymentMethod": paymentMethods[i%len(paymentMethods)],
		"paymentStatus": g.pick("paid", "pending", "failed"),
		"items":         float64(g.rnd.IntN(10) + 1),
	}
}

func (g *Generator) customer(i int, now time.Time) entity.Record {
	n := i + 1
	return entity.Record{
		"id":               id(i),
		"name":             fmt.Sprintf("Client %d", n),
		"email":            fmt.Sprintf("client%d@example.com", n),
		"phone":            fmt.Sprintf("+1 555 %03d %04d", g.rnd.IntN(1000), g.rnd.IntN(10000)),
		"company":          companies[i%len(companies)],
		"country":          countries[i%len(countries)],
		"status":           g.pick("active", "inactive"),
		"registrationDate": g.past(now, dateSpread).Format(time.DateOnly),
		"totalOrders":      float64(g.rnd.IntN(100)),
		"totalSpent":       round(g.rnd.Float64()*10000+100, 2),
	}
}

func (g *Generator) invoice(i int, now time.Time) entity.Record {
	return entity.Record{
		"id":            id(i),
		"invoiceNumber": fmt.Sprintf("INV-%06d", i+1),
		"customerId":    float64(g.rnd.IntN(20) + 1),
		"customerName":  fmt.Sprintf("Client %d", g.rnd.IntN(20)+1),
		"amount":        round(g.rnd.Float64()*5000+100, 2),
		"issueDate":     g.past(now, dateSpread).Format(time.DateOnly),
		"dueDate":       g.future(now, dateSpread).Format(time.DateOnly),
		"status":        g.pick("paid", "pending", "overdue", "cancelled"),
		"paymentMethod": g.pick("bank_transfer", "credit_card", "paypal"),
		"items":         float64(g.rnd.IntN(5) + 1),
	}
}

func id(i int) string {
	return fmt.Sprint(i + 1)
}

func (g *Generator) pick(options ...string) string {
	return options[g.rnd.IntN(len(options))]
}

func (g *Generator) digits(n int) string {
	var b strings.Builder
	for range n {
		b.WriteByte(byte('0' + g.rnd.IntN(9)))
	}
	return b.String()
}

func (g *Generator) past(now time.Time, spread time.Duration) time.Time {
	return now.Add(-time.Duration(g.rnd.Int64N(int64(spread))))
}

func (g *Generator) future(now time.Time, spread time.Duration) time.Time {
	return now.Add(time.Duration(g.rnd.Int64N(int64(spread))))
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
