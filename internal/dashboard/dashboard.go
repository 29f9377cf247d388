// ABOUTME: Dashboard aggregates: entity totals, revenue, chart series and the recent activity feed
// ABOUTME: Reads persisted snapshots only; kinds never opened count as empty

package dashboard

import (
	"cmp"
	"context"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/i18n"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/storage"
)

// Chart sizing
const (
	MonthsShown = 6
	TopProducts = 5
)

// Source is the read side of the storage adapter.
type Source interface {
	Load(ctx context.Context, kind entity.Kind) ([]entity.Record, bool)
	Activities(ctx context.Context) ([]storage.Activity, error)
}

// Stats are the headline counters.
type Stats struct {
	TotalUsers    int     `json:"totalUsers"`
	TotalProducts int     `json:"totalProducts"`
	TotalOrders   int     `json:"totalOrders"`
	TotalRevenue  float64 `json:"totalRevenue"`
}

// Series is one chart's labels and values, index aligned.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Charts holds every dashboard chart.
type Charts struct {
	UsersByStatus      Series `json:"usersByStatus"`
	OrdersByMonth      Series `json:"ordersByMonth"`
	OrdersByStatus     Series `json:"ordersByStatus"`
	RevenueByMonth     Series `json:"revenueByMonth"`
	TopProducts        Series `json:"topProducts"`
	CustomersByCountry Series `json:"customersByCountry"`
}

// ActivityItem is an activity entry with its relative time rendered.
type ActivityItem struct {
	storage.Activity
	Ago string
}

// Summary is everything the dashboard page shows.
type Summary struct {
	Stats    Stats
	Charts   Charts
	Activity []ActivityItem
}

// Service computes dashboard data.
type Service struct {
	src    Source
	bundle *i18n.Bundle
	now    func() time.Time
	logger *slog.Logger
}

// New creates a Service reading from src.
func New(src Source, bundle *i18n.Bundle) *Service {
	return &Service{
		src:    src,
		bundle: bundle,
		now:    time.Now,
		logger: slog.Default().With("component", "dashboard"),
	}
}

// WithClock replaces the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) load(ctx context.Context, kind entity.Kind) []entity.Record {
	recs, _ := s.src.Load(ctx, kind)
	return recs
}

// Stats counts users, products and orders and sums order revenue.
func (s *Service) Stats(ctx context.Context) Stats {
	orders := s.load(ctx, entity.Orders)
	st := Stats{
		TotalUsers:    len(s.load(ctx, entity.Users)),
		TotalProducts: len(s.load(ctx, entity.Products)),
		TotalOrders:   len(orders),
	}
	for _, o := range orders {
		st.TotalRevenue += orderAmount(o)
	}
	return st
}

// Charts computes all chart series.
func (s *Service) Charts(ctx context.Context) Charts {
	users := s.load(ctx, entity.Users)
	orders := s.load(ctx, entity.Orders)
	products := s.load(ctx, entity.Products)
	customers := s.load(ctx, entity.Customers)

	months := lastMonths(s.now(), MonthsShown)
	perMonth := make(map[string]float64, len(months))
	revenue := make(map[string]float64, len(months))
	for _, o := range orders {
		m := month(o.Text("orderDate"))
		perMonth[m]++
		revenue[m] += orderAmount(o)
	}

	return Charts{
		UsersByStatus:      countBy(users, "status"),
		OrdersByMonth:      monthly(months, perMonth),
		OrdersByStatus:     countBy(orders, "status"),
		RevenueByMonth:     monthly(months, revenue),
		TopProducts:        topByStockValue(products, TopProducts),
		CustomersByCountry: countBy(customers, "country"),
	}
}

// Recent returns the activity feed, newest first, with relative times in lang.
func (s *Service) Recent(ctx context.Context, lang string) []ActivityItem {
	acts, err := s.src.Activities(ctx)
	if err != nil {
		s.logger.Warn("reading activity log", "error", err)
		return nil
	}
	now := s.now()
	items := make([]ActivityItem, 0, len(acts))
	for _, a := range acts {
		items = append(items, ActivityItem{
			Activity: a,
			Ago:      s.bundle.RelativeTime(lang, a.Timestamp, now),
		})
	}
	return items
}

// Summary gathers stats, charts and the activity feed.
func (s *Service) Summary(ctx context.Context, lang string) Summary {
	return Summary{
		Stats:    s.Stats(ctx),
		Charts:   s.Charts(ctx),
		Activity: s.Recent(ctx, lang),
	}
}

// orderAmount reads totalAmount, falling back to amount when it is missing or zero.
func orderAmount(r entity.Record) float64 {
	if v := number(r["totalAmount"]); v != 0 {
		return v
	}
	return number(r["amount"])
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// countBy tallies records by field, largest group first.
func countBy(recs []entity.Record, field string) Series {
	counts := make(map[string]float64)
	for _, r := range recs {
		label := r.Text(field)
		if label == "" {
			label = "unknown"
		}
		counts[label]++
	}
	labels := slices.SortedFunc(maps.Keys(counts), func(a, b string) int {
		return cmp.Or(cmp.Compare(counts[b], counts[a]), strings.Compare(a, b))
	})
	s := Series{Labels: labels, Values: make([]float64, len(labels))}
	for i, l := range labels {
		s.Values[i] = counts[l]
	}
	return s
}

// lastMonths lists n YYYY-MM keys ending with now's month, oldest first.
func lastMonths(now time.Time, n int) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]string, n)
	for i := range n {
		out[i] = first.AddDate(0, i-n+1, 0).Format("2006-01")
	}
	return out
}

func month(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}

func monthly(months []string, values map[string]float64) Series {
	s := Series{Labels: months, Values: make([]float64, len(months))}
	for i, m := range months {
		s.Values[i] = values[m]
	}
	return s
}

// topByStockValue ranks products by price times stock.
func topByStockValue(products []entity.Record, n int) Series {
	type row struct {
		name  string
		value float64
	}
	rows := make([]row, 0, len(products))
	for _, p := range products {
		rows = append(rows, row{p.Text("name"), number(p["price"]) * number(p["stock"])})
	}
	slices.SortStableFunc(rows, func(a, b row) int { return cmp.Compare(b.value, a.value) })
	rows = rows[:min(n, len(rows))]

	s := Series{Labels: make([]string, len(rows)), Values: make([]float64, len(rows))}
	for i, r := range rows {
		s.Labels[i] = r.name
		s.Values[i] = r.value
	}
	return s
}
