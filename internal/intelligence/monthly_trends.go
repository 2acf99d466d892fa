package intelligence

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/months"
)

type monthlyTrendAcc struct {
	month    months.Month
	visits   float64
	services float64
	cost     decimal.Decimal
	grams    decimal.Decimal
	salons   map[string]struct{}
	brands   map[string]struct{}
}

// monthlyTrendsReducer rolls rows up per canonical month. Active salon and
// brand counts are set-accumulated, never row counts.
type monthlyTrendsReducer struct {
	byMonth map[int]*monthlyTrendAcc
}

func newMonthlyTrendsReducer() *monthlyTrendsReducer {
	return &monthlyTrendsReducer{byMonth: make(map[int]*monthlyTrendAcc)}
}

func (r *monthlyTrendsReducer) accumulate(row reports.UsageRow) {
	m, ok := row.MonthOf()
	if !ok {
		return
	}

	acc := r.byMonth[m.SortKey()]
	if acc == nil {
		acc = &monthlyTrendAcc{
			month:  m,
			salons: make(map[string]struct{}),
			brands: make(map[string]struct{}),
		}
		r.byMonth[m.SortKey()] = acc
	}

	acc.visits += row.TotalVisits
	acc.services += row.TotalServices
	acc.cost = acc.cost.Add(decimal.NewFromFloat(row.TotalCost))
	acc.grams = acc.grams.Add(decimal.NewFromFloat(row.TotalGrams))
	acc.salons[row.UserID] = struct{}{}
	if row.Brand != "" {
		acc.brands[row.Brand] = struct{}{}
	}
}

func (r *monthlyTrendsReducer) finalize() []MonthlyTrend {
	keys := make([]int, 0, len(r.byMonth))
	for key := range r.byMonth {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	out := make([]MonthlyTrend, 0, len(keys))
	for _, key := range keys {
		acc := r.byMonth[key]
		out = append(out, MonthlyTrend{
			Month:         acc.month.Key(),
			TotalVisits:   acc.visits,
			TotalServices: acc.services,
			TotalCost:     round2(acc.cost),
			TotalGrams:    round2(acc.grams),
			ActiveSalons:  len(acc.salons),
			ActiveBrands:  len(acc.brands),
		})
	}
	return out
}
