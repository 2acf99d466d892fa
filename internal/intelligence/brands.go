package intelligence

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/months"
)

type brandAcc struct {
	services float64
	cost     decimal.Decimal
	grams    decimal.Decimal
	salons   map[string]struct{}
	months   map[int]struct{}
}

type brandMonthAcc struct {
	month    months.Month
	services float64
	cost     decimal.Decimal
	grams    decimal.Decimal
}

type brandMonthKey struct {
	brand string
	month int
}

// brandReducer produces both the per-brand window rollup and the
// brand-by-month breakdown from the same accumulation pass.
type brandReducer struct {
	byBrand      map[string]*brandAcc
	byBrandMonth map[brandMonthKey]*brandMonthAcc
}

func newBrandReducer() *brandReducer {
	return &brandReducer{
		byBrand:      make(map[string]*brandAcc),
		byBrandMonth: make(map[brandMonthKey]*brandMonthAcc),
	}
}

func (r *brandReducer) accumulate(row reports.UsageRow) {
	if row.Brand == "" {
		return
	}
	m, ok := row.MonthOf()
	if !ok {
		return
	}

	acc := r.byBrand[row.Brand]
	if acc == nil {
		acc = &brandAcc{
			salons: make(map[string]struct{}),
			months: make(map[int]struct{}),
		}
		r.byBrand[row.Brand] = acc
	}
	acc.services += row.TotalServices
	acc.cost = acc.cost.Add(decimal.NewFromFloat(row.TotalCost))
	acc.grams = acc.grams.Add(decimal.NewFromFloat(row.TotalGrams))
	acc.salons[row.UserID] = struct{}{}
	acc.months[m.SortKey()] = struct{}{}

	key := brandMonthKey{brand: row.Brand, month: m.SortKey()}
	monthAcc := r.byBrandMonth[key]
	if monthAcc == nil {
		monthAcc = &brandMonthAcc{month: m}
		r.byBrandMonth[key] = monthAcc
	}
	monthAcc.services += row.TotalServices
	monthAcc.cost = monthAcc.cost.Add(decimal.NewFromFloat(row.TotalCost))
	monthAcc.grams = monthAcc.grams.Add(decimal.NewFromFloat(row.TotalGrams))
}

func (r *brandReducer) finalize() ([]BrandPerformance, []BrandMonthly) {
	brands := make([]string, 0, len(r.byBrand))
	for brand := range r.byBrand {
		brands = append(brands, brand)
	}
	sort.Strings(brands)

	performance := make([]BrandPerformance, 0, len(brands))
	for _, brand := range brands {
		acc := r.byBrand[brand]
		perf := BrandPerformance{
			Brand:         brand,
			TotalServices: acc.services,
			TotalCost:     round2(acc.cost),
			TotalGrams:    round2(acc.grams),
			Salons:        len(acc.salons),
			ActiveMonths:  len(acc.months),
		}
		if acc.services > 0 {
			perf.AvgCostPerService = round2(acc.cost.Div(decimal.NewFromFloat(acc.services)))
		}
		performance = append(performance, perf)
	}

	keys := make([]brandMonthKey, 0, len(r.byBrandMonth))
	for key := range r.byBrandMonth {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].brand != keys[j].brand {
			return keys[i].brand < keys[j].brand
		}
		return keys[i].month < keys[j].month
	})

	monthly := make([]BrandMonthly, 0, len(keys))
	for _, key := range keys {
		acc := r.byBrandMonth[key]
		monthly = append(monthly, BrandMonthly{
			Brand:         key.brand,
			Month:         acc.month.Key(),
			TotalServices: acc.services,
			TotalCost:     round2(acc.cost),
			TotalGrams:    round2(acc.grams),
		})
	}

	return performance, monthly
}
