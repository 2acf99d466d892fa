package intelligence

import (
	"github.com/shopspring/decimal"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/months"
)

// summaryReducer computes the top-of-dashboard KPIs across the whole window.
type summaryReducer struct {
	rows      int
	salons    map[string]struct{}
	brands    map[string]struct{}
	countries map[string]struct{}
	monthSet  map[int]struct{}
	first     months.Month
	last      months.Month
	visits    float64
	services  float64
	cost      decimal.Decimal
	grams     decimal.Decimal
}

func newSummaryReducer() *summaryReducer {
	return &summaryReducer{
		salons:    make(map[string]struct{}),
		brands:    make(map[string]struct{}),
		countries: make(map[string]struct{}),
		monthSet:  make(map[int]struct{}),
	}
}

func (r *summaryReducer) accumulate(row reports.UsageRow) {
	r.rows++
	r.salons[row.UserID] = struct{}{}
	if row.Brand != "" {
		r.brands[row.Brand] = struct{}{}
	}
	if row.Country != "" {
		r.countries[row.Country] = struct{}{}
	}

	if m, ok := row.MonthOf(); ok {
		r.monthSet[m.SortKey()] = struct{}{}
		if r.first.IsZero() || m.Before(r.first) {
			r.first = m
		}
		if r.last.IsZero() || r.last.Before(m) {
			r.last = m
		}
	}

	r.visits += row.TotalVisits
	r.services += row.TotalServices
	r.cost = r.cost.Add(decimal.NewFromFloat(row.TotalCost))
	r.grams = r.grams.Add(decimal.NewFromFloat(row.TotalGrams))
}

func (r *summaryReducer) finalize() Summary {
	summary := Summary{
		TotalRows:      r.rows,
		TotalSalons:    len(r.salons),
		TotalBrands:    len(r.brands),
		TotalCountries: len(r.countries),
		MonthsCovered:  len(r.monthSet),
		TotalVisits:    r.visits,
		TotalServices:  r.services,
		TotalCost:      round2(r.cost),
		TotalGrams:     round2(r.grams),
	}
	if !r.first.IsZero() {
		summary.FirstMonth = r.first.Key()
		summary.LastMonth = r.last.Key()
	}
	if r.services > 0 {
		summary.AvgCostPerService = round2(r.cost.Div(decimal.NewFromFloat(r.services)))
	}
	return summary
}
