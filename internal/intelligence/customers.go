package intelligence

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/months"
)

type customerAcc struct {
	country   string
	city      string
	salonType string
	brands    map[string]struct{}
	months    map[int]struct{}
	first     months.Month
	last      months.Month
	visits    float64
	services  float64
	cost      decimal.Decimal
	grams     decimal.Decimal
}

// customerReducer aggregates each salon across the whole window. Location
// and type come from the last row seen for the salon; source files repeat
// them per row and occasionally disagree, so last-write-wins is as good as
// any other rule.
type customerReducer struct {
	byUser map[string]*customerAcc
}

func newCustomerReducer() *customerReducer {
	return &customerReducer{byUser: make(map[string]*customerAcc)}
}

func (r *customerReducer) accumulate(row reports.UsageRow) {
	m, ok := row.MonthOf()
	if !ok {
		return
	}

	acc := r.byUser[row.UserID]
	if acc == nil {
		acc = &customerAcc{
			brands: make(map[string]struct{}),
			months: make(map[int]struct{}),
			first:  m,
			last:   m,
		}
		r.byUser[row.UserID] = acc
	}

	acc.country = row.Country
	acc.city = row.City
	acc.salonType = row.SalonType
	if row.Brand != "" {
		acc.brands[row.Brand] = struct{}{}
	}
	acc.months[m.SortKey()] = struct{}{}
	if m.Before(acc.first) {
		acc.first = m
	}
	if acc.last.Before(m) {
		acc.last = m
	}
	acc.visits += row.TotalVisits
	acc.services += row.TotalServices
	acc.cost = acc.cost.Add(decimal.NewFromFloat(row.TotalCost))
	acc.grams = acc.grams.Add(decimal.NewFromFloat(row.TotalGrams))
}

func (r *customerReducer) finalize() []CustomerOverview {
	userIDs := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	out := make([]CustomerOverview, 0, len(userIDs))
	for _, userID := range userIDs {
		acc := r.byUser[userID]

		brands := make([]string, 0, len(acc.brands))
		for brand := range acc.brands {
			brands = append(brands, brand)
		}
		sort.Strings(brands)

		out = append(out, CustomerOverview{
			UserID:        userID,
			Country:       acc.country,
			City:          acc.city,
			SalonType:     acc.salonType,
			Brands:        brands,
			ActiveMonths:  len(acc.months),
			FirstMonth:    acc.first.Key(),
			LastMonth:     acc.last.Key(),
			TotalVisits:   acc.visits,
			TotalServices: acc.services,
			TotalCost:     round2(acc.cost),
			TotalGrams:    round2(acc.grams),
		})
	}
	return out
}
