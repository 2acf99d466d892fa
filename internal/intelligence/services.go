package intelligence

import (
	"github.com/shopspring/decimal"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
)

type serviceAcc struct {
	services float64
	cost     decimal.Decimal
	grams    decimal.Decimal
}

// serviceBreakdownReducer folds per-family usage triples. Output order is
// the fixed reporting order of the families, never discovery order.
type serviceBreakdownReducer struct {
	byCategory map[reports.Category]*serviceAcc
}

func newServiceBreakdownReducer() *serviceBreakdownReducer {
	return &serviceBreakdownReducer{byCategory: make(map[reports.Category]*serviceAcc)}
}

func (r *serviceBreakdownReducer) accumulate(row reports.UsageRow) {
	for _, cat := range reports.Categories {
		usage := row.Usage(cat)
		if usage.Services == 0 && usage.Cost == 0 && usage.Grams == 0 {
			continue
		}
		acc := r.byCategory[cat]
		if acc == nil {
			acc = &serviceAcc{}
			r.byCategory[cat] = acc
		}
		acc.services += usage.Services
		acc.cost = acc.cost.Add(decimal.NewFromFloat(usage.Cost))
		acc.grams = acc.grams.Add(decimal.NewFromFloat(usage.Grams))
	}
}

func (r *serviceBreakdownReducer) finalize() []ServiceTypeBreakdown {
	var totalServices float64
	for _, acc := range r.byCategory {
		totalServices += acc.services
	}

	out := make([]ServiceTypeBreakdown, 0, len(reports.Categories))
	for _, cat := range reports.Categories {
		acc := r.byCategory[cat]
		if acc == nil {
			out = append(out, ServiceTypeBreakdown{ServiceType: string(cat)})
			continue
		}
		entry := ServiceTypeBreakdown{
			ServiceType:   string(cat),
			TotalServices: acc.services,
			TotalCost:     round2(acc.cost),
			TotalGrams:    round2(acc.grams),
		}
		if totalServices > 0 {
			share := decimal.NewFromFloat(acc.services).
				Div(decimal.NewFromFloat(totalServices)).
				Mul(decimal.NewFromInt(100))
			entry.ServicesShare = round2(share)
		}
		out = append(out, entry)
	}
	return out
}
