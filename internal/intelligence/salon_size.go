package intelligence

import (
	"github.com/shopspring/decimal"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
)

// sizeBands lists the employee bands in ascending size order. Unknown covers
// rows that never declared a headcount.
var sizeBands = []string{"Unknown", "Solo", "Small", "Medium", "Large", "Enterprise"}

func bandFor(employees int) string {
	switch {
	case employees <= 0:
		return "Unknown"
	case employees == 1:
		return "Solo"
	case employees <= 5:
		return "Small"
	case employees <= 10:
		return "Medium"
	case employees <= 20:
		return "Large"
	default:
		return "Enterprise"
	}
}

type sizeAcc struct {
	rows     int64
	visits   decimal.Decimal
	services decimal.Decimal
	cost     decimal.Decimal
}

// salonSizeReducer benchmarks row-level averages per employee band. The unit
// is a salon-month row, not a salon, so seasonal spread stays visible.
type salonSizeReducer struct {
	byBand map[string]*sizeAcc
}

func newSalonSizeReducer() *salonSizeReducer {
	return &salonSizeReducer{byBand: make(map[string]*sizeAcc)}
}

func (r *salonSizeReducer) accumulate(row reports.UsageRow) {
	band := bandFor(row.Employees)
	acc := r.byBand[band]
	if acc == nil {
		acc = &sizeAcc{}
		r.byBand[band] = acc
	}
	acc.rows++
	acc.visits = acc.visits.Add(decimal.NewFromFloat(row.TotalVisits))
	acc.services = acc.services.Add(decimal.NewFromFloat(row.TotalServices))
	acc.cost = acc.cost.Add(decimal.NewFromFloat(row.TotalCost))
}

func (r *salonSizeReducer) finalize() []SalonSizeBenchmark {
	out := make([]SalonSizeBenchmark, 0, len(r.byBand))
	for _, band := range sizeBands {
		acc := r.byBand[band]
		if acc == nil {
			continue
		}
		out = append(out, SalonSizeBenchmark{
			Band:        band,
			Rows:        int(acc.rows),
			AvgVisits:   avg2(acc.visits, acc.rows),
			AvgServices: avg2(acc.services, acc.rows),
			AvgCost:     avg2(acc.cost, acc.rows),
		})
	}
	return out
}
