package intelligence

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/months"
)

type priceAvg struct {
	sum   decimal.Decimal
	count int64
}

func (p *priceAvg) add(price float64) {
	if price <= 0 {
		return
	}
	p.sum = p.sum.Add(decimal.NewFromFloat(price))
	p.count++
}

type pricingAcc struct {
	month        months.Month
	rootColor    priceAvg
	highlights   priceAvg
	womenHaircut priceAvg
}

// pricingReducer averages declared client prices per month. A zero price
// means the salon did not declare one and is excluded rather than dragging
// the average down.
type pricingReducer struct {
	byMonth map[int]*pricingAcc
}

func newPricingReducer() *pricingReducer {
	return &pricingReducer{byMonth: make(map[int]*pricingAcc)}
}

func (r *pricingReducer) accumulate(row reports.UsageRow) {
	m, ok := row.MonthOf()
	if !ok {
		return
	}
	acc := r.byMonth[m.SortKey()]
	if acc == nil {
		acc = &pricingAcc{month: m}
		r.byMonth[m.SortKey()] = acc
	}
	acc.rootColor.add(row.RootColorPrice)
	acc.highlights.add(row.HighlightsPrice)
	acc.womenHaircut.add(row.WomenHaircutPrice)
}

func (r *pricingReducer) finalize() []PricingTrend {
	keys := make([]int, 0, len(r.byMonth))
	for key := range r.byMonth {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	out := make([]PricingTrend, 0, len(keys))
	for _, key := range keys {
		acc := r.byMonth[key]
		out = append(out, PricingTrend{
			Month:                acc.month.Key(),
			AvgRootColorPrice:    avg2(acc.rootColor.sum, acc.rootColor.count),
			AvgHighlightsPrice:   avg2(acc.highlights.sum, acc.highlights.count),
			AvgWomenHaircutPrice: avg2(acc.womenHaircut.sum, acc.womenHaircut.count),
		})
	}
	return out
}
