package intelligence

import (
	"github.com/shopspring/decimal"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/months"
)

type snapshotEntryAcc struct {
	services float64
	cost     decimal.Decimal
}

type snapshotAcc struct {
	month         months.Month
	services      float64
	cost          decimal.Decimal
	categoryCount float64
	salons        map[string]struct{}
	byBrand       map[string]*snapshotEntryAcc
	byCustomer    map[string]*snapshotEntryAcc
}

// snapshotReducer builds the per-month drilldowns keyed by canonical month
// label. It also tracks the gap between declared service totals and the sum
// of category counts as a data-quality signal.
type snapshotReducer struct {
	byMonth map[int]*snapshotAcc
}

func newSnapshotReducer() *snapshotReducer {
	return &snapshotReducer{byMonth: make(map[int]*snapshotAcc)}
}

func (r *snapshotReducer) accumulate(row reports.UsageRow) {
	m, ok := row.MonthOf()
	if !ok {
		return
	}

	acc := r.byMonth[m.SortKey()]
	if acc == nil {
		acc = &snapshotAcc{
			month:      m,
			salons:     make(map[string]struct{}),
			byBrand:    make(map[string]*snapshotEntryAcc),
			byCustomer: make(map[string]*snapshotEntryAcc),
		}
		r.byMonth[m.SortKey()] = acc
	}

	acc.services += row.TotalServices
	acc.cost = acc.cost.Add(decimal.NewFromFloat(row.TotalCost))
	acc.salons[row.UserID] = struct{}{}
	for _, cat := range reports.Categories {
		acc.categoryCount += row.Usage(cat).Services
	}

	if row.Brand != "" {
		addSnapshotEntry(acc.byBrand, row.Brand, row)
	}
	addSnapshotEntry(acc.byCustomer, row.UserID, row)
}

func addSnapshotEntry(entries map[string]*snapshotEntryAcc, key string, row reports.UsageRow) {
	entry := entries[key]
	if entry == nil {
		entry = &snapshotEntryAcc{}
		entries[key] = entry
	}
	entry.services += row.TotalServices
	entry.cost = entry.cost.Add(decimal.NewFromFloat(row.TotalCost))
}

func (r *snapshotReducer) finalize() map[string]MonthlySnapshot {
	out := make(map[string]MonthlySnapshot, len(r.byMonth))
	for _, acc := range r.byMonth {
		out[acc.month.Key()] = MonthlySnapshot{
			Month:             acc.month.Key(),
			TotalServices:     acc.services,
			TotalCost:         round2(acc.cost),
			ActiveSalons:      len(acc.salons),
			ServiceCountDelta: acc.services - acc.categoryCount,
			ByBrand:           finalizeEntries(acc.byBrand),
			ByCustomer:        finalizeEntries(acc.byCustomer),
		}
	}
	return out
}

func finalizeEntries(entries map[string]*snapshotEntryAcc) map[string]SnapshotEntry {
	out := make(map[string]SnapshotEntry, len(entries))
	for key, entry := range entries {
		out[key] = SnapshotEntry{
			TotalServices: entry.services,
			TotalCost:     round2(entry.cost),
		}
	}
	return out
}
