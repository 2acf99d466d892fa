package intelligence

import (
	"github.com/shopspring/decimal"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
)

// reducer is one independent rollup: it accumulates rows during the single
// pass and finalizes into its slice/map once the pass ends. Keeping each
// rollup behind this contract makes them testable in isolation instead of
// one large stateful fold.
type reducer interface {
	accumulate(row reports.UsageRow)
}

// Aggregator folds a full UsageRow slice into the market-intelligence
// dataset. Monetary and gram totals accumulate as decimals at full precision;
// rounding happens only when each reducer finalizes, so rounding error never
// compounds across rows.
type Aggregator struct{}

// NewAggregator returns a stateless aggregator; all run state lives in the
// per-run reducers.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Build runs every reducer over the rows in one traversal and assembles the
// dataset. Empty input produces a valid, empty-shaped dataset.
func (a *Aggregator) Build(rows []reports.UsageRow) *Dataset {
	trends := newMonthlyTrendsReducer()
	brands := newBrandReducer()
	services := newServiceBreakdownReducer()
	geo := newGeographyReducer()
	sizes := newSalonSizeReducer()
	pricing := newPricingReducer()
	customers := newCustomerReducer()
	snapshots := newSnapshotReducer()
	summary := newSummaryReducer()

	all := []reducer{trends, brands, services, geo, sizes, pricing, customers, snapshots, summary}
	for _, row := range rows {
		for _, r := range all {
			r.accumulate(row)
		}
	}

	brandPerformance, brandMonthly := brands.finalize()
	return &Dataset{
		Summary:                summary.finalize(),
		MonthlyTrends:          trends.finalize(),
		BrandPerformance:       brandPerformance,
		BrandMonthly:           brandMonthly,
		ServiceBreakdown:       services.finalize(),
		GeographicDistribution: geo.finalize(),
		SalonSizeBenchmarks:    sizes.finalize(),
		PricingTrends:          pricing.finalize(),
		CustomerOverview:       customers.finalize(),
		MonthlySnapshots:       snapshots.finalize(),
	}
}

// round2 collapses a full-precision accumulator to the dataset's declared
// money precision.
func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// avg2 divides sum by count at full precision before rounding; zero counts
// yield zero.
func avg2(sum decimal.Decimal, count int64) float64 {
	if count == 0 {
		return 0
	}
	f, _ := sum.Div(decimal.NewFromInt(count)).Round(2).Float64()
	return f
}
