package intelligence

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
)

func usageRow(userID, month string, year int, brand string, services, cost float64) reports.UsageRow {
	return reports.UsageRow{
		UserID:        userID,
		Year:          year,
		Month:         month,
		Country:       "Israel",
		City:          "Tel Aviv",
		SalonType:     "Hair Salon",
		Employees:     3,
		Brand:         brand,
		TotalVisits:   services * 2,
		TotalServices: services,
		TotalCost:     cost,
		TotalGrams:    services * 30,
	}
}

func TestBuildEmptyInput(t *testing.T) {
	dataset := NewAggregator().Build(nil)

	if dataset.Summary.TotalRows != 0 || dataset.Summary.TotalSalons != 0 {
		t.Fatalf("empty input produced non-empty summary: %+v", dataset.Summary)
	}
	if dataset.Summary.FirstMonth != "" || dataset.Summary.LastMonth != "" {
		t.Fatalf("empty input should leave month bounds blank: %+v", dataset.Summary)
	}
	if len(dataset.MonthlyTrends) != 0 || len(dataset.BrandPerformance) != 0 {
		t.Fatal("empty input produced rollup entries")
	}
	if len(dataset.ServiceBreakdown) != len(reports.Categories) {
		t.Fatalf("service breakdown should keep all families, got %d", len(dataset.ServiceBreakdown))
	}
	if dataset.MonthlySnapshots == nil {
		t.Fatal("snapshots map must be non-nil so it serializes as {}")
	}
}

func TestBuildSumsDuplicateTuples(t *testing.T) {
	// Same salon, month and brand appearing in two source files must sum,
	// never overwrite.
	rows := []reports.UsageRow{
		usageRow("salon-1", "january", 2024, "Wella", 10, 500),
		usageRow("salon-1", "january", 2024, "Wella", 5, 250),
	}

	dataset := NewAggregator().Build(rows)

	if len(dataset.MonthlyTrends) != 1 {
		t.Fatalf("expected one trend month, got %d", len(dataset.MonthlyTrends))
	}
	trend := dataset.MonthlyTrends[0]
	if trend.Month != "Jan 2024" || trend.TotalServices != 15 || trend.TotalCost != 750 {
		t.Fatalf("duplicate rows not summed: %+v", trend)
	}
	if trend.ActiveSalons != 1 || trend.ActiveBrands != 1 {
		t.Fatalf("distinct counts should dedupe: %+v", trend)
	}

	if len(dataset.BrandMonthly) != 1 || dataset.BrandMonthly[0].TotalServices != 15 {
		t.Fatalf("brand monthly not summed: %+v", dataset.BrandMonthly)
	}
}

func TestBuildDistinctCounts(t *testing.T) {
	rows := []reports.UsageRow{
		usageRow("salon-1", "january", 2024, "Wella", 10, 100),
		usageRow("salon-1", "january", 2024, "Schwarzkopf", 4, 40),
		usageRow("salon-2", "january", 2024, "Wella", 6, 60),
		usageRow("salon-2", "february", 2024, "Wella", 6, 60),
	}

	dataset := NewAggregator().Build(rows)

	if dataset.Summary.TotalSalons != 2 || dataset.Summary.TotalBrands != 2 {
		t.Fatalf("summary distinct counts wrong: %+v", dataset.Summary)
	}
	if dataset.Summary.MonthsCovered != 2 {
		t.Fatalf("MonthsCovered = %d, want 2", dataset.Summary.MonthsCovered)
	}
	if dataset.Summary.FirstMonth != "Jan 2024" || dataset.Summary.LastMonth != "Feb 2024" {
		t.Fatalf("month bounds wrong: %+v", dataset.Summary)
	}

	jan := dataset.MonthlyTrends[0]
	if jan.ActiveSalons != 2 || jan.ActiveBrands != 2 {
		t.Fatalf("january distinct counts wrong: %+v", jan)
	}

	var wella BrandPerformance
	for _, perf := range dataset.BrandPerformance {
		if perf.Brand == "Wella" {
			wella = perf
		}
	}
	if wella.Salons != 2 || wella.ActiveMonths != 2 || wella.TotalServices != 22 {
		t.Fatalf("wella rollup wrong: %+v", wella)
	}
}

func TestAvgCostPerServiceWithFractionalServices(t *testing.T) {
	// Service totals are not guaranteed to be whole numbers; a fractional
	// total below one must still yield a real average, not zero.
	rows := []reports.UsageRow{
		usageRow("salon-1", "january", 2024, "Wella", 0.5, 10),
	}

	dataset := NewAggregator().Build(rows)

	if got := dataset.Summary.AvgCostPerService; got != 20 {
		t.Fatalf("summary AvgCostPerService = %v, want 20", got)
	}
	if len(dataset.BrandPerformance) != 1 {
		t.Fatalf("brands = %+v", dataset.BrandPerformance)
	}
	if got := dataset.BrandPerformance[0].AvgCostPerService; got != 20 {
		t.Fatalf("brand AvgCostPerService = %v, want 20", got)
	}
}

func TestSalonSizeBands(t *testing.T) {
	cases := []struct {
		employees int
		band      string
	}{
		{-1, "Unknown"},
		{0, "Unknown"},
		{1, "Solo"},
		{2, "Small"},
		{5, "Small"},
		{6, "Medium"},
		{10, "Medium"},
		{11, "Large"},
		{20, "Large"},
		{21, "Enterprise"},
		{80, "Enterprise"},
	}
	for _, tc := range cases {
		if got := bandFor(tc.employees); got != tc.band {
			t.Errorf("bandFor(%d) = %q, want %q", tc.employees, got, tc.band)
		}
	}

	rows := []reports.UsageRow{
		usageRow("salon-1", "march", 2024, "Wella", 10, 100),
		usageRow("salon-2", "march", 2024, "Wella", 20, 200),
	}
	rows[0].Employees = 1
	rows[1].Employees = 1

	dataset := NewAggregator().Build(rows)
	if len(dataset.SalonSizeBenchmarks) != 1 {
		t.Fatalf("benchmarks = %+v", dataset.SalonSizeBenchmarks)
	}
	solo := dataset.SalonSizeBenchmarks[0]
	if solo.Band != "Solo" || solo.Rows != 2 || solo.AvgServices != 15 || solo.AvgCost != 150 {
		t.Fatalf("solo band wrong: %+v", solo)
	}
}

func TestServiceBreakdownShares(t *testing.T) {
	row := usageRow("salon-1", "june", 2024, "Wella", 10, 100)
	row.ByCategory = map[reports.Category]reports.CategoryUsage{
		reports.CategoryColor:      {Services: 6, Cost: 60, Grams: 180},
		reports.CategoryHighlights: {Services: 2, Cost: 30, Grams: 90},
	}

	dataset := NewAggregator().Build([]reports.UsageRow{row})

	byType := make(map[string]ServiceTypeBreakdown)
	for _, entry := range dataset.ServiceBreakdown {
		byType[entry.ServiceType] = entry
	}
	if byType["color"].ServicesShare != 75 {
		t.Fatalf("color share = %v, want 75", byType["color"].ServicesShare)
	}
	if byType["highlights"].ServicesShare != 25 {
		t.Fatalf("highlights share = %v, want 25", byType["highlights"].ServicesShare)
	}
	if byType["toner"].TotalServices != 0 || byType["toner"].ServicesShare != 0 {
		t.Fatalf("unused family should stay zeroed: %+v", byType["toner"])
	}
	if dataset.ServiceBreakdown[0].ServiceType != "color" {
		t.Fatalf("families out of reporting order: %+v", dataset.ServiceBreakdown)
	}
}

func TestGeographyTopCitiesCapped(t *testing.T) {
	var rows []reports.UsageRow
	for i := 0; i < 7; i++ {
		row := usageRow(fmt.Sprintf("salon-%d", i), "may", 2024, "Wella", float64(10+i), 100)
		row.City = fmt.Sprintf("City-%d", i)
		rows = append(rows, row)
	}

	dataset := NewAggregator().Build(rows)
	if len(dataset.GeographicDistribution) != 1 {
		t.Fatalf("countries = %+v", dataset.GeographicDistribution)
	}
	country := dataset.GeographicDistribution[0]
	if country.Salons != 7 {
		t.Fatalf("Salons = %d, want 7", country.Salons)
	}
	if len(country.TopCities) != 5 {
		t.Fatalf("top cities not capped: %d", len(country.TopCities))
	}
	if country.TopCities[0].City != "City-6" {
		t.Fatalf("busiest city should lead: %+v", country.TopCities[0])
	}
}

func TestPricingExcludesUndeclaredPrices(t *testing.T) {
	declared := usageRow("salon-1", "april", 2024, "Wella", 5, 50)
	declared.RootColorPrice = 200
	declared.HighlightsPrice = 400
	undeclared := usageRow("salon-2", "april", 2024, "Wella", 5, 50)

	dataset := NewAggregator().Build([]reports.UsageRow{declared, undeclared})

	if len(dataset.PricingTrends) != 1 {
		t.Fatalf("pricing = %+v", dataset.PricingTrends)
	}
	trend := dataset.PricingTrends[0]
	if trend.AvgRootColorPrice != 200 || trend.AvgHighlightsPrice != 400 {
		t.Fatalf("zero prices dragged the average: %+v", trend)
	}
	if trend.AvgWomenHaircutPrice != 0 {
		t.Fatalf("no declared haircut prices should average to 0, got %v", trend.AvgWomenHaircutPrice)
	}
}

func TestCustomerOverviewWindow(t *testing.T) {
	rows := []reports.UsageRow{
		usageRow("salon-1", "march", 2024, "Schwarzkopf", 4, 40),
		usageRow("salon-1", "november", 2023, "Wella", 6, 60),
		usageRow("salon-1", "january", 2024, "Wella", 5, 50),
	}

	dataset := NewAggregator().Build(rows)
	if len(dataset.CustomerOverview) != 1 {
		t.Fatalf("customers = %+v", dataset.CustomerOverview)
	}
	customer := dataset.CustomerOverview[0]
	if customer.FirstMonth != "Nov 2023" || customer.LastMonth != "Mar 2024" {
		t.Fatalf("window bounds wrong: %+v", customer)
	}
	if customer.ActiveMonths != 3 || customer.TotalServices != 15 {
		t.Fatalf("customer totals wrong: %+v", customer)
	}
	if len(customer.Brands) != 2 || customer.Brands[0] != "Schwarzkopf" {
		t.Fatalf("brands should be sorted distinct: %v", customer.Brands)
	}
}

func TestSnapshotServiceCountDelta(t *testing.T) {
	row := usageRow("salon-1", "july", 2024, "Wella", 10, 100)
	row.ByCategory = map[reports.Category]reports.CategoryUsage{
		reports.CategoryColor: {Services: 7},
		reports.CategoryToner: {Services: 1},
	}

	dataset := NewAggregator().Build([]reports.UsageRow{row})

	snapshot, ok := dataset.MonthlySnapshots["Jul 2024"]
	if !ok {
		t.Fatalf("snapshot missing: %v", dataset.MonthlySnapshots)
	}
	if snapshot.ServiceCountDelta != 2 {
		t.Fatalf("ServiceCountDelta = %v, want 2", snapshot.ServiceCountDelta)
	}
	if snapshot.ByBrand["Wella"].TotalServices != 10 {
		t.Fatalf("byBrand wrong: %+v", snapshot.ByBrand)
	}
	if snapshot.ByCustomer["salon-1"].TotalCost != 100 {
		t.Fatalf("byCustomer wrong: %+v", snapshot.ByCustomer)
	}
}

func TestBuildDeterministicUnderPermutation(t *testing.T) {
	var rows []reports.UsageRow
	brands := []string{"Wella", "Schwarzkopf", "L'Oreal"}
	monthNames := []string{"january", "february", "march", "april"}
	for i := 0; i < 40; i++ {
		row := usageRow(
			fmt.Sprintf("salon-%d", i%9),
			monthNames[i%len(monthNames)],
			2024,
			brands[i%len(brands)],
			float64(i+1),
			float64((i+1)*10),
		)
		row.City = fmt.Sprintf("City-%d", i%6)
		rows = append(rows, row)
	}

	baseline, err := json.Marshal(NewAggregator().Build(rows))
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 5; i++ {
		shuffled := make([]reports.UsageRow, len(rows))
		copy(shuffled, rows)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := json.Marshal(NewAggregator().Build(shuffled))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(baseline) {
			t.Fatalf("permutation %d changed serialized dataset", i)
		}
	}
}
