package intelligence

// Dataset is the single market-intelligence artifact one aggregation run
// produces. It is immutable once built and replaced wholesale on the next
// run; the dashboard and the chat-context builder read it as-is.
type Dataset struct {
	Summary                Summary                    `json:"summary"`
	MonthlyTrends          []MonthlyTrend             `json:"monthlyTrends"`
	BrandPerformance       []BrandPerformance         `json:"brandPerformance"`
	BrandMonthly           []BrandMonthly             `json:"brandMonthly"`
	ServiceBreakdown       []ServiceTypeBreakdown     `json:"serviceBreakdown"`
	GeographicDistribution []GeographicDistribution   `json:"geographicDistribution"`
	SalonSizeBenchmarks    []SalonSizeBenchmark       `json:"salonSizeBenchmarks"`
	PricingTrends          []PricingTrend             `json:"pricingTrends"`
	CustomerOverview       []CustomerOverview         `json:"customerOverview"`
	MonthlySnapshots       map[string]MonthlySnapshot `json:"monthlySnapshots"`
}

// Summary holds the global KPIs shown at the top of the dashboard.
type Summary struct {
	TotalRows         int     `json:"totalRows"`
	TotalSalons       int     `json:"totalSalons"`
	TotalBrands       int     `json:"totalBrands"`
	TotalCountries    int     `json:"totalCountries"`
	MonthsCovered     int     `json:"monthsCovered"`
	FirstMonth        string  `json:"firstMonth"`
	LastMonth         string  `json:"lastMonth"`
	TotalVisits       float64 `json:"totalVisits"`
	TotalServices     float64 `json:"totalServices"`
	TotalCost         float64 `json:"totalCost"`
	TotalGrams        float64 `json:"totalGrams"`
	AvgCostPerService float64 `json:"avgCostPerService"`
}

// MonthlyTrend aggregates one canonical month across all salons and brands.
type MonthlyTrend struct {
	Month         string  `json:"month"`
	TotalVisits   float64 `json:"totalVisits"`
	TotalServices float64 `json:"totalServices"`
	TotalCost     float64 `json:"totalCost"`
	TotalGrams    float64 `json:"totalGrams"`
	ActiveSalons  int     `json:"activeSalons"`
	ActiveBrands  int     `json:"activeBrands"`
}

// BrandPerformance aggregates one brand across the whole window.
type BrandPerformance struct {
	Brand             string  `json:"brand"`
	TotalServices     float64 `json:"totalServices"`
	TotalCost         float64 `json:"totalCost"`
	TotalGrams        float64 `json:"totalGrams"`
	Salons            int     `json:"salons"`
	ActiveMonths      int     `json:"activeMonths"`
	AvgCostPerService float64 `json:"avgCostPerService"`
}

// BrandMonthly is one brand's totals within one canonical month.
type BrandMonthly struct {
	Brand         string  `json:"brand"`
	Month         string  `json:"month"`
	TotalServices float64 `json:"totalServices"`
	TotalCost     float64 `json:"totalCost"`
	TotalGrams    float64 `json:"totalGrams"`
}

// ServiceTypeBreakdown aggregates one service family across the window.
type ServiceTypeBreakdown struct {
	ServiceType   string  `json:"serviceType"`
	TotalServices float64 `json:"totalServices"`
	TotalCost     float64 `json:"totalCost"`
	TotalGrams    float64 `json:"totalGrams"`
	ServicesShare float64 `json:"servicesShare"`
}

// CityDistribution is a country's city-level drilldown.
type CityDistribution struct {
	City          string  `json:"city"`
	Salons        int     `json:"salons"`
	TotalServices float64 `json:"totalServices"`
}

// GeographicDistribution aggregates one country with its busiest cities.
type GeographicDistribution struct {
	Country       string             `json:"country"`
	Salons        int                `json:"salons"`
	TotalServices float64            `json:"totalServices"`
	TotalCost     float64            `json:"totalCost"`
	TopCities     []CityDistribution `json:"topCities"`
}

// SalonSizeBenchmark reports row-level averages for one employee band.
type SalonSizeBenchmark struct {
	Band        string  `json:"band"`
	Rows        int     `json:"rows"`
	AvgVisits   float64 `json:"avgVisits"`
	AvgServices float64 `json:"avgServices"`
	AvgCost     float64 `json:"avgCost"`
}

// PricingTrend averages declared client prices for one canonical month.
// Zero (undeclared) prices are excluded from the averages.
type PricingTrend struct {
	Month                string  `json:"month"`
	AvgRootColorPrice    float64 `json:"avgRootColorPrice"`
	AvgHighlightsPrice   float64 `json:"avgHighlightsPrice"`
	AvgWomenHaircutPrice float64 `json:"avgWomenHaircutPrice"`
}

// CustomerOverview aggregates one salon across the whole window.
type CustomerOverview struct {
	UserID        string   `json:"userId"`
	Country       string   `json:"country"`
	City          string   `json:"city"`
	SalonType     string   `json:"salonType"`
	Brands        []string `json:"brands"`
	ActiveMonths  int      `json:"activeMonths"`
	FirstMonth    string   `json:"firstMonth"`
	LastMonth     string   `json:"lastMonth"`
	TotalVisits   float64  `json:"totalVisits"`
	TotalServices float64  `json:"totalServices"`
	TotalCost     float64  `json:"totalCost"`
	TotalGrams    float64  `json:"totalGrams"`
}

// SnapshotEntry is a by-brand or by-customer line inside a monthly snapshot.
type SnapshotEntry struct {
	TotalServices float64 `json:"totalServices"`
	TotalCost     float64 `json:"totalCost"`
}

// MonthlySnapshot is the per-month drilldown keyed by canonical month label.
// ServiceCountDelta records the difference between declared totals and the
// sum of category counts; source data does not guarantee the two match, so
// it is a diagnostic rather than an invariant.
type MonthlySnapshot struct {
	Month             string                   `json:"month"`
	TotalServices     float64                  `json:"totalServices"`
	TotalCost         float64                  `json:"totalCost"`
	ActiveSalons      int                      `json:"activeSalons"`
	ServiceCountDelta float64                  `json:"serviceCountDelta"`
	ByBrand           map[string]SnapshotEntry `json:"byBrand"`
	ByCustomer        map[string]SnapshotEntry `json:"byCustomer"`
}
