package reports

import (
	"strings"

	"github.com/salonpulse-ai/salonpulse-backend/pkg/months"
)

// Category names the service families broken out in every monthly report.
type Category string

const (
	CategoryColor         Category = "color"
	CategoryHighlights    Category = "highlights"
	CategoryToner         Category = "toner"
	CategoryStraightening Category = "straightening"
	CategoryOthers        Category = "others"
)

// Categories lists the service families in their reporting order.
var Categories = []Category{
	CategoryColor,
	CategoryHighlights,
	CategoryToner,
	CategoryStraightening,
	CategoryOthers,
}

// CategoryUsage holds the services/cost/grams triple reported per family.
type CategoryUsage struct {
	Services float64
	Cost     float64
	Grams    float64
}

// UsageRow is the canonical record for one salon x one month x one brand.
// All numeric fields are non-negative after normalization; Month holds the
// canonical lowercase English month name. The (UserID, Year, Month, Brand)
// tuple is not unique in source data; duplicates are summed downstream.
type UsageRow struct {
	UserID    string
	Year      int
	Month     string
	Country   string
	City      string
	SalonType string
	Employees int
	Brand     string

	TotalVisits   float64
	TotalServices float64
	TotalCost     float64
	TotalGrams    float64

	ByCategory map[Category]CategoryUsage

	RootColorPrice    float64
	HighlightsPrice   float64
	WomenHaircutPrice float64
}

// MonthOf resolves the row's reporting month as a Month value. ok is false
// when the month name did not normalize, which normalization prevents for
// rows it emits.
func (r UsageRow) MonthOf() (months.Month, bool) {
	idx, ok := months.MonthIndex(r.Month)
	if !ok {
		return months.Month{}, false
	}
	return months.New(r.Year, idx), true
}

// Usage returns the triple recorded for one service family.
func (r UsageRow) Usage(cat Category) CategoryUsage {
	if r.ByCategory == nil {
		return CategoryUsage{}
	}
	return r.ByCategory[cat]
}

// FilterByCountry returns the rows whose country matches (case-insensitively)
// the provided name. An empty filter returns rows unchanged.
func FilterByCountry(rows []UsageRow, country string) []UsageRow {
	if country == "" {
		return rows
	}
	out := make([]UsageRow, 0, len(rows))
	for _, row := range rows {
		if strings.EqualFold(row.Country, country) {
			out = append(out, row)
		}
	}
	return out
}
