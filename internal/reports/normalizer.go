package reports

import (
	"strconv"
	"strings"
	"time"

	"github.com/salonpulse-ai/salonpulse-backend/pkg/months"
)

const unknown = "Unknown"

// Normalizer converts one raw spreadsheet record into a canonical UsageRow.
// It owns all numeric and month coercion and has no knowledge of aggregation.
// Coercion never fails a row: unparsable numeric cells degrade to zero and
// are counted so the run summary can surface them.
type Normalizer struct {
	coerced int
}

// NewNormalizer returns a fresh per-file normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// CoercedCells reports how many non-empty numeric cells degraded to zero
// since the normalizer was created.
func (n *Normalizer) CoercedCells() int {
	return n.coerced
}

// Normalize builds a UsageRow from a record using the file's resolved schema.
// fallback supplies the reporting month parsed from the filename, used when
// the row carries no usable Year/Month cells.
func (n *Normalizer) Normalize(sch *fileSchema, record []string, fallback months.Month) UsageRow {
	row := UsageRow{
		UserID:    sch.value(record, colUserID),
		Country:   orUnknown(sch.value(record, colState)),
		City:      orUnknown(sch.value(record, colCity)),
		SalonType: orUnknown(sch.value(record, colSalonType)),
		Brand:     strings.TrimSpace(sch.value(record, colBrand)),

		TotalVisits:   n.Number(sch.value(record, colTotalVisits)),
		TotalServices: n.Number(sch.value(record, colTotalServices)),
		TotalCost:     n.Number(sch.value(record, colTotalCost)),
		TotalGrams:    n.Number(sch.value(record, colTotalGrams)),

		RootColorPrice:    n.Number(sch.value(record, colRootColorPrice)),
		HighlightsPrice:   n.Number(sch.value(record, colHighlightsPrice)),
		WomenHaircutPrice: n.Number(sch.value(record, colWomenHaircutPrice)),
	}

	row.Employees = int(n.Number(sch.value(record, colEmployees)))

	month := n.resolveMonth(sch, record, fallback)
	row.Year = month.Year
	row.Month = month.Name()

	row.ByCategory = make(map[Category]CategoryUsage, len(Categories))
	for _, cat := range Categories {
		row.ByCategory[cat] = CategoryUsage{
			Services: n.Number(sch.value(record, categoryColumn(cat, "service"))),
			Cost:     n.Number(sch.value(record, categoryColumn(cat, "total cost"))),
			Grams:    n.Number(sch.value(record, categoryColumn(cat, "grams"))),
		}
	}

	return row
}

// resolveMonth prefers the numeric month column, then the month name (alias
// tolerant), then the filename-derived fallback. Year follows the same order.
func (n *Normalizer) resolveMonth(sch *fileSchema, record []string, fallback months.Month) months.Month {
	index := fallback.Index
	if raw := sch.value(record, colMonthNumber); raw != "" {
		if num, err := strconv.Atoi(raw); err == nil && num >= 1 && num <= 12 {
			index = time.Month(num)
		}
	} else if name := sch.value(record, colMonth); name != "" {
		if idx, ok := months.MonthIndex(name); ok {
			index = idx
		}
	}

	year := fallback.Year
	if raw := sch.value(record, colYear); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 1000 && parsed <= 9999 {
			year = parsed
		}
	}

	return months.New(year, index)
}

// Number coerces a numeric cell, stripping currency symbols and thousands
// separators. Failures degrade to zero and are counted; negative amounts
// clamp to zero to preserve the non-negative invariant.
func (n *Normalizer) Number(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	cleaned := stripNonNumeric(raw)
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		n.coerced++
		return 0
	}
	if value < 0 {
		return 0
	}
	return value
}

// stripNonNumeric keeps digits, the decimal point and a leading minus so
// cells like "₪1,234.50" collapse to "1234.50".
func stripNonNumeric(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func orUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return unknown
	}
	return value
}
