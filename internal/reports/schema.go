package reports

import (
	"fmt"
	"strings"

	pkgerrors "github.com/salonpulse-ai/salonpulse-backend/pkg/errors"
)

// Column names as they appear in exported report headers. Lookup is by
// normalized name, so reordered or added columns are tolerated.
const (
	colYear          = "year"
	colMonth         = "month"
	colMonthNumber   = "monthnumber"
	colUserID        = "userid"
	colState         = "state"
	colCity          = "city"
	colSalonType     = "salon type"
	colEmployees     = "employees"
	colBrand         = "brand"
	colTotalVisits   = "total visits"
	colTotalServices = "total services"
	colTotalCost     = "total cost"
	colTotalGrams    = "total grams"

	colRootColorPrice    = "root color price"
	colHighlightsPrice   = "highlights price"
	colWomenHaircutPrice = "women haircut price"
)

// requiredColumns must resolve for a file to be ingested at all. Everything
// else degrades to zero/Unknown per the best-effort policy.
var requiredColumns = []string{colUserID, colBrand, colTotalServices}

// fileSchema maps normalized header names to column positions, resolved once
// per file instead of per cell.
type fileSchema struct {
	index map[string]int
}

// resolveSchema builds the header mapping and fails loudly when a required
// column is absent, naming every missing column.
func resolveSchema(header []string) (*fileSchema, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := normalizeHeader(name)
		if key == "" {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeIngest,
			fmt.Sprintf("header is missing required columns: %s", strings.Join(missing, ", "))).
			WithDetails(missing)
	}

	return &fileSchema{index: index}, nil
}

// value reads the named column from a record, empty when the column is
// absent or the record is short.
func (s *fileSchema) value(record []string, col string) string {
	i, ok := s.index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// categoryColumn builds the per-family column name, e.g. "color service".
func categoryColumn(cat Category, suffix string) string {
	return string(cat) + " " + suffix
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
