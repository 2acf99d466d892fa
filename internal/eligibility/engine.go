package eligibility

import (
	"math"
	"sort"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/months"
)

// nearMissMargin is how far below the threshold a longest run may fall and
// still be surfaced to operators for manual review.
const nearMissMargin = 2

// Stats carries the per-salon diagnostics the rebuild logs for audit.
type Stats struct {
	ActiveMonths   int
	MaxConsecutive int
	TotalServices  float64
	Pass           bool
}

// Result is the outcome of one eligibility computation over a month window.
type Result struct {
	Eligible    []string
	Details     map[string]Stats
	NearMisses  []string
	Threshold   int
	TotalMonths int
}

// Compute applies the consecutive-active-month rule over one country's usage
// rows. A salon qualifies only if its longest unbroken run of active months
// (summed services > 0) reaches ceil(0.9 * window length). This is a
// longest-run test, not a total-activity test: a single gap can fail a salon
// whose overall activity exceeds 90%.
//
// Compute is pure and deterministic regardless of input row order.
func Compute(rows []reports.UsageRow, start, end months.Month) (*Result, error) {
	sequence, err := months.Sequence(start, end)
	if err != nil {
		return nil, err
	}

	totalMonths := len(sequence)
	threshold := int(math.Ceil(0.9 * float64(totalMonths)))

	// Sum services per salon per canonical month; rows outside the window
	// are ignored.
	inWindow := make(map[int]bool, totalMonths)
	for _, m := range sequence {
		inWindow[m.SortKey()] = true
	}

	// Every salon seen in the input gets a Details entry, even when all of
	// its rows fall outside the window; operators reviewing the run need the
	// all-zero stats, not an absence.
	servicesByUser := make(map[string]map[int]float64)
	for _, row := range rows {
		byMonth := servicesByUser[row.UserID]
		if byMonth == nil {
			byMonth = make(map[int]float64, totalMonths)
			servicesByUser[row.UserID] = byMonth
		}
		m, ok := row.MonthOf()
		if !ok || !inWindow[m.SortKey()] {
			continue
		}
		byMonth[m.SortKey()] += row.TotalServices
	}

	result := &Result{
		Details:     make(map[string]Stats, len(servicesByUser)),
		Threshold:   threshold,
		TotalMonths: totalMonths,
	}

	for userID, byMonth := range servicesByUser {
		stats := walkWindow(sequence, byMonth, threshold)
		result.Details[userID] = stats
		if stats.Pass {
			result.Eligible = append(result.Eligible, userID)
		} else if stats.MaxConsecutive >= threshold-nearMissMargin {
			result.NearMisses = append(result.NearMisses, userID)
		}
	}

	sort.Strings(result.Eligible)
	sort.Strings(result.NearMisses)
	return result, nil
}

// walkWindow traverses the month sequence chronologically, tracking the
// active-month count and the longest unbroken streak. A zero-service month
// resets the running streak but not the active count.
func walkWindow(sequence []months.Month, byMonth map[int]float64, threshold int) Stats {
	var stats Stats
	streak := 0

	for _, m := range sequence {
		services := byMonth[m.SortKey()]
		stats.TotalServices += services
		if services > 0 {
			stats.ActiveMonths++
			streak++
			if streak > stats.MaxConsecutive {
				stats.MaxConsecutive = streak
			}
		} else {
			streak = 0
		}
	}

	stats.Pass = stats.MaxConsecutive >= threshold
	return stats
}
