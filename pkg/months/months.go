package months

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Month identifies one calendar month. It is the join key for every rollup
// and the sequence unit for cohort eligibility, replacing ad hoc month-name
// string handling with a totally ordered value.
type Month struct {
	Year  int
	Index time.Month
}

// aliases maps non-canonical month spellings (exported reports arrive with a
// mix of locales) onto canonical English months. Lookups are lowercase.
var aliases = map[string]time.Month{
	"januar":    time.January,
	"janvier":   time.January,
	"februar":   time.February,
	"fevrier":   time.February,
	"marz":      time.March,
	"maerz":     time.March,
	"mars":      time.March,
	"avril":     time.April,
	"mai":       time.May,
	"juni":      time.June,
	"juin":      time.June,
	"juli":      time.July,
	"juillet":   time.July,
	"aout":      time.August,
	"septembre": time.September,
	"sept":      time.September,
	"oktober":   time.October,
	"octobre":   time.October,
	"novembre":  time.November,
	"dezember":  time.December,
	"decembre":  time.December,
}

// byName resolves canonical English month names, full and three-letter.
var byName = func() map[string]time.Month {
	m := make(map[string]time.Month, 24)
	for i := time.January; i <= time.December; i++ {
		full := strings.ToLower(i.String())
		m[full] = i
		m[full[:3]] = i
	}
	return m
}()

// New returns the month for the given year and index.
func New(year int, index time.Month) Month {
	return Month{Year: year, Index: index}
}

// MonthIndex resolves a month name (canonical, abbreviated or aliased,
// any case) to its calendar index.
func MonthIndex(name string) (time.Month, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if idx, ok := byName[key]; ok {
		return idx, true
	}
	if idx, ok := aliases[key]; ok {
		return idx, true
	}
	return 0, false
}

// CanonicalName normalizes a month name to its lowercase English form.
// Unresolvable names are returned lowercased as-is so callers can log them.
func CanonicalName(name string) string {
	if idx, ok := MonthIndex(name); ok {
		return strings.ToLower(idx.String())
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// Parse reads a "Jan 2023" / "January 2023" style key.
func Parse(s string) (Month, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return Month{}, fmt.Errorf("invalid month key %q (want \"Jan 2006\")", s)
	}
	idx, ok := MonthIndex(fields[0])
	if !ok {
		return Month{}, fmt.Errorf("unknown month name %q", fields[0])
	}
	year, err := strconv.Atoi(fields[1])
	if err != nil || year < 1000 || year > 9999 {
		return Month{}, fmt.Errorf("invalid year %q", fields[1])
	}
	return Month{Year: year, Index: idx}, nil
}

// Key renders the canonical "Jan 2006" label used across the dataset.
func (m Month) Key() string {
	return fmt.Sprintf("%s %d", m.Index.String()[:3], m.Year)
}

// Name returns the lowercase canonical month name.
func (m Month) Name() string {
	return strings.ToLower(m.Index.String())
}

// SortKey produces an integer preserving chronological order.
func (m Month) SortKey() int {
	return m.Year*12 + int(m.Index) - 1
}

// Compare orders months chronologically: -1, 0 or 1.
func (m Month) Compare(other Month) int {
	switch a, b := m.SortKey(), other.SortKey(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	return m.Compare(other) < 0
}

// Next returns the following calendar month, rolling the year over.
func (m Month) Next() Month {
	if m.Index == time.December {
		return Month{Year: m.Year + 1, Index: time.January}
	}
	return Month{Year: m.Year, Index: m.Index + 1}
}

// IsZero reports whether the month is unset.
func (m Month) IsZero() bool {
	return m.Index == 0
}

// Sequence returns every month from start to end inclusive, handling year
// rollover. The error covers inverted windows.
func Sequence(start, end Month) ([]Month, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("month window ends (%s) before it starts (%s)", end.Key(), start.Key())
	}
	seq := make([]Month, 0, end.SortKey()-start.SortKey()+1)
	for cur := start; !end.Before(cur); cur = cur.Next() {
		seq = append(seq, cur)
	}
	return seq, nil
}

// SortChronologically orders a month slice in place, earliest first.
func SortChronologically(ms []Month) {
	sort.Slice(ms, func(i, j int) bool { return ms[i].Before(ms[j]) })
}
