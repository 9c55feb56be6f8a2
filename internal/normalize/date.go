package normalize

import (
	"strings"
	"time"
)

// Named date patterns used by the statement exports.
const (
	DayMonthNameYear = "dd MMM yyyy"
	DayMonthYear     = "dd/MM/yyyy"
	YearMonthDay     = "yyyy/MM/dd"
	ISODate          = "yyyy-MM-dd"
	MonthDayYear     = "MM/dd/yyyy"
	CompactDate      = "yyyyMMdd"
)

var layouts = map[string]string{
	DayMonthNameYear: "02 Jan 2006",
	DayMonthYear:     "02/01/2006",
	YearMonthDay:     "2006/01/02",
	ISODate:          "2006-01-02",
	MonthDayYear:     "01/02/2006",
	CompactDate:      "20060102",
}

// ParseDate parses value strictly against a named pattern. It reports false
// instead of failing; header, subtotal and footer rows are skipped this way.
func ParseDate(value, pattern string) (time.Time, bool) {
	layout, ok := layouts[pattern]
	if !ok {
		return time.Time{}, false
	}
	value = strings.Trim(strings.TrimSpace(value), `"`)
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDateAny tries each pattern in order and returns the first success.
func ParseDateAny(value string, patterns ...string) (time.Time, bool) {
	for _, p := range patterns {
		if t, ok := ParseDate(value, p); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysApart is the absolute number of calendar days between a and b.
func DaysApart(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	d := int(ad.Sub(bd).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
