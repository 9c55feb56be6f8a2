package ota

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/LebsNeo/mrmoney-sub000/internal/normalize"
)

// columns maps lower-cased header names to their index.
type columns map[string]int

func newColumns(header []string) columns {
	c := make(columns, len(header))
	for i, h := range header {
		if i == 0 {
			h = normalize.StripBOM(h)
		}
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := c[key]; !dup {
			c[key] = i
		}
	}
	return c
}

// index returns the position of the first name present, or -1.
func (c columns) index(names ...string) int {
	for _, n := range names {
		if i, ok := c[strings.ToLower(n)]; ok {
			return i
		}
	}
	return -1
}

// has reports whether any of names is a column.
func (c columns) has(names ...string) bool {
	return c.index(names...) >= 0
}

// get returns the trimmed cell for the first matching column, or "".
func (c columns) get(rec []string, names ...string) string {
	i := c.index(names...)
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// readTable reads a whole export. Ragged rows and stray quotes are tolerated.
func readTable(text string) (columns, [][]string, error) {
	cr := csv.NewReader(strings.NewReader(normalize.StripBOM(text)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return columns{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading rows: %w", err)
	}
	return newColumns(header), records, nil
}

// otaDatePatterns are tried in order for platform date cells.
var otaDatePatterns = []string{
	normalize.ISODate,
	normalize.DayMonthYear,
	normalize.DayMonthNameYear,
	normalize.YearMonthDay,
}

func parseDate(s string, patterns ...string) (time.Time, bool) {
	if len(patterns) == 0 {
		patterns = otaDatePatterns
	}
	return normalize.ParseDateAny(s, patterns...)
}

func optionalDate(s string, patterns ...string) *time.Time {
	t, ok := parseDate(s, patterns...)
	if !ok {
		return nil
	}
	return &t
}
