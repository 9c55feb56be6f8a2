// Package normalize holds the tolerant parsing primitives shared by the bank
// dialects and the OTA platform parsers.
package normalize

import "strings"

// BOM is the UTF-8 byte-order mark some exports put before the first cell.
const BOM = "\ufeff"

// StripBOM removes a leading byte-order mark.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, BOM)
}

// SplitLine splits one CSV line on commas. Commas inside double-quoted fields
// are literal; a doubled quote inside a quoted field is a literal quote. The
// surrounding quotes are removed and every field is trimmed.
func SplitLine(line string) []string {
	var (
		fields  []string
		b       strings.Builder
		inQuote bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuote && i+1 < len(line) && line[i+1] == '"':
			b.WriteByte('"')
			i++
		case c == '"':
			inQuote = !inQuote
		case c == ',' && !inQuote:
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	fields = append(fields, strings.TrimSpace(b.String()))
	return fields
}

// Lines splits raw file text into non-blank lines with line endings and a
// leading BOM removed.
func Lines(text string) []string {
	text = StripBOM(text)
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
