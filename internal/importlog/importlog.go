// Package importlog keeps an append-only CSV record of import runs.
package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Run statuses.
const (
	StatusCommitted = "committed"
	StatusPreview   = "preview"
	StatusFailed    = "failed"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp    time.Time
	Kind         string // bank, force or ota
	Format       string // dialect or platform
	PropertyID   string
	Source       string
	Parsed       int
	Duplicates   int
	Unrecognised int
	Persisted    int
	Status       string
	Details      string
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,kind,format,property_id,source,parsed,duplicates,unrecognised,persisted,status,details"

// FileName is the log's name inside its directory.
const FileName = "import-log.csv"

const (
	numFields       = 11
	colTimestamp    = 0
	colKind         = 1
	colFormat       = 2
	colProperty     = 3
	colSource       = 4
	colParsed       = 5
	colDuplicates   = 6
	colUnrecognised = 7
	colPersisted    = 8
	colStatus       = 9
	colDetails      = 10
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colKind] = e.Kind
	row[colFormat] = e.Format
	row[colProperty] = e.PropertyID
	row[colSource] = e.Source
	row[colParsed] = strconv.Itoa(e.Parsed)
	row[colDuplicates] = strconv.Itoa(e.Duplicates)
	row[colUnrecognised] = strconv.Itoa(e.Unrecognised)
	row[colPersisted] = strconv.Itoa(e.Persisted)
	row[colStatus] = e.Status
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	e := Entry{
		Timestamp:  ts,
		Kind:       record[colKind],
		Format:     record[colFormat],
		PropertyID: record[colProperty],
		Source:     record[colSource],
		Status:     record[colStatus],
		Details:    record[colDetails],
	}
	counts := []struct {
		col int
		dst *int
	}{
		{colParsed, &e.Parsed},
		{colDuplicates, &e.Duplicates},
		{colUnrecognised, &e.Unrecognised},
		{colPersisted, &e.Persisted},
	}
	for _, c := range counts {
		n, err := strconv.Atoi(record[c.col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[c.col], err)
		}
		*c.dst = n
	}
	return e, nil
}

// Log appends entries to <dir>/import-log.csv. Appends are serialised.
type Log struct {
	dir string
	mu  sync.Mutex
}

// New returns a Log rooted at dir. The directory is created on first write.
func New(dir string) *Log {
	return &Log{dir: dir}
}

// Path is the log file's location.
func (l *Log) Path() string {
	return filepath.Join(l.dir, FileName)
}

// Append writes entries, creating the file and header if needed.
func (l *Log) Append(entries ...Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := l.Path()
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if e.Timestamp.IsZero() {
			e.Timestamp = time.Now()
		}
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries. A missing file yields no entries.
func (l *Log) Read() ([]Entry, error) {
	f, err := os.Open(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
