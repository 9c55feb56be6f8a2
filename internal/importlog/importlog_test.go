package importlog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:    testTime,
		Kind:         "bank",
		Format:       "fnb",
		PropertyID:   "prop-1",
		Source:       "statement.csv",
		Parsed:       4,
		Duplicates:   1,
		Unrecognised: 3,
		Persisted:    3,
		Status:       StatusCommitted,
		Details:      "monthly import, with a comma",
	}
}

func TestAppend_NewFile(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "logs"))
	require.NoError(t, l.Append(testEntry()))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), Header+"\n"))

	entries, err := l.Read()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testEntry(), entries[0])
}

func TestAppend_ExistingFile(t *testing.T) {
	l := New(t.TempDir())
	require.NoError(t, l.Append(testEntry()))

	e2 := testEntry()
	e2.Kind = "ota"
	e2.Format = "airbnb"
	e2.Status = StatusFailed
	require.NoError(t, l.Append(e2))

	entries, err := l.Read()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bank", entries[0].Kind)
	assert.Equal(t, "ota", entries[1].Kind)
	assert.Equal(t, StatusFailed, entries[1].Status)

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header), "header written once")
}

func TestAppend_DefaultsTimestamp(t *testing.T) {
	l := New(t.TempDir())
	e := testEntry()
	e.Timestamp = time.Time{}
	require.NoError(t, l.Append(e))

	entries, err := l.Read()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.WithinDuration(t, time.Now(), entries[0].Timestamp, time.Minute)
}

func TestAppend_Concurrent(t *testing.T) {
	l := New(t.TempDir())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Append(testEntry()))
		}()
	}
	wg.Wait()

	entries, err := l.Read()
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestRead_Missing(t *testing.T) {
	entries, err := New(t.TempDir()).Read()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"a"})
	assert.ErrorContains(t, err, "expected 11 fields")

	row := MarshalEntry(testEntry())
	row[colTimestamp] = "yesterday"
	_, err = UnmarshalEntry(row)
	assert.ErrorContains(t, err, "parsing timestamp")

	row = MarshalEntry(testEntry())
	row[colParsed] = "many"
	_, err = UnmarshalEntry(row)
	assert.ErrorContains(t, err, "parsing count")
}
