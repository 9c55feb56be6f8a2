package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// memStore filters like the SQL store does.
type memStore struct {
	rows    []model.StoredTransaction
	queries int
	err     error
}

func (m *memStore) FindTransactionsInWindow(_ context.Context, propertyID string, from, to time.Time, minAmount, maxAmount decimal.Decimal) ([]model.StoredTransaction, error) {
	m.queries++
	if m.err != nil {
		return nil, m.err
	}
	var out []model.StoredTransaction
	for _, r := range m.rows {
		if r.PropertyID != propertyID {
			continue
		}
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		if r.Amount.LessThan(minAmount) || r.Amount.GreaterThan(maxAmount) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func TestIsDuplicate_Tolerances(t *testing.T) {
	store := &memStore{rows: []model.StoredTransaction{
		{ID: "t1", PropertyID: "p1", Date: date(2025, 3, 10), Amount: dec("500.00")},
	}}
	d := New(store)
	ctx := context.Background()

	tests := []struct {
		name     string
		date     time.Time
		amount   string
		property string
		want     bool
	}{
		{"next day within a unit", date(2025, 3, 11), "500.90", "p1", true},
		{"same day two units off", date(2025, 3, 10), "502.00", "p1", false},
		{"exact", date(2025, 3, 10), "500.00", "p1", true},
		{"previous day, exactly one unit", date(2025, 3, 9), "499.00", "p1", true},
		{"two days later", date(2025, 3, 12), "500.00", "p1", false},
		{"other property", date(2025, 3, 10), "500.00", "p2", false},
	}
	for _, tt := range tests {
		got, err := d.IsDuplicate(ctx, dec(tt.amount), tt.date, tt.property)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestCheck_SingleQueryPerBatch(t *testing.T) {
	store := &memStore{rows: []model.StoredTransaction{
		{PropertyID: "p1", Date: date(2025, 1, 5), Amount: dec("120.00")},
		{PropertyID: "p1", Date: date(2025, 2, 20), Amount: dec("4000.00")},
	}}
	txns := []model.ParsedTransaction{
		{Date: date(2025, 1, 6), Amount: dec("120.50")},
		{Date: date(2025, 1, 15), Amount: dec("75.00")},
		{Date: date(2025, 2, 19), Amount: dec("3999.01")},
	}

	flags, err := New(store).Check(context.Background(), "p1", txns)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, flags)
	assert.Equal(t, 1, store.queries)
}

func TestCheck_Empty(t *testing.T) {
	store := &memStore{}
	flags, err := New(store).Check(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Empty(t, flags)
	assert.Zero(t, store.queries)
}

func TestCheck_StoreError(t *testing.T) {
	store := &memStore{err: errors.New("locked")}
	_, err := New(store).Check(context.Background(), "p1", []model.ParsedTransaction{{Date: date(2025, 1, 1), Amount: dec("1")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
}

func TestNear(t *testing.T) {
	assert.True(t, Near(date(2025, 1, 1), dec("10.00"), date(2025, 1, 2), dec("11.00")))
	assert.False(t, Near(date(2025, 1, 1), dec("10.00"), date(2025, 1, 2), dec("11.01")))
	assert.False(t, Near(date(2025, 1, 1), dec("10.00"), date(2025, 1, 3), dec("10.00")))
}
