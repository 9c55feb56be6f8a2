package importer

import (
	"os"
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

func TestFNBDialect_File(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fnb_statement.csv")
	require.NoError(t, err)

	rows, unrecognised := Parse(&FNBDialect{}, string(data))
	require.Len(t, rows, 4)
	assert.Equal(t, []string{
		"Date,Description,Amount,Balance",
		"02 Jan 2025,OPENING BALANCE,,10000.00",
		"Closing Balance,,,12097.25",
	}, unrecognised)

	assert.Equal(t, "BOOKING.COM BV, PAYOUT 8812", rows[0].Row.Description)
	assert.True(t, rows[0].Row.Amount.Equal(dec("4250.75")))
	assert.True(t, date(2025, 1, 3).Equal(rows[0].Row.Date))

	assert.True(t, rows[1].Row.Amount.Equal(dec("-1234.50")))
	assert.Equal(t, "05 Jan 2025,POS PURCHASE MAKRO CENTURION,-1234.50,13016.25", rows[1].Raw)
}

func TestABSADialect(t *testing.T) {
	d := &ABSADialect{}

	row, ok := d.ParseRow([]string{"10/01/2025", "DEPOSIT GUEST", "", "500.00", "1500.00"})
	require.True(t, ok)
	assert.True(t, row.Amount.Equal(dec("500")))

	row, ok = d.ParseRow([]string{"11/01/2025", "CLEANING", "120.00", "", "1380.00"})
	require.True(t, ok)
	assert.True(t, row.Amount.Equal(dec("-120")))

	_, ok = d.ParseRow([]string{"Date", "Description", "Debit", "Credit", "Balance"})
	assert.False(t, ok)

	_, ok = d.ParseRow([]string{"12/01/2025", "NOTHING", "", "", "1380.00"})
	assert.False(t, ok, "a row without debit or credit is not a data row")
}

func TestNedbankDialect(t *testing.T) {
	d := &NedbankDialect{}

	row, ok := d.ParseRow([]string{"2025/01/10", "SALARY J DLAMINI", "4,500.00", ""})
	require.True(t, ok)
	assert.True(t, row.Amount.Equal(dec("-4500")))
	assert.True(t, date(2025, 1, 10).Equal(row.Date))

	row, ok = d.ParseRow([]string{"2025/01/11", "AIRBNB PAYMENTS", "", "R 2,010.10"})
	require.True(t, ok)
	assert.True(t, row.Amount.Equal(dec("2010.10")))

	_, ok = d.ParseRow([]string{"10/01/2025", "WRONG DATE ORDER", "", "1.00"})
	assert.False(t, ok)
}

func TestStandardBankDialect(t *testing.T) {
	d := &StandardBankDialect{}

	row, ok := d.ParseRow([]string{"HIST", "10/01/2025", "CREDIT TRANSFER", "500.00", "GUEST 4471"})
	require.True(t, ok)
	assert.Equal(t, "CREDIT TRANSFER GUEST 4471", row.Description)

	row, ok = d.ParseRow([]string{"HIST", "11/01/2025", "IB PAYMENT", "-99.95", "000123456"})
	require.True(t, ok)
	assert.Equal(t, "IB PAYMENT", row.Description, "numeric references are not appended")
	assert.True(t, row.Amount.Equal(dec("-99.95")))

	_, ok = d.ParseRow([]string{"OPEN", "01/01/2025", "OPENING BALANCE", "1000.00", ""})
	assert.False(t, ok)

	_, ok = d.ParseRow([]string{"ACC-NO", "012345678"})
	assert.False(t, ok)
}

func TestCapitecDialect(t *testing.T) {
	d := &CapitecDialect{}

	row, ok := d.ParseRow([]string{"10/01/2025", "Payment Received", "500.00", "12345"})
	require.True(t, ok)
	assert.Equal(t, "Payment Received 12345", row.Description, "references are always appended")

	row, ok = d.ParseRow([]string{"10/01/2025", "Card Purchase", "-35.00", ""})
	require.True(t, ok)
	assert.Equal(t, "Card Purchase", row.Description)

	_, ok = d.ParseRow([]string{"Date", "Description", "Amount", "Reference"})
	assert.False(t, ok)
}

func TestParse_HeaderDropped(t *testing.T) {
	rows, unrecognised := Parse(&CapitecDialect{}, "Date,Description,Amount,Reference\n10/01/2025,x,1.00,\nFooter\n")
	assert.Len(t, rows, 1)
	assert.Equal(t, []string{"Footer"}, unrecognised)

	rows, unrecognised = Parse(&CapitecDialect{}, "10/01/2025,x,1.00,\n")
	assert.Len(t, rows, 1, "a headerless file keeps its first row")
	assert.Empty(t, unrecognised)
}

func TestParse_UnknownDialect(t *testing.T) {
	rows, unrecognised := Parse(nil, "a,b\n\n10/01/2025,x,1.00\n")
	assert.Empty(t, rows)
	assert.Equal(t, []string{"a,b", "10/01/2025,x,1.00"}, unrecognised)
}

func TestToTransaction_FlowFromSign(t *testing.T) {
	tests := []struct {
		amount string
		flow   model.FlowDirection
		stored string
	}{
		{"500.00", model.FlowIncome, "500"},
		{"-120.00", model.FlowExpense, "120"},
		{"0", model.FlowIncome, "0"},
	}
	for _, tt := range tests {
		txn := ToTransaction(Line{Row: model.BankRow{Amount: dec(tt.amount)}})
		assert.Equal(t, tt.flow, txn.Flow, "amount %s", tt.amount)
		assert.True(t, txn.Amount.Equal(dec(tt.stored)), "amount %s stored as %s", tt.amount, txn.Amount)
		assert.False(t, txn.Amount.IsNegative())
	}
}

func TestParse_Idempotent(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fnb_statement.csv")
	require.NoError(t, err)

	first, u1 := Parse(&FNBDialect{}, string(data))
	second, u2 := Parse(&FNBDialect{}, string(data))
	assert.Equal(t, first, second)
	assert.Equal(t, u1, u2)
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()
	d, err := r.Lookup("Capitec")
	require.NoError(t, err)
	assert.Equal(t, "capitec", d.Name())

	_, err = r.Lookup("monzo")
	require.ErrorIs(t, err, ErrUnknownDialect)
	assert.Contains(t, err.Error(), "absa, capitec, fnb, nedbank, standardbank")
}

func TestRegistry_CaseInsensitiveAndAliases(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, "absa", r.Get("ABSA").Name())
	assert.Equal(t, "absa", r.Get("b").Name())
	assert.Equal(t, "standardbank", r.Get(" D ").Name())
	assert.Equal(t, []string{"absa", "capitec", "fnb", "nedbank", "standardbank"}, r.Names())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&FNBDialect{})
	assert.Panics(t, func() { r.Register(&FNBDialect{}) })
}
