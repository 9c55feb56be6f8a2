package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testTxns() []model.ParsedTransaction {
	return []model.ParsedTransaction{
		{
			Date:        time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
			Description: "BOOKING.COM BV, PAYOUT 8812",
			Amount:      dec("4250.75"),
			Flow:        model.FlowIncome,
			Category:    model.CategoryOTAPayout,
			Confidence:  model.ConfidenceHigh,
			RawLine:     `03 Jan 2025,"BOOKING.COM BV, PAYOUT 8812",4250.75,14250.75`,
		},
		{
			Date:        time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			Description: "POS PURCHASE MAKRO",
			Amount:      dec("1234.5"),
			Flow:        model.FlowExpense,
			Category:    model.CategorySupplies,
			Confidence:  model.ConfidenceMedium,
			Duplicate:   true,
			RawLine:     "05 Jan 2025,POS PURCHASE MAKRO,-1234.50,13016.25",
		},
	}
}

func TestWriteTransactions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, testTxns()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, TransactionHeader, lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "2025-01-05,POS PURCHASE MAKRO,1234.50,EXPENSE,SUPPLIES,MEDIUM,true,"))
}

func TestTransactions_ReadBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, testTxns()))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i, want := range testTxns() {
		assert.True(t, want.Date.Equal(got[i].Date))
		assert.True(t, want.Amount.Equal(got[i].Amount))
		assert.Equal(t, want.Description, got[i].Description)
		assert.Equal(t, want.Flow, got[i].Flow)
		assert.Equal(t, want.Category, got[i].Category)
		assert.Equal(t, want.Duplicate, got[i].Duplicate)
		assert.Equal(t, want.RawLine, got[i].RawLine)
	}
}

func TestReadTransactions_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad date", "2025/01/03,x,1.00,INCOME,OTHER,LOW,false,", "parsing date"},
		{"bad amount", "2025-01-03,x,lots,INCOME,OTHER,LOW,false,", "parsing amount"},
		{"negative", "2025-01-03,x,-1.00,INCOME,OTHER,LOW,false,", "must not be negative"},
		{"bad flow", "2025-01-03,x,1.00,UP,OTHER,LOW,false,", "invalid flow"},
		{"bad flag", "2025-01-03,x,1.00,INCOME,OTHER,LOW,maybe,", "parsing duplicate"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadTransactions(strings.NewReader(TransactionHeader + "\n" + tc.row + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2")
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestReadTransactions_Empty(t *testing.T) {
	got, err := ReadTransactions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWritePayoutItems(t *testing.T) {
	checkIn := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	payouts := []model.ParsedOTAPayout{
		{
			Reference:    "airbnb-2025-03-04",
			PayoutDate:   time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
			PayoutAmount: dec("815.50"),
			Declared:     true,
			Items: []model.ParsedOTABooking{
				{ExternalRef: "HM1", GuestName: "Sam Lee", CheckIn: &checkIn, Gross: dec("1000"), ServiceFee: dec("34.5"), Net: dec("965.5"), Status: model.StatusOkay},
				{ExternalRef: "HM2", Net: dec("-150"), Status: model.StatusCanceled},
			},
		},
		{Reference: "empty"},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePayoutItems(&buf, payouts))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, PayoutItemHeader, lines[0])
	assert.Equal(t, "airbnb-2025-03-04,2025-03-04,815.50,HM1,Sam Lee,2025-02-28,,1000.00,0.00,34.50,0.00,965.50,Okay", lines[1])
	assert.Equal(t, "airbnb-2025-03-04,2025-03-04,815.50,HM2,,,,0.00,0.00,0.00,0.00,-150.00,Canceled", lines[2])
}
