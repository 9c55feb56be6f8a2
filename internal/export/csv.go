// Package export writes parsed import results as CSV and reads transaction
// files back for force-importing.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
)

// TransactionHeader is the CSV header for transaction files.
const TransactionHeader = "date,description,amount,flow,category,confidence,duplicate,raw_line"

// PayoutItemHeader is the CSV header for payout line-item files.
const PayoutItemHeader = "payout_reference,payout_date,payout_amount,external_ref,guest_name,check_in,check_out,gross,commission,service_fee,vat,net,status"

const (
	dateFormat = "2006-01-02"

	numTxnFields = 8
	colDate      = 0
	colDesc      = 1
	colAmount    = 2
	colFlow      = 3
	colCategory  = 4
	colConf      = 5
	colDuplicate = 6
	colRaw       = 7
)

// WriteTransactions writes txns with a header row.
func WriteTransactions(w io.Writer, txns []model.ParsedTransaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(TransactionHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalTransaction converts a transaction to a CSV row.
func MarshalTransaction(t model.ParsedTransaction) []string {
	row := make([]string, numTxnFields)
	row[colDate] = t.Date.Format(dateFormat)
	row[colDesc] = t.Description
	row[colAmount] = t.Amount.StringFixed(2)
	row[colFlow] = string(t.Flow)
	row[colCategory] = string(t.Category)
	row[colConf] = string(t.Confidence)
	row[colDuplicate] = strconv.FormatBool(t.Duplicate)
	row[colRaw] = t.RawLine
	return row
}

// UnmarshalTransaction converts a CSV row to a transaction.
func UnmarshalTransaction(record []string) (model.ParsedTransaction, error) {
	if len(record) != numTxnFields {
		return model.ParsedTransaction{}, fmt.Errorf("expected %d fields, got %d", numTxnFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}
	if amount.IsNegative() {
		return model.ParsedTransaction{}, fmt.Errorf("amount %q must not be negative", record[colAmount])
	}
	flow := model.FlowDirection(record[colFlow])
	if flow != model.FlowIncome && flow != model.FlowExpense {
		return model.ParsedTransaction{}, fmt.Errorf("invalid flow %q", record[colFlow])
	}
	dup, err := strconv.ParseBool(record[colDuplicate])
	if err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("parsing duplicate %q: %w", record[colDuplicate], err)
	}

	return model.ParsedTransaction{
		Date:        date,
		Description: record[colDesc],
		Amount:      amount,
		Flow:        flow,
		Category:    model.Category(record[colCategory]),
		Confidence:  model.Confidence(record[colConf]),
		Duplicate:   dup,
		RawLine:     record[colRaw],
	}, nil
}

// ReadTransactions reads a file written by WriteTransactions.
func ReadTransactions(r io.Reader) ([]model.ParsedTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numTxnFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	txns := make([]model.ParsedTransaction, 0, len(records)-1)
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// WritePayoutItems writes one row per line-item, prefixed with its batch.
func WritePayoutItems(w io.Writer, payouts []model.ParsedOTAPayout) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(PayoutItemHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	n := 1
	for _, p := range payouts {
		for _, it := range p.Items {
			n++
			if err := cw.Write(marshalItem(p, it)); err != nil {
				return fmt.Errorf("writing row %d: %w", n, err)
			}
		}
	}
	return cw.Error()
}

func marshalItem(p model.ParsedOTAPayout, it model.ParsedOTABooking) []string {
	return []string{
		p.Reference,
		formatDate(p.PayoutDate),
		p.EffectiveAmount().StringFixed(2),
		it.ExternalRef,
		it.GuestName,
		formatDatePtr(it.CheckIn),
		formatDatePtr(it.CheckOut),
		it.Gross.StringFixed(2),
		it.Commission.StringFixed(2),
		it.ServiceFee.StringFixed(2),
		it.VAT.StringFixed(2),
		it.Net.StringFixed(2),
		it.Status,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}
