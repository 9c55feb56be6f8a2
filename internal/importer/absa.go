package importer

import (
	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/normalize"
)

// ABSADialect parses ABSA exports with unsigned debit and credit columns:
//
//	Date,Description,Debit,Credit,Balance
//	10/01/2025,DEPOSIT GUEST,,500.00,1500.00
type ABSADialect struct{}

const (
	absaColDate   = 0
	absaColDesc   = 1
	absaColDebit  = 2
	absaColCredit = 3
)

// Name returns the dialect key.
func (d *ABSADialect) Name() string { return "absa" }

// ParseRow maps one ABSA line. Credits become positive, debits negative.
func (d *ABSADialect) ParseRow(rec []string) (model.BankRow, bool) {
	date, ok := normalize.ParseDate(field(rec, absaColDate), normalize.DayMonthYear)
	if !ok {
		return model.BankRow{}, false
	}
	amount, ok := debitCredit(field(rec, absaColDebit), field(rec, absaColCredit))
	if !ok {
		return model.BankRow{}, false
	}
	return model.BankRow{
		Date:        date,
		Description: field(rec, absaColDesc),
		Amount:      amount,
	}, true
}
