package importer

import (
	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/normalize"
)

// FNBDialect parses FNB cheque account exports:
//
//	Date,Description,Amount,Balance
//	10 Jan 2025,POS PURCHASE MAKRO,-1234.50,8765.50
type FNBDialect struct{}

const (
	fnbColDate   = 0
	fnbColDesc   = 1
	fnbColAmount = 2
)

// Name returns the dialect key.
func (d *FNBDialect) Name() string { return "fnb" }

// ParseRow maps one FNB line. The amount column is already signed.
func (d *FNBDialect) ParseRow(rec []string) (model.BankRow, bool) {
	date, ok := normalize.ParseDate(field(rec, fnbColDate), normalize.DayMonthNameYear)
	if !ok {
		return model.BankRow{}, false
	}
	amount, ok := normalize.ParseAmount(field(rec, fnbColAmount))
	if !ok {
		return model.BankRow{}, false
	}
	return model.BankRow{
		Date:        date,
		Description: field(rec, fnbColDesc),
		Amount:      amount,
	}, true
}
