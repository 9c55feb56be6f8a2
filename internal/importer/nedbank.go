package importer

import (
	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/normalize"
)

// NedbankDialect parses Nedbank exports. Same debit/credit convention as
// ABSA, with year-first dates:
//
//	2025/01/10,SALARY J DLAMINI,4500.00,,12000.00
type NedbankDialect struct{}

const (
	nedbankColDate   = 0
	nedbankColDesc   = 1
	nedbankColDebit  = 2
	nedbankColCredit = 3
)

// Name returns the dialect key.
func (d *NedbankDialect) Name() string { return "nedbank" }

// ParseRow maps one Nedbank line.
func (d *NedbankDialect) ParseRow(rec []string) (model.BankRow, bool) {
	date, ok := normalize.ParseDate(field(rec, nedbankColDate), normalize.YearMonthDay)
	if !ok {
		return model.BankRow{}, false
	}
	amount, ok := debitCredit(field(rec, nedbankColDebit), field(rec, nedbankColCredit))
	if !ok {
		return model.BankRow{}, false
	}
	return model.BankRow{
		Date:        date,
		Description: field(rec, nedbankColDesc),
		Amount:      amount,
	}, true
}
