package importer

import (
	"strings"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/normalize"
)

// CapitecDialect parses Capitec business exports:
//
//	Date,Description,Amount,Reference
//	10/01/2025,Payment Received,500.00,INV 221
type CapitecDialect struct{}

const (
	capitecColDate   = 0
	capitecColDesc   = 1
	capitecColAmount = 2
	capitecColRef    = 3
)

// Name returns the dialect key.
func (d *CapitecDialect) Name() string { return "capitec" }

// ParseRow maps one Capitec line. A non-empty reference is always appended
// to the description.
func (d *CapitecDialect) ParseRow(rec []string) (model.BankRow, bool) {
	date, ok := normalize.ParseDate(field(rec, capitecColDate), normalize.DayMonthYear)
	if !ok {
		return model.BankRow{}, false
	}
	amount, ok := normalize.ParseAmount(field(rec, capitecColAmount))
	if !ok {
		return model.BankRow{}, false
	}
	desc := field(rec, capitecColDesc)
	if ref := field(rec, capitecColRef); ref != "" {
		desc = strings.TrimSpace(desc + " " + ref)
	}
	return model.BankRow{Date: date, Description: desc, Amount: amount}, true
}
