package importer

import (
	"strings"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/normalize"
)

// StandardBankDialect parses Standard Bank exports. Only rows whose first
// cell is the HIST marker carry transactions; the rest are account headers,
// opening and closing balances.
//
//	HIST,10/01/2025,CREDIT TRANSFER,500.00,GUEST 4471
type StandardBankDialect struct{}

const (
	standardBankMarker    = "HIST"
	standardBankColMarker = 0
	standardBankColDate   = 1
	standardBankColDesc   = 2
	standardBankColAmount = 3
	standardBankColRef    = 4
)

// Name returns the dialect key.
func (d *StandardBankDialect) Name() string { return "standardbank" }

// ParseRow maps one HIST line. The reference is appended to the description
// unless it is purely numeric.
func (d *StandardBankDialect) ParseRow(rec []string) (model.BankRow, bool) {
	if !strings.EqualFold(field(rec, standardBankColMarker), standardBankMarker) {
		return model.BankRow{}, false
	}
	date, ok := normalize.ParseDate(field(rec, standardBankColDate), normalize.DayMonthYear)
	if !ok {
		return model.BankRow{}, false
	}
	amount, ok := normalize.ParseAmount(field(rec, standardBankColAmount))
	if !ok {
		return model.BankRow{}, false
	}
	desc := field(rec, standardBankColDesc)
	if ref := field(rec, standardBankColRef); ref != "" && !isNumeric(ref) {
		desc = strings.TrimSpace(desc + " " + ref)
	}
	return model.BankRow{Date: date, Description: desc, Amount: amount}, true
}
