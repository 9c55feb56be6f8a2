package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line-item statuses.
const (
	StatusOkay       = "Okay"
	StatusCanceled   = "Canceled"
	StatusAdjustment = "Adjustment"
)

// ParsedOTABooking is one booking's line-item inside a payout batch.
//
// NetAmount is the platform's authoritative figure. Gross minus commission,
// fee and VAT is expected to land near it but platforms round independently.
type ParsedOTABooking struct {
	ExternalRef  string          `json:"externalRef"`
	GuestName    string          `json:"guestName,omitempty"`
	CheckIn      *time.Time      `json:"checkIn,omitempty"`
	CheckOut     *time.Time      `json:"checkOut,omitempty"`
	Gross        decimal.Decimal `json:"gross"`
	Commission   decimal.Decimal `json:"commission"`
	ServiceFee   decimal.Decimal `json:"serviceFee"`
	VAT          decimal.Decimal `json:"vat"`
	Net          decimal.Decimal `json:"net"`
	Status       string          `json:"status"`
	Kind         string          `json:"kind"` // source row type, e.g. "Reservation"
	PropertyRef  string          `json:"propertyRef,omitempty"`
	PropertyName string          `json:"propertyName,omitempty"`
	PayoutRef    string          `json:"payoutRef"`
	PayoutDate   time.Time       `json:"payoutDate"`
}

// ParsedOTAPayout is a single disbursement grouping one or more line-items.
type ParsedOTAPayout struct {
	Reference    string             `json:"reference"`
	PayoutDate   time.Time          `json:"payoutDate"`
	PayoutAmount decimal.Decimal    `json:"payoutAmount"`
	Declared     bool               `json:"declared"` // PayoutAmount came from the platform
	PropertyRef  string             `json:"propertyRef,omitempty"`
	PropertyName string             `json:"propertyName,omitempty"`
	Items        []ParsedOTABooking `json:"items"`
}

// TotalGross sums the line-items' gross amounts.
func (p ParsedOTAPayout) TotalGross() decimal.Decimal {
	return p.sum(func(b ParsedOTABooking) decimal.Decimal { return b.Gross })
}

// TotalCommission sums the line-items' commissions.
func (p ParsedOTAPayout) TotalCommission() decimal.Decimal {
	return p.sum(func(b ParsedOTABooking) decimal.Decimal { return b.Commission })
}

// TotalServiceFees sums the line-items' service fees.
func (p ParsedOTAPayout) TotalServiceFees() decimal.Decimal {
	return p.sum(func(b ParsedOTABooking) decimal.Decimal { return b.ServiceFee })
}

// TotalNet sums the line-items' net amounts.
func (p ParsedOTAPayout) TotalNet() decimal.Decimal {
	return p.sum(func(b ParsedOTABooking) decimal.Decimal { return b.Net })
}

// EffectiveAmount is the declared payout amount when the platform gave one,
// otherwise the sum of net amounts.
func (p ParsedOTAPayout) EffectiveAmount() decimal.Decimal {
	if p.Declared {
		return p.PayoutAmount
	}
	return p.TotalNet()
}

func (p ParsedOTAPayout) sum(f func(ParsedOTABooking) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, it := range p.Items {
		total = total.Add(f(it))
	}
	return total
}

// OTAImportResult is the outcome of parsing one platform payout export.
type OTAImportResult struct {
	Platform         string            `json:"platform"`
	Payouts          []ParsedOTAPayout `json:"payouts"`
	PeriodStart      *time.Time        `json:"periodStart,omitempty"`
	PeriodEnd        *time.Time        `json:"periodEnd,omitempty"`
	TotalGross       decimal.Decimal   `json:"totalGross"`
	TotalCommission  decimal.Decimal   `json:"totalCommission"`
	TotalServiceFees decimal.Decimal   `json:"totalServiceFees"`
	TotalNet         decimal.Decimal   `json:"totalNet"`
	BookingCount     int               `json:"bookingCount"`
	Warnings         []string          `json:"warnings"`
}

// PersistResult reports what a persistence call wrote.
type PersistResult struct {
	PayoutsCreated int      `json:"payoutsCreated"`
	ItemsCreated   int      `json:"itemsCreated"`
	ItemsMatched   int      `json:"itemsMatched"`
	Warnings       []string `json:"warnings"`
}
