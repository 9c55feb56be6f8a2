package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking is an existing reservation record owned outside the ingestion engine.
type Booking struct {
	ID          string
	PropertyID  string
	ExternalRef string
	GuestName   string
	CheckIn     time.Time
	CheckOut    time.Time
}

// PayoutRecord is the header row written for one payout batch.
type PayoutRecord struct {
	ID              string
	Platform        string
	PropertyID      string
	OrganisationID  string
	Reference       string
	PayoutDate      time.Time
	PayoutAmount    decimal.Decimal
	TotalGross      decimal.Decimal
	TotalCommission decimal.Decimal
	TotalFees       decimal.Decimal
	TotalNet        decimal.Decimal
}

// PayoutItemRecord is one persisted line-item. BookingID is empty and
// Unmatched is true when no reservation could be linked.
type PayoutItemRecord struct {
	ID          string
	PayoutID    string
	BookingID   string
	Unmatched   bool
	ExternalRef string
	GuestName   string
	CheckIn     *time.Time
	CheckOut    *time.Time
	Gross       decimal.Decimal
	Commission  decimal.Decimal
	ServiceFee  decimal.Decimal
	VAT         decimal.Decimal
	Net         decimal.Decimal
	Status      string
}
