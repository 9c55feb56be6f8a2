package ota

import (
	"fmt"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/normalize"
)

// BookingComPlatform parses the Booking.com payout export. Two row kinds
// share a statement descriptor: one "(Payout)" row with the disbursed total
// and the property, and one "Reservation" row per booking.
type BookingComPlatform struct{}

var (
	bcColType       = []string{"type", "row type", "transaction type"}
	bcColDescriptor = []string{"statement descriptor", "payout id", "payout reference"}
	bcColRef        = []string{"reference number", "booking number", "reservation number", "reference"}
	bcColCheckIn    = []string{"check-in", "check-in date", "check in", "arrival"}
	bcColCheckOut   = []string{"check-out", "check-out date", "checkout", "check out", "departure"}
	bcColGuest      = []string{"guest name", "guest", "booker name"}
	bcColStatus     = []string{"reservation status", "status"}
	bcColGross      = []string{"gross amount", "amount", "original amount"}
	bcColCommission = []string{"commission", "commission amount"}
	bcColFee        = []string{"payments service fee", "payment service fee", "service fee"}
	bcColVAT        = []string{"vat", "vat amount"}
	bcColNet        = []string{"payable amount", "transaction amount", "net amount", "net"}
	bcColPayout     = []string{"payout amount", "payout"}
	bcColPayoutDate = []string{"payout date", "date"}
	bcColPropID     = []string{"property id", "hotel id"}
	bcColPropName   = []string{"property name", "hotel name"}
)

// Name returns the platform key.
func (p *BookingComPlatform) Name() string { return "bookingcom" }

type bcBatch struct {
	payout    model.ParsedOTAPayout
	hasHeader bool
	firstDate string
}

// Parse groups rows by statement descriptor.
func (p *BookingComPlatform) Parse(text string) (model.OTAImportResult, error) {
	cols, records, err := readTable(text)
	if err != nil {
		return model.OTAImportResult{}, err
	}

	batches := make(map[string]*bcBatch)
	var order []string
	batchFor := func(desc string) *bcBatch {
		b, ok := batches[desc]
		if !ok {
			b = &bcBatch{payout: model.ParsedOTAPayout{Reference: desc}}
			batches[desc] = b
			order = append(order, desc)
		}
		return b
	}

	reservations := 0
	var refless []string
	for _, rec := range records {
		kind := lower(cols.get(rec, bcColType...))
		desc := cols.get(rec, bcColDescriptor...)

		switch kind {
		case "(payout)", "payout":
			b := batchFor(desc)
			amount, ok := normalize.ParseAmount(cols.get(rec, bcColPayout...))
			if !ok {
				amount, ok = normalize.ParseAmount(cols.get(rec, bcColNet...))
			}
			if ok {
				b.payout.PayoutAmount = b.payout.PayoutAmount.Add(amount)
				b.payout.Declared = true
			}
			if !b.hasHeader {
				if d, ok := parseDate(cols.get(rec, bcColPayoutDate...)); ok {
					b.payout.PayoutDate = d
				}
				b.payout.PropertyRef = cols.get(rec, bcColPropID...)
				b.payout.PropertyName = cols.get(rec, bcColPropName...)
			}
			b.hasHeader = true

		case "reservation":
			item := p.reservation(cols, rec)
			if item.ExternalRef == "" {
				refless = append(refless, fmt.Sprintf("reservation in %q has no reference number; it cannot be matched to a booking", desc))
			}
			reservations++
			b := batchFor(desc)
			if len(b.payout.Items) == 0 {
				b.firstDate = cols.get(rec, bcColPayoutDate...)
			}
			b.payout.Items = append(b.payout.Items, item)
		}
	}

	warnings := refless
	payouts := make([]model.ParsedOTAPayout, 0, len(order))
	for _, desc := range order {
		b := batches[desc]
		if !b.hasHeader {
			if d, ok := parseDate(b.firstDate); ok {
				b.payout.PayoutDate = d
			}
			b.payout.PayoutAmount = b.payout.TotalNet()
			if len(b.payout.Items) > 0 {
				b.payout.PropertyRef = b.payout.Items[0].PropertyRef
				b.payout.PropertyName = b.payout.Items[0].PropertyName
			}
			warnings = append(warnings, fmt.Sprintf("statement descriptor %q has reservations but no (Payout) row; payout date taken from its first reservation", desc))
		}
		if len(b.payout.Items) == 0 {
			warnings = append(warnings, fmt.Sprintf("payout %q has no reservation rows", desc))
		}
		for i := range b.payout.Items {
			b.payout.Items[i].PayoutRef = b.payout.Reference
			if b.payout.Items[i].PayoutDate.IsZero() {
				b.payout.Items[i].PayoutDate = b.payout.PayoutDate
			}
		}
		payouts = append(payouts, b.payout)
	}
	return summarise(p.Name(), payouts, reservations, warnings), nil
}

// reservation builds a line-item. Commission, service fee and VAT are kept
// as magnitudes whatever sign the export uses.
func (p *BookingComPlatform) reservation(cols columns, rec []string) model.ParsedOTABooking {
	gross := normalize.AmountOrZero(cols.get(rec, bcColGross...)).Abs()
	commission := normalize.AmountOrZero(cols.get(rec, bcColCommission...)).Abs()
	fee := normalize.AmountOrZero(cols.get(rec, bcColFee...)).Abs()
	vat := normalize.AmountOrZero(cols.get(rec, bcColVAT...)).Abs()

	net, ok := normalize.ParseAmount(cols.get(rec, bcColNet...))
	if !ok {
		net = gross.Sub(commission).Sub(fee).Sub(vat)
	}

	item := model.ParsedOTABooking{
		ExternalRef:  cols.get(rec, bcColRef...),
		GuestName:    cols.get(rec, bcColGuest...),
		CheckIn:      optionalDate(cols.get(rec, bcColCheckIn...)),
		CheckOut:     optionalDate(cols.get(rec, bcColCheckOut...)),
		Gross:        gross,
		Commission:   commission,
		ServiceFee:   fee,
		VAT:          vat,
		Net:          net,
		Status:       normaliseStatus(cols.get(rec, bcColStatus...)),
		Kind:         "Reservation",
		PropertyRef:  cols.get(rec, bcColPropID...),
		PropertyName: cols.get(rec, bcColPropName...),
	}
	if d, ok := parseDate(cols.get(rec, bcColPayoutDate...)); ok {
		item.PayoutDate = d
	}
	return item
}
