package ota

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/normalize"
)

// LekkerslaapPlatform parses the LekkeSlaap ledger statement. Every row is a
// single ledger entry for one booking; the description says what kind:
//
//	Date,Booking Reference,Description,Amount,Guest,Check In,Check Out
//	2025-01-03,LS-1001,Guest payment,2000.00,T Mokoena,2025-01-10,2025-01-12
//	2025-01-03,LS-1001,Commission,-300.00,,,
//	2025-01-03,LS-1001,Payment handling fee,-40.00,,,
//	2025-01-08,LS-1001,Payout,-1660.00,,,
//
// Entries are folded per booking (net = guest payment - commission -
// handling fee) and the bookings are batched by payout date.
type LekkerslaapPlatform struct{}

var (
	lsColDate     = []string{"date", "transaction date"}
	lsColRef      = []string{"booking reference", "booking ref", "reference", "booking id"}
	lsColDesc     = []string{"description", "type", "details"}
	lsColAmount   = []string{"amount", "value"}
	lsColGuest    = []string{"guest", "guest name"}
	lsColCheckIn  = []string{"check in", "check-in", "arrival"}
	lsColCheckOut = []string{"check out", "check-out", "departure"}
)

// Name returns the platform key.
func (p *LekkerslaapPlatform) Name() string { return "lekkerslaap" }

type ledgerBooking struct {
	ref          string
	guest        string
	checkIn      *time.Time
	checkOut     *time.Time
	guestPayment decimal.Decimal
	commission   decimal.Decimal
	handlingFee  decimal.Decimal
	payoutDate   *time.Time
	lastDate     time.Time
}

// Parse folds ledger entries into bookings and batches.
func (p *LekkerslaapPlatform) Parse(text string) (model.OTAImportResult, error) {
	cols, records, err := readTable(text)
	if err != nil {
		return model.OTAImportResult{}, err
	}

	byRef := make(map[string]*ledgerBooking)
	var order []string
	for _, rec := range records {
		ref := cols.get(rec, lsColRef...)
		desc := lower(cols.get(rec, lsColDesc...))
		if ref == "" || strings.Contains(desc, "opening balance") || strings.Contains(desc, "closing balance") {
			continue
		}
		date, ok := parseDate(cols.get(rec, lsColDate...))
		if !ok {
			continue
		}
		amount, ok := normalize.ParseAmount(cols.get(rec, lsColAmount...))
		if !ok {
			continue
		}

		b, seen := byRef[ref]
		if !seen {
			b = &ledgerBooking{ref: ref}
			byRef[ref] = b
			order = append(order, ref)
		}
		b.lastDate = date
		if g := cols.get(rec, lsColGuest...); g != "" && b.guest == "" {
			b.guest = g
		}
		if b.checkIn == nil {
			b.checkIn = optionalDate(cols.get(rec, lsColCheckIn...))
		}
		if b.checkOut == nil {
			b.checkOut = optionalDate(cols.get(rec, lsColCheckOut...))
		}

		switch {
		case strings.Contains(desc, "guest payment"):
			b.guestPayment = b.guestPayment.Add(amount.Abs())
		case strings.Contains(desc, "payment handling fee"):
			b.handlingFee = b.handlingFee.Add(amount.Abs())
		case strings.Contains(desc, "commission"):
			b.commission = b.commission.Add(amount.Abs())
		case strings.Contains(desc, "payout"):
			d := date
			b.payoutDate = &d
		}
	}

	batches := make(map[string]*model.ParsedOTAPayout)
	var keys []string
	for _, ref := range order {
		b := byRef[ref]
		payoutDate := b.lastDate
		if b.payoutDate != nil {
			payoutDate = *b.payoutDate
		}
		key := payoutDate.Format("2006-01-02")
		batch, ok := batches[key]
		if !ok {
			batch = &model.ParsedOTAPayout{
				Reference:  p.Name() + "-" + key,
				PayoutDate: payoutDate,
			}
			batches[key] = batch
			keys = append(keys, key)
		}
		batch.Items = append(batch.Items, model.ParsedOTABooking{
			ExternalRef: b.ref,
			GuestName:   b.guest,
			CheckIn:     b.checkIn,
			CheckOut:    b.checkOut,
			Gross:       b.guestPayment,
			Commission:  b.commission,
			ServiceFee:  b.handlingFee,
			VAT:         decimal.Zero,
			Net:         b.guestPayment.Sub(b.commission).Sub(b.handlingFee),
			Status:      model.StatusOkay,
			Kind:        "Reservation",
			PayoutRef:   batch.Reference,
			PayoutDate:  payoutDate,
		})
	}

	sort.Strings(keys)
	payouts := make([]model.ParsedOTAPayout, 0, len(keys))
	for _, k := range keys {
		b := batches[k]
		b.PayoutAmount = b.TotalNet()
		payouts = append(payouts, *b)
	}
	return summarise(p.Name(), payouts, len(order), nil), nil
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
