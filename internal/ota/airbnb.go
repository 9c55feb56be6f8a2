package ota

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/normalize"
)

// AirbnbPlatform parses the Airbnb transaction history export. Rows are
// typed; all rows that share one literal Date cell form one batch.
type AirbnbPlatform struct{}

var (
	abColDate      = []string{"date"}
	abColType      = []string{"type"}
	abColCode      = []string{"confirmation code", "confirmation", "reference"}
	abColStart     = []string{"start date", "check-in"}
	abColNights    = []string{"nights"}
	abColGuest     = []string{"guest", "guest name"}
	abColListing   = []string{"listing"}
	abColAmount    = []string{"amount"}
	abColPaidOut   = []string{"paid out"}
	abColFee       = []string{"service fee", "host fee"}
	abColGross     = []string{"gross earnings"}
	abColReference = []string{"reference code"}
)

var airbnbDatePatterns = []string{normalize.MonthDayYear, normalize.ISODate}

// Name returns the platform key.
func (p *AirbnbPlatform) Name() string { return "airbnb" }

// Parse batches rows by their raw Date cell. Payout rows supply the declared
// amount; Reservation rows are counted as bookings; Cancellation Fee rows
// are kept as Canceled items; anything else becomes an Adjustment item.
func (p *AirbnbPlatform) Parse(text string) (model.OTAImportResult, error) {
	cols, records, err := readTable(text)
	if err != nil {
		return model.OTAImportResult{}, err
	}

	batches := make(map[string]*model.ParsedOTAPayout)
	var order []string
	var warnings []string
	badDates := make(map[string]bool)

	batchFor := func(raw string) *model.ParsedOTAPayout {
		b, ok := batches[raw]
		if ok {
			return b
		}
		b = &model.ParsedOTAPayout{Reference: "airbnb-" + raw}
		if d, ok := parseDate(raw, airbnbDatePatterns...); ok {
			b.PayoutDate = d
			b.Reference = "airbnb-" + d.Format("2006-01-02")
		} else if !badDates[raw] {
			badDates[raw] = true
			warnings = append(warnings, fmt.Sprintf("unparseable payout date %q", raw))
		}
		batches[raw] = b
		order = append(order, raw)
		return b
	}

	reservations := 0
	for _, rec := range records {
		raw := cols.get(rec, abColDate...)
		kind := cols.get(rec, abColType...)
		if raw == "" || kind == "" {
			continue
		}

		switch lower(kind) {
		case "payout":
			amount, ok := normalize.ParseAmount(cols.get(rec, abColPaidOut...))
			if !ok {
				continue
			}
			b := batchFor(raw)
			b.PayoutAmount = b.PayoutAmount.Add(amount.Abs())
			b.Declared = true
			if ref := cols.get(rec, abColReference...); ref != "" {
				b.PropertyRef = ref
			}

		case "reservation":
			item, ok := p.item(cols, rec, kind)
			if !ok {
				continue
			}
			if g, ok := normalize.ParseAmount(cols.get(rec, abColGross...)); ok {
				item.Gross = g
			} else {
				item.Gross = item.Net.Abs().Add(item.ServiceFee)
			}
			item.Status = model.StatusOkay
			reservations++
			b := batchFor(raw)
			b.Items = append(b.Items, item)

		case "cancellation fee":
			item, ok := p.item(cols, rec, kind)
			if !ok {
				continue
			}
			if g, ok := normalize.ParseAmount(cols.get(rec, abColGross...)); ok {
				item.Gross = g
			}
			item.Status = model.StatusCanceled
			b := batchFor(raw)
			b.Items = append(b.Items, item)

		default:
			item, ok := p.item(cols, rec, kind)
			if !ok {
				continue
			}
			if g, ok := normalize.ParseAmount(cols.get(rec, abColGross...)); ok {
				item.Gross = g
			}
			item.Status = model.StatusAdjustment
			b := batchFor(raw)
			b.Items = append(b.Items, item)
		}
	}

	payouts := make([]model.ParsedOTAPayout, 0, len(order))
	for _, raw := range order {
		b := batches[raw]
		if !b.Declared {
			b.PayoutAmount = b.TotalNet()
		}
		for i := range b.Items {
			b.Items[i].PayoutRef = b.Reference
			b.Items[i].PayoutDate = b.PayoutDate
		}
		payouts = append(payouts, *b)
	}
	return summarise(p.Name(), payouts, reservations, warnings), nil
}

// item reads the fields common to every non-payout row. Rows without a
// parseable amount are skipped.
func (p *AirbnbPlatform) item(cols columns, rec []string, kind string) (model.ParsedOTABooking, bool) {
	net, ok := normalize.ParseAmount(cols.get(rec, abColAmount...))
	if !ok {
		return model.ParsedOTABooking{}, false
	}
	item := model.ParsedOTABooking{
		ExternalRef:  cols.get(rec, abColCode...),
		GuestName:    cols.get(rec, abColGuest...),
		CheckIn:      optionalDate(cols.get(rec, abColStart...), airbnbDatePatterns...),
		Gross:        decimal.Zero,
		ServiceFee:   normalize.AmountOrZero(cols.get(rec, abColFee...)).Abs(),
		Net:          net,
		Kind:         kind,
		PropertyName: cols.get(rec, abColListing...),
	}
	if item.CheckIn != nil {
		if n, ok := normalize.ParseAmount(cols.get(rec, abColNights...)); ok && n.IsPositive() {
			out := item.CheckIn.AddDate(0, 0, int(n.IntPart()))
			item.CheckOut = &out
		}
	}
	return item, true
}
