// Package dedup flags imported bank rows that probably exist already.
//
// A row is a likely duplicate of a stored transaction at the same property
// when the dates are at most one calendar day apart and the amounts at most
// one currency unit apart. Both bounds are inclusive. This is a heuristic:
// two genuinely different payments of similar size on adjacent days collide.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/normalize"
)

// WindowDays is the date tolerance in calendar days.
const WindowDays = 1

// AmountTolerance is the allowed absolute amount difference.
var AmountTolerance = decimal.NewFromInt(1)

// Store answers bounded range queries over persisted transactions.
type Store interface {
	FindTransactionsInWindow(ctx context.Context, propertyID string, from, to time.Time, minAmount, maxAmount decimal.Decimal) ([]model.StoredTransaction, error)
}

// Detector checks rows against the store.
type Detector struct {
	store Store
}

// New creates a Detector.
func New(store Store) *Detector {
	return &Detector{store: store}
}

// IsDuplicate checks a single amount/date pair.
func (d *Detector) IsDuplicate(ctx context.Context, amount decimal.Decimal, date time.Time, propertyID string) (bool, error) {
	flags, err := d.Check(ctx, propertyID, []model.ParsedTransaction{{Date: date, Amount: amount.Abs()}})
	if err != nil {
		return false, err
	}
	return flags[0], nil
}

// Check flags every transaction that has a stored neighbour. It issues one
// range query covering the whole batch and compares in memory.
func (d *Detector) Check(ctx context.Context, propertyID string, txns []model.ParsedTransaction) ([]bool, error) {
	flags := make([]bool, len(txns))
	if len(txns) == 0 {
		return flags, nil
	}

	from, to := txns[0].Date, txns[0].Date
	minAmt, maxAmt := txns[0].Amount, txns[0].Amount
	for _, t := range txns[1:] {
		if t.Date.Before(from) {
			from = t.Date
		}
		if t.Date.After(to) {
			to = t.Date
		}
		minAmt = decimal.Min(minAmt, t.Amount)
		maxAmt = decimal.Max(maxAmt, t.Amount)
	}

	existing, err := d.store.FindTransactionsInWindow(ctx, propertyID,
		from.AddDate(0, 0, -WindowDays), to.AddDate(0, 0, WindowDays),
		minAmt.Sub(AmountTolerance), maxAmt.Add(AmountTolerance))
	if err != nil {
		return nil, fmt.Errorf("querying transactions for property %s: %w", propertyID, err)
	}

	for i, t := range txns {
		for _, e := range existing {
			if Near(t.Date, t.Amount, e.Date, e.Amount) {
				flags[i] = true
				break
			}
		}
	}
	return flags, nil
}

// Near reports whether two (date, amount) pairs fall within the tolerances.
func Near(aDate time.Time, aAmount decimal.Decimal, bDate time.Time, bAmount decimal.Decimal) bool {
	if normalize.DaysApart(aDate, bDate) > WindowDays {
		return false
	}
	return aAmount.Sub(bAmount).Abs().LessThanOrEqual(AmountTolerance)
}
