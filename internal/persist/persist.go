// Package persist writes parsed statements and payout batches to storage.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LebsNeo/mrmoney-sub000/internal/logger"
	"github.com/LebsNeo/mrmoney-sub000/internal/model"
)

// ErrBatchFailed wraps any storage error that aborted a batch. Nothing of
// the failed batch was written.
var ErrBatchFailed = errors.New("batch not persisted")

// PayoutStore writes a payout header and its line-items in one atomic unit.
type PayoutStore interface {
	CreatePayoutWithItems(ctx context.Context, payout model.PayoutRecord, items []model.PayoutItemRecord) error
}

// TransactionStore writes bank transactions in one atomic unit.
type TransactionStore interface {
	CreateTransactions(ctx context.Context, scope model.Scope, txns []model.ParsedTransaction) (int, error)
}

// Persister builds storage records from parsed batches.
type Persister struct {
	payouts PayoutStore
	txns    TransactionStore
	newID   func() string
}

// New creates a Persister. Either store may be nil if unused.
func New(payouts PayoutStore, txns TransactionStore) *Persister {
	return &Persister{payouts: payouts, txns: txns, newID: uuid.NewString}
}

// Persist writes one payout batch. Header totals are summed from the items;
// the payout amount is the platform's declared figure when it gave one.
func (p *Persister) Persist(ctx context.Context, platform string, scope model.Scope, payout model.ParsedOTAPayout, matches map[string]string) (model.PersistResult, error) {
	header := model.PayoutRecord{
		ID:              p.newID(),
		Platform:        platform,
		PropertyID:      scope.PropertyID,
		OrganisationID:  scope.OrganisationID,
		Reference:       payout.Reference,
		PayoutDate:      payout.PayoutDate,
		PayoutAmount:    payout.EffectiveAmount(),
		TotalGross:      payout.TotalGross(),
		TotalCommission: payout.TotalCommission(),
		TotalFees:       payout.TotalServiceFees().Add(vatTotal(payout)),
		TotalNet:        payout.TotalNet(),
	}

	res := model.PersistResult{Warnings: []string{}}
	items := make([]model.PayoutItemRecord, 0, len(payout.Items))
	for _, it := range payout.Items {
		bookingID, ok := "", false
		if it.ExternalRef != "" {
			bookingID, ok = matches[it.ExternalRef]
		}
		rec := model.PayoutItemRecord{
			ID:          p.newID(),
			PayoutID:    header.ID,
			BookingID:   bookingID,
			Unmatched:   !ok || bookingID == "",
			ExternalRef: it.ExternalRef,
			GuestName:   it.GuestName,
			CheckIn:     it.CheckIn,
			CheckOut:    it.CheckOut,
			Gross:       it.Gross,
			Commission:  it.Commission,
			ServiceFee:  it.ServiceFee,
			VAT:         it.VAT,
			Net:         it.Net,
			Status:      it.Status,
		}
		if rec.Unmatched {
			rec.BookingID = ""
			if it.Status == model.StatusOkay {
				res.Warnings = append(res.Warnings, fmt.Sprintf("payout %s: %s has no matching booking", payout.Reference, displayRef(it.ExternalRef)))
			}
		} else {
			res.ItemsMatched++
		}
		items = append(items, rec)
	}

	if err := p.payouts.CreatePayoutWithItems(ctx, header, items); err != nil {
		return model.PersistResult{Warnings: res.Warnings}, fmt.Errorf("%w: payout %s: %w", ErrBatchFailed, payout.Reference, err)
	}
	res.PayoutsCreated = 1
	res.ItemsCreated = len(items)

	logger.FromContext(ctx).Info().
		Str("platform", platform).
		Str("payout", payout.Reference).
		Int("items", res.ItemsCreated).
		Int("matched", res.ItemsMatched).
		Msg("payout persisted")
	return res, nil
}

// PersistAll writes each batch in its own unit and stops at the first
// failure. Batches committed before the failure stay committed and are
// reflected in the returned counts.
func (p *Persister) PersistAll(ctx context.Context, platform string, scope model.Scope, payouts []model.ParsedOTAPayout, matches map[string]string) (model.PersistResult, error) {
	total := model.PersistResult{Warnings: []string{}}
	for _, payout := range payouts {
		res, err := p.Persist(ctx, platform, scope, payout, matches)
		total.Warnings = append(total.Warnings, res.Warnings...)
		if err != nil {
			return total, err
		}
		total.PayoutsCreated += res.PayoutsCreated
		total.ItemsCreated += res.ItemsCreated
		total.ItemsMatched += res.ItemsMatched
	}
	return total, nil
}

// PersistTransactions writes a statement's transactions as one unit.
func (p *Persister) PersistTransactions(ctx context.Context, scope model.Scope, txns []model.ParsedTransaction) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}
	n, err := p.txns.CreateTransactions(ctx, scope, txns)
	if err != nil {
		return 0, fmt.Errorf("%w: %d transactions: %w", ErrBatchFailed, len(txns), err)
	}
	logger.FromContext(ctx).Info().Str("property", scope.PropertyID).Int("count", n).Msg("transactions persisted")
	return n, nil
}

func vatTotal(p model.ParsedOTAPayout) decimal.Decimal {
	total := decimal.Zero
	for _, it := range p.Items {
		total = total.Add(it.VAT)
	}
	return total
}

func displayRef(ref string) string {
	if ref == "" {
		return "line-item without reference"
	}
	return "booking " + ref
}
