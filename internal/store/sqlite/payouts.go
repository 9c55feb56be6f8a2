package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
)

// CreatePayoutWithItems writes the payout header and all its line-items in
// one database transaction.
func (s *Store) CreatePayoutWithItems(ctx context.Context, p model.PayoutRecord, items []model.PayoutItemRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ota_payouts
			(id, platform, property_id, organisation_id, reference, payout_date,
			 payout_amount_cents, total_gross_cents, total_commission_cents, total_fees_cents, total_net_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Platform, p.PropertyID, p.OrganisationID, p.Reference, nullDateValue(p.PayoutDate),
		toCents(p.PayoutAmount), toCents(p.TotalGross), toCents(p.TotalCommission), toCents(p.TotalFees), toCents(p.TotalNet))
	if err != nil {
		return fmt.Errorf("inserting payout %s: %w", p.Reference, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ota_payout_items
			(id, payout_id, booking_id, unmatched, external_ref, guest_name, check_in, check_out,
			 gross_cents, commission_cents, service_fee_cents, vat_cents, net_cents, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing item insert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		_, err := stmt.ExecContext(ctx,
			it.ID, p.ID, nullString(it.BookingID), it.Unmatched, it.ExternalRef, it.GuestName,
			nullDate(it.CheckIn), nullDate(it.CheckOut),
			toCents(it.Gross), toCents(it.Commission), toCents(it.ServiceFee), toCents(it.VAT), toCents(it.Net), it.Status)
		if err != nil {
			return fmt.Errorf("inserting item %s of payout %s: %w", it.ExternalRef, p.Reference, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing payout %s: %w", p.Reference, err)
	}
	return nil
}

// Payouts lists the property's payout headers, newest first.
func (s *Store) Payouts(ctx context.Context, propertyID string) ([]model.PayoutRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform, property_id, organisation_id, reference, payout_date,
		       payout_amount_cents, total_gross_cents, total_commission_cents, total_fees_cents, total_net_cents
		FROM ota_payouts
		WHERE property_id = ?
		ORDER BY payout_date DESC, rowid`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("querying payouts: %w", err)
	}
	defer rows.Close()

	var out []model.PayoutRecord
	for rows.Next() {
		var (
			p                              model.PayoutRecord
			date                           sql.NullString
			amount, gross, comm, fees, net int64
		)
		if err := rows.Scan(&p.ID, &p.Platform, &p.PropertyID, &p.OrganisationID, &p.Reference, &date,
			&amount, &gross, &comm, &fees, &net); err != nil {
			return nil, fmt.Errorf("scanning payout: %w", err)
		}
		d, err := scanNullDate(date)
		if err != nil {
			return nil, err
		}
		if d != nil {
			p.PayoutDate = *d
		}
		p.PayoutAmount = fromCents(amount)
		p.TotalGross = fromCents(gross)
		p.TotalCommission = fromCents(comm)
		p.TotalFees = fromCents(fees)
		p.TotalNet = fromCents(net)
		out = append(out, p)
	}
	return out, rows.Err()
}

// PayoutItems lists the line-items of one payout in insertion order.
func (s *Store) PayoutItems(ctx context.Context, payoutID string) ([]model.PayoutItemRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payout_id, booking_id, unmatched, external_ref, guest_name, check_in, check_out,
		       gross_cents, commission_cents, service_fee_cents, vat_cents, net_cents, status
		FROM ota_payout_items
		WHERE payout_id = ?
		ORDER BY rowid`, payoutID)
	if err != nil {
		return nil, fmt.Errorf("querying payout items: %w", err)
	}
	defer rows.Close()

	var out []model.PayoutItemRecord
	for rows.Next() {
		var (
			it                             model.PayoutItemRecord
			booking, checkIn, checkOut     sql.NullString
			gross, comm, fee, vat, netCent int64
		)
		if err := rows.Scan(&it.ID, &it.PayoutID, &booking, &it.Unmatched, &it.ExternalRef, &it.GuestName,
			&checkIn, &checkOut, &gross, &comm, &fee, &vat, &netCent, &it.Status); err != nil {
			return nil, fmt.Errorf("scanning payout item: %w", err)
		}
		it.BookingID = booking.String
		if it.CheckIn, err = scanNullDate(checkIn); err != nil {
			return nil, err
		}
		if it.CheckOut, err = scanNullDate(checkOut); err != nil {
			return nil, err
		}
		it.Gross = fromCents(gross)
		it.Commission = fromCents(comm)
		it.ServiceFee = fromCents(fee)
		it.VAT = fromCents(vat)
		it.Net = fromCents(netCent)
		out = append(out, it)
	}
	return out, rows.Err()
}
