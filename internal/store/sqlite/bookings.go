package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
)

// FindByProperty returns the property's bookings in insertion order.
func (s *Store) FindByProperty(ctx context.Context, propertyID string) ([]model.Booking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, property_id, external_ref, guest_name, check_in, check_out
		FROM bookings
		WHERE property_id = ?
		ORDER BY rowid`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var (
			b               model.Booking
			checkIn, chkOut sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.PropertyID, &b.ExternalRef, &b.GuestName, &checkIn, &chkOut); err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		ci, err := scanNullDate(checkIn)
		if err != nil {
			return nil, err
		}
		co, err := scanNullDate(chkOut)
		if err != nil {
			return nil, err
		}
		if ci != nil {
			b.CheckIn = *ci
		}
		if co != nil {
			b.CheckOut = *co
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CreateBooking stores a booking, assigning an id when it has none.
func (s *Store) CreateBooking(ctx context.Context, b model.Booking) (string, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (id, property_id, external_ref, guest_name, check_in, check_out)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.PropertyID, b.ExternalRef, b.GuestName, nullDateValue(b.CheckIn), nullDateValue(b.CheckOut))
	if err != nil {
		return "", fmt.Errorf("inserting booking: %w", err)
	}
	return b.ID, nil
}
