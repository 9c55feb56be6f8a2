package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
)

// FindTransactionsInWindow returns the property's transactions dated within
// [from, to] whose amount lies within [minAmount, maxAmount], bounds
// inclusive.
func (s *Store) FindTransactionsInWindow(ctx context.Context, propertyID string, from, to time.Time, minAmount, maxAmount decimal.Decimal) ([]model.StoredTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, property_id, date, amount_cents, flow
		FROM transactions
		WHERE property_id = ?
		  AND date BETWEEN ? AND ?
		  AND amount_cents BETWEEN ? AND ?
		ORDER BY date, id`,
		propertyID, formatDate(from), formatDate(to),
		minAmount.Shift(2).Floor().IntPart(), maxAmount.Shift(2).Ceil().IntPart())
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var out []model.StoredTransaction
	for rows.Next() {
		var (
			t     model.StoredTransaction
			date  string
			cents int64
			flow  string
		)
		if err := rows.Scan(&t.ID, &t.PropertyID, &date, &cents, &flow); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if t.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		t.Amount = fromCents(cents)
		t.Flow = model.FlowDirection(flow)
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTransaction stores a single transaction and returns its id.
func (s *Store) CreateTransaction(ctx context.Context, scope model.Scope, txn model.ParsedTransaction) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, insertTransaction, txnArgs(id, scope, txn)...); err != nil {
		return "", fmt.Errorf("inserting transaction: %w", err)
	}
	return id, nil
}

// CreateTransactions stores txns in one database transaction. On any error
// nothing is written.
func (s *Store) CreateTransactions(ctx context.Context, scope model.Scope, txns []model.ParsedTransaction) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertTransaction)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txns {
		if _, err := stmt.ExecContext(ctx, txnArgs(uuid.NewString(), scope, t)...); err != nil {
			return 0, fmt.Errorf("inserting transaction %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transactions: %w", err)
	}
	return len(txns), nil
}

// CountTransactions returns how many transactions the property has.
func (s *Store) CountTransactions(ctx context.Context, propertyID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE property_id = ?`, propertyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}
	return n, nil
}

const insertTransaction = `
	INSERT INTO transactions
		(id, property_id, organisation_id, date, description, amount_cents, flow, category, confidence, raw_line)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func txnArgs(id string, scope model.Scope, t model.ParsedTransaction) []any {
	return []any{
		id, scope.PropertyID, scope.OrganisationID, formatDate(t.Date), t.Description,
		toCents(t.Amount.Abs()), string(t.Flow), string(t.Category), string(t.Confidence), t.RawLine,
	}
}
