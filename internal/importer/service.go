package importer

import (
	"context"
	"fmt"

	"github.com/LebsNeo/mrmoney-sub000/internal/categorise"
	"github.com/LebsNeo/mrmoney-sub000/internal/logger"
	"github.com/LebsNeo/mrmoney-sub000/internal/model"
)

// Categoriser assigns a category to a description.
type Categoriser interface {
	Categorise(description, vendor string) categorise.Result
}

// DuplicateChecker flags rows that probably already exist in the store. The
// returned slice is parallel to txns.
type DuplicateChecker interface {
	Check(ctx context.Context, propertyID string, txns []model.ParsedTransaction) ([]bool, error)
}

// Service parses bank statements, categorises each row and splits likely
// duplicates into their own bucket.
type Service struct {
	registry    *Registry
	categoriser Categoriser
	duplicates  DuplicateChecker
}

// NewService creates a bank import Service. duplicates may be nil, in which
// case nothing is flagged.
func NewService(registry *Registry, categoriser Categoriser, duplicates DuplicateChecker) *Service {
	return &Service{registry: registry, categoriser: categoriser, duplicates: duplicates}
}

// Registry returns the dialect registry.
func (s *Service) Registry() *Registry { return s.registry }

// Import parses text with the named dialect. An unknown dialect is not an
// error: every line comes back unrecognised.
func (s *Service) Import(ctx context.Context, dialect, text string, scope model.Scope) (model.BankImportResult, error) {
	log := logger.FromContext(ctx)
	res := model.BankImportResult{
		Dialect:             dialect,
		Transactions:        []model.ParsedTransaction{},
		PotentialDuplicates: []model.ParsedTransaction{},
		Unrecognised:        []string{},
	}

	d := s.registry.Get(dialect)
	lines, unrecognised := Parse(d, text)
	res.Unrecognised = append(res.Unrecognised, unrecognised...)
	if d == nil {
		log.Warn().Str("dialect", dialect).Int("lines", len(unrecognised)).Msg("unknown dialect, nothing parsed")
		return res, nil
	}
	res.Dialect = d.Name()

	txns := make([]model.ParsedTransaction, 0, len(lines))
	for _, l := range lines {
		txn := ToTransaction(l)
		c := s.categoriser.Categorise(txn.Description, "")
		txn.Category = c.Category
		txn.Confidence = c.Confidence
		txns = append(txns, txn)
	}

	var flags []bool
	if s.duplicates != nil && len(txns) > 0 {
		var err error
		flags, err = s.duplicates.Check(ctx, scope.PropertyID, txns)
		if err != nil {
			return res, fmt.Errorf("checking duplicates: %w", err)
		}
	}

	for i, txn := range txns {
		if i < len(flags) && flags[i] {
			txn.Duplicate = true
			res.PotentialDuplicates = append(res.PotentialDuplicates, txn)
			continue
		}
		res.Transactions = append(res.Transactions, txn)
	}

	log.Info().
		Str("dialect", res.Dialect).
		Str("property", scope.PropertyID).
		Int("transactions", len(res.Transactions)).
		Int("duplicates", len(res.PotentialDuplicates)).
		Int("unrecognised", len(res.Unrecognised)).
		Msg("bank statement parsed")
	return res, nil
}
