// Package ingest runs the bank and OTA import flows end to end: parse,
// classify or match, persist, record.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/LebsNeo/mrmoney-sub000/internal/importer"
	"github.com/LebsNeo/mrmoney-sub000/internal/importlog"
	"github.com/LebsNeo/mrmoney-sub000/internal/logger"
	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/ota"
	"github.com/LebsNeo/mrmoney-sub000/internal/persist"
)

// Matcher links line-items to bookings.
type Matcher interface {
	Match(ctx context.Context, items []model.ParsedOTABooking, propertyID string) (map[string]string, error)
}

// Persister writes transactions and payout batches.
type Persister interface {
	PersistTransactions(ctx context.Context, scope model.Scope, txns []model.ParsedTransaction) (int, error)
	PersistAll(ctx context.Context, platform string, scope model.Scope, payouts []model.ParsedOTAPayout, matches map[string]string) (model.PersistResult, error)
}

// Recorder keeps an audit trail of runs.
type Recorder interface {
	Append(entries ...importlog.Entry) error
}

// Service ties the parsers to storage.
type Service struct {
	bank      *importer.Service
	platforms *ota.Registry
	matcher   Matcher
	persister Persister
	recorder  Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder records every run in an audit log.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// New creates a Service.
func New(bank *importer.Service, platforms *ota.Registry, matcher Matcher, persister Persister, opts ...Option) *Service {
	s := &Service{bank: bank, platforms: platforms, matcher: matcher, persister: persister}
	for _, o := range opts {
		o(s)
	}
	return s
}

// BankRequest describes one bank statement import.
type BankRequest struct {
	Dialect string
	Text    string
	Scope   model.Scope
	Source  string
	DryRun  bool
}

// BankOutcome is the parse result plus how many rows were written.
type BankOutcome struct {
	model.BankImportResult
	Persisted int `json:"persisted"`
}

// ImportBank parses a statement and persists the non-duplicate rows as one
// atomic unit. Potential duplicates are returned, never written.
func (s *Service) ImportBank(ctx context.Context, req BankRequest) (BankOutcome, error) {
	res, err := s.bank.Import(ctx, req.Dialect, req.Text, req.Scope)
	out := BankOutcome{BankImportResult: res}
	entry := importlog.Entry{
		Kind:         "bank",
		Format:       res.Dialect,
		PropertyID:   req.Scope.PropertyID,
		Source:       req.Source,
		Parsed:       len(res.Transactions) + len(res.PotentialDuplicates),
		Duplicates:   len(res.PotentialDuplicates),
		Unrecognised: len(res.Unrecognised),
	}
	if err != nil {
		s.record(ctx, entry, err)
		return out, err
	}

	if req.DryRun || len(res.Transactions) == 0 {
		entry.Status = importlog.StatusPreview
		if !req.DryRun {
			entry.Status = importlog.StatusCommitted
		}
		s.record(ctx, entry, nil)
		return out, nil
	}

	n, err := s.persister.PersistTransactions(ctx, req.Scope, res.Transactions)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("dialect", res.Dialect).Msg("bank import not persisted")
		s.record(ctx, entry, err)
		return out, err
	}
	out.Persisted = n
	entry.Persisted = n
	entry.Status = importlog.StatusCommitted
	s.record(ctx, entry, nil)
	return out, nil
}

// ForceImport persists rows a human confirmed despite the duplicate flag.
// They are not checked again.
func (s *Service) ForceImport(ctx context.Context, scope model.Scope, txns []model.ParsedTransaction, source string) (int, error) {
	entry := importlog.Entry{Kind: "force", PropertyID: scope.PropertyID, Source: source, Parsed: len(txns)}
	n, err := s.persister.PersistTransactions(ctx, scope, txns)
	if err != nil {
		s.record(ctx, entry, err)
		return 0, err
	}
	entry.Persisted = n
	entry.Status = importlog.StatusCommitted
	s.record(ctx, entry, nil)
	return n, nil
}

// ParseOTA parses a payout export without touching storage.
func (s *Service) ParseOTA(ctx context.Context, platform, text string) (model.OTAImportResult, error) {
	res, err := s.platforms.Parse(platform, text)
	if err != nil {
		return res, err
	}
	logger.FromContext(ctx).Info().
		Str("platform", res.Platform).
		Int("payouts", len(res.Payouts)).
		Int("bookings", res.BookingCount).
		Int("warnings", len(res.Warnings)).
		Msg("payout export parsed")
	return res, nil
}

// OTARequest describes one payout export import.
type OTARequest struct {
	Platform string
	Text     string
	Scope    model.Scope
	Source   string
}

// OTAOutcome is the parse result and what was written. Persist.Warnings
// carries the parse warnings followed by the persistence warnings.
type OTAOutcome struct {
	Import  model.OTAImportResult `json:"import"`
	Persist model.PersistResult   `json:"persist"`
}

// CommitOTA parses, matches every line-item against the property's bookings
// and persists each payout batch atomically.
func (s *Service) CommitOTA(ctx context.Context, req OTARequest) (OTAOutcome, error) {
	entry := importlog.Entry{Kind: "ota", Format: req.Platform, PropertyID: req.Scope.PropertyID, Source: req.Source}

	res, err := s.ParseOTA(ctx, req.Platform, req.Text)
	out := OTAOutcome{Import: res, Persist: model.PersistResult{Warnings: []string{}}}
	if err != nil {
		s.record(ctx, entry, err)
		return out, err
	}
	entry.Format = res.Platform
	entry.Parsed = res.BookingCount
	out.Persist.Warnings = append(out.Persist.Warnings, res.Warnings...)

	var items []model.ParsedOTABooking
	for _, p := range res.Payouts {
		items = append(items, p.Items...)
	}
	matches, err := s.matcher.Match(ctx, items, req.Scope.PropertyID)
	if err != nil {
		err = fmt.Errorf("matching bookings: %w", err)
		s.record(ctx, entry, err)
		return out, err
	}

	pr, err := s.persister.PersistAll(ctx, res.Platform, req.Scope, res.Payouts, matches)
	out.Persist.PayoutsCreated = pr.PayoutsCreated
	out.Persist.ItemsCreated = pr.ItemsCreated
	out.Persist.ItemsMatched = pr.ItemsMatched
	out.Persist.Warnings = append(out.Persist.Warnings, pr.Warnings...)
	entry.Persisted = pr.ItemsCreated
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("platform", res.Platform).Msg("payout import stopped")
		s.record(ctx, entry, err)
		return out, err
	}
	entry.Status = importlog.StatusCommitted
	entry.Details = fmt.Sprintf("%d payouts, %d matched", pr.PayoutsCreated, pr.ItemsMatched)
	s.record(ctx, entry, nil)
	return out, nil
}

// Formats lists the bank dialects and OTA platforms that can be imported.
func (s *Service) Formats() (dialects, platforms []string) {
	return s.bank.Registry().Names(), s.platforms.Names()
}

// IsClientError reports whether err was caused by the request rather than
// storage.
func IsClientError(err error) bool {
	return errors.Is(err, ota.ErrUnknownPlatform) || errors.Is(err, importer.ErrUnknownDialect)
}

func (s *Service) record(ctx context.Context, e importlog.Entry, err error) {
	if s.recorder == nil {
		return
	}
	if err != nil {
		e.Status = importlog.StatusFailed
		e.Details = err.Error()
	}
	if rerr := s.recorder.Append(e); rerr != nil {
		logger.FromContext(ctx).Warn().Err(rerr).Msg("writing import log")
	}
}

var _ Persister = (*persist.Persister)(nil)
