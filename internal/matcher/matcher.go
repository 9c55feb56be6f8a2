// Package matcher links OTA line-items to existing bookings.
//
// Strategies run in order for each line-item and the first hit wins. The
// date-proximity fallback accepts the first booking whose check-in is within
// one calendar day; when several qualify, which one is taken depends on the
// order the store returns them in.
package matcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/LebsNeo/mrmoney-sub000/internal/logger"
	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/normalize"
)

// ProximityDays is the check-in window for the date fallback.
const ProximityDays = 1

// BookingStore lists the bookings of one property.
type BookingStore interface {
	FindByProperty(ctx context.Context, propertyID string) ([]model.Booking, error)
}

// Strategy tries to find a booking for one line-item.
type Strategy interface {
	Name() string
	Match(item model.ParsedOTABooking, bookings []model.Booking) (string, bool)
}

// ExactReference matches the platform reference case-insensitively.
type ExactReference struct{}

func (ExactReference) Name() string { return "reference" }

func (ExactReference) Match(item model.ParsedOTABooking, bookings []model.Booking) (string, bool) {
	ref := strings.TrimSpace(item.ExternalRef)
	if ref == "" {
		return "", false
	}
	for _, b := range bookings {
		if strings.EqualFold(ref, strings.TrimSpace(b.ExternalRef)) {
			return b.ID, true
		}
	}
	return "", false
}

// DateProximity matches on check-in date when the item carries one.
type DateProximity struct{}

func (DateProximity) Name() string { return "check-in" }

func (DateProximity) Match(item model.ParsedOTABooking, bookings []model.Booking) (string, bool) {
	if item.CheckIn == nil {
		return "", false
	}
	for _, b := range bookings {
		if b.CheckIn.IsZero() {
			continue
		}
		if normalize.DaysApart(*item.CheckIn, b.CheckIn) <= ProximityDays {
			return b.ID, true
		}
	}
	return "", false
}

// DefaultStrategies is the standard cascade.
func DefaultStrategies() []Strategy {
	return []Strategy{ExactReference{}, DateProximity{}}
}

// Matcher resolves line-items against a property's bookings.
type Matcher struct {
	store      BookingStore
	strategies []Strategy
	cache      *cache.Cache
}

// New creates a Matcher. A positive ttl caches each property's bookings for
// that long; zero disables caching.
func New(store BookingStore, ttl time.Duration, strategies ...Strategy) *Matcher {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	m := &Matcher{store: store, strategies: strategies}
	if ttl > 0 {
		m.cache = cache.New(ttl, 2*ttl)
	}
	return m
}

// Match returns externalRef -> bookingID for every item that matched.
// Items without a match are absent from the map. Items without a reference
// cannot be keyed and are never matched.
func (m *Matcher) Match(ctx context.Context, items []model.ParsedOTABooking, propertyID string) (map[string]string, error) {
	out := make(map[string]string)
	if len(items) == 0 {
		return out, nil
	}
	bookings, err := m.bookings(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	for _, it := range items {
		if strings.TrimSpace(it.ExternalRef) == "" {
			continue
		}
		if _, done := out[it.ExternalRef]; done {
			continue
		}
		for _, s := range m.strategies {
			if id, ok := s.Match(it, bookings); ok {
				out[it.ExternalRef] = id
				log.Debug().Str("ref", it.ExternalRef).Str("booking", id).Str("strategy", s.Name()).Msg("line-item matched")
				break
			}
		}
	}
	return out, nil
}

// Invalidate drops the cached bookings for a property.
func (m *Matcher) Invalidate(propertyID string) {
	if m.cache != nil {
		m.cache.Delete(propertyID)
	}
}

func (m *Matcher) bookings(ctx context.Context, propertyID string) ([]model.Booking, error) {
	if m.cache != nil {
		if v, found := m.cache.Get(propertyID); found {
			return v.([]model.Booking), nil
		}
	}
	bookings, err := m.store.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("loading bookings for %s: %w", propertyID, err)
	}
	if m.cache != nil {
		m.cache.Set(propertyID, bookings, cache.DefaultExpiration)
	}
	return bookings, nil
}
