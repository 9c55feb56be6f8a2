// Package ota parses booking-platform payout exports into payout batches and
// booking line-items.
package ota

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
)

// ErrUnknownPlatform is returned when no platform is registered under a name.
var ErrUnknownPlatform = errors.New("unknown OTA platform")

// Platform turns one payout export into batches. Rows that are not data are
// omitted, never reported as errors.
type Platform interface {
	Name() string
	Parse(text string) (model.OTAImportResult, error)
}

// Registry holds named platforms.
type Registry struct {
	platforms map[string]Platform
	names     []string
}

// NewRegistry creates an empty platform registry.
func NewRegistry() *Registry {
	return &Registry{platforms: make(map[string]Platform)}
}

// Register adds a platform under its name and aliases. Panics on a duplicate key.
func (r *Registry) Register(p Platform, aliases ...string) {
	for i, k := range append([]string{p.Name()}, aliases...) {
		key := strings.ToLower(k)
		if _, ok := r.platforms[key]; ok {
			panic("duplicate platform: " + key)
		}
		r.platforms[key] = p
		if i == 0 {
			r.names = append(r.names, key)
		}
	}
}

// Get returns the platform for name, or nil.
func (r *Registry) Get(name string) Platform {
	return r.platforms[strings.ToLower(strings.TrimSpace(name))]
}

// Names lists the registered platform names, without aliases.
func (r *Registry) Names() []string {
	out := append([]string(nil), r.names...)
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in platforms.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&LekkerslaapPlatform{}, "a")
	r.Register(&BookingComPlatform{}, "b", "booking")
	r.Register(&AirbnbPlatform{}, "c")
	return r
}

// Parse looks up the platform and parses text with it.
func (r *Registry) Parse(platform, text string) (model.OTAImportResult, error) {
	p := r.Get(platform)
	if p == nil {
		return model.OTAImportResult{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}
	return p.Parse(text)
}
