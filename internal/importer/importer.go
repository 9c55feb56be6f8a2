package importer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/normalize"
)

// ErrUnknownDialect is returned when no dialect is registered under a name.
var ErrUnknownDialect = errors.New("unknown bank dialect")

// Dialect maps the fields of one bank CSV line to a BankRow. It reports false
// for anything that is not a data row: headers, balances, footers.
type Dialect interface {
	Name() string
	ParseRow(fields []string) (model.BankRow, bool)
}

// Registry holds named dialects.
type Registry struct {
	dialects map[string]Dialect
	names    []string
}

// NewRegistry creates an empty dialect registry.
func NewRegistry() *Registry {
	return &Registry{dialects: make(map[string]Dialect)}
}

// Register adds a dialect under its name and any aliases. Panics on a
// duplicate key.
func (r *Registry) Register(d Dialect, aliases ...string) {
	for i, k := range append([]string{d.Name()}, aliases...) {
		key := strings.ToLower(k)
		if _, ok := r.dialects[key]; ok {
			panic("duplicate dialect: " + key)
		}
		r.dialects[key] = d
		if i == 0 {
			r.names = append(r.names, key)
		}
	}
}

// Get returns the dialect for name, or nil.
func (r *Registry) Get(name string) Dialect {
	return r.dialects[strings.ToLower(strings.TrimSpace(name))]
}

// Lookup is Get with an error naming the known dialects.
func (r *Registry) Lookup(name string) (Dialect, error) {
	if d := r.Get(name); d != nil {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownDialect, name, strings.Join(r.Names(), ", "))
}

// Names lists the registered dialect names, without aliases.
func (r *Registry) Names() []string {
	out := append([]string(nil), r.names...)
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in dialects. The single
// letters are the dialect codes used by older upload forms.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&FNBDialect{}, "a")
	r.Register(&ABSADialect{}, "b")
	r.Register(&NedbankDialect{}, "c")
	r.Register(&StandardBankDialect{}, "d")
	r.Register(&CapitecDialect{}, "e")
	return r
}

// Line is one recognised data line.
type Line struct {
	Row model.BankRow
	Raw string
}

// Parse runs every non-blank line of text through d. A first line that is
// not a data row is the column header and is dropped; later non-data lines
// are returned as unrecognised. A nil dialect leaves every line unrecognised.
func Parse(d Dialect, text string) (rows []Line, unrecognised []string) {
	for i, raw := range normalize.Lines(text) {
		if d == nil {
			unrecognised = append(unrecognised, raw)
			continue
		}
		row, ok := d.ParseRow(normalize.SplitLine(raw))
		if !ok {
			if i > 0 {
				unrecognised = append(unrecognised, raw)
			}
			continue
		}
		rows = append(rows, Line{Row: row, Raw: raw})
	}
	return rows, unrecognised
}

// Direction derives the flow from the bank's signed amount. Zero counts as
// income.
func Direction(signed decimal.Decimal) model.FlowDirection {
	if signed.IsNegative() {
		return model.FlowExpense
	}
	return model.FlowIncome
}

// ToTransaction builds the stored shape of a line: absolute amount plus the
// flow derived from the sign. Category fields are left for the caller.
func ToTransaction(l Line) model.ParsedTransaction {
	return model.ParsedTransaction{
		Date:        l.Row.Date,
		Description: l.Row.Description,
		Amount:      l.Row.Amount.Abs(),
		Flow:        Direction(l.Row.Amount),
		RawLine:     l.Raw,
	}
}

// field returns rec[i] or "" when the row is short.
func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// debitCredit applies the two-column convention: credit is positive, debit
// is negative. Both columns absent means no amount.
func debitCredit(debitField, creditField string) (decimal.Decimal, bool) {
	credit, hasCredit := normalize.ParseAmount(creditField)
	debit, hasDebit := normalize.ParseAmount(debitField)
	switch {
	case hasCredit && !credit.IsZero():
		return credit.Abs(), true
	case hasDebit:
		return debit.Abs().Neg(), true
	case hasCredit:
		return credit, true
	default:
		return decimal.Zero, false
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
