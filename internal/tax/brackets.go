// Package tax estimates income tax from a versioned bracket table and grades
// a set of financial ratios.
package tax

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// FilingStatus selects a bracket schedule.
type FilingStatus string

const (
	FilingSingle          FilingStatus = "single"
	FilingMarriedJoint    FilingStatus = "married_joint"
	FilingMarriedSeparate FilingStatus = "married_separate"
	FilingHeadOfHousehold FilingStatus = "head_of_household"
)

// DefaultFilingStatus is used when the caller leaves the status empty.
const DefaultFilingStatus = FilingSingle

// Bracket taxes the slice of income in (From, UpTo] at Rate.
// UpTo of zero means the bracket has no upper limit.
type Bracket struct {
	From float64 `yaml:"from" json:"from"`
	UpTo float64 `yaml:"up_to" json:"upTo"`
	Rate float64 `yaml:"rate" json:"rate"`
}

// BracketTable is one tax year's schedules, keyed by filing status.
type BracketTable struct {
	Year     string                     `yaml:"year" json:"year"`
	Brackets map[FilingStatus][]Bracket `yaml:"brackets" json:"brackets"`
}

// usRates are the 2024 US federal marginal rates, shared by every schedule.
var usRates = []float64{0.10, 0.12, 0.22, 0.24, 0.32, 0.35, 0.37}

func schedule(thresholds ...float64) []Bracket {
	out := make([]Bracket, 0, len(usRates))
	var from float64
	for i, rate := range usRates {
		var upTo float64
		if i < len(thresholds) {
			upTo = thresholds[i]
		}
		out = append(out, Bracket{From: from, UpTo: upTo, Rate: rate})
		from = upTo
	}
	return out
}

// DefaultTable returns the 2024 US federal brackets.
func DefaultTable() BracketTable {
	return BracketTable{
		Year: "2024",
		Brackets: map[FilingStatus][]Bracket{
			FilingSingle:          schedule(11600, 47150, 100525, 191950, 243725, 609350),
			FilingMarriedJoint:    schedule(23200, 94300, 201050, 383900, 487450, 731200),
			FilingMarriedSeparate: schedule(11600, 47150, 100525, 191950, 243725, 365600),
			FilingHeadOfHousehold: schedule(16550, 63100, 100500, 191950, 243700, 609350),
		},
	}
}

// Statuses lists the filing statuses in the table in a stable order.
func (t BracketTable) Statuses() []FilingStatus {
	out := make([]FilingStatus, 0, len(t.Brackets))
	for s := range t.Brackets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks that every schedule starts at zero, is contiguous and ends
// with an open bracket.
func (t BracketTable) Validate() error {
	if len(t.Brackets) == 0 {
		return finance.NewValidationError(finance.ErrInvalidArgument, "brackets", "table %q has no schedules", t.Year)
	}
	for _, status := range t.Statuses() {
		bs := t.Brackets[status]
		field := "brackets." + string(status)
		if len(bs) == 0 {
			return finance.NewValidationError(finance.ErrInvalidArgument, field, "schedule is empty")
		}
		if bs[0].From != 0 {
			return finance.NewValidationError(finance.ErrInvalidArgument, field, "first bracket must start at 0, got %v", bs[0].From)
		}
		for i, b := range bs {
			if !finite(b.From) || !finite(b.UpTo) || !finite(b.Rate) {
				return finance.NewValidationError(finance.ErrInvalidArgument, field, "bracket %d has a non-finite value", i)
			}
			if b.Rate < 0 || b.Rate > 1 {
				return finance.NewValidationError(finance.ErrInvalidArgument, field, "bracket %d rate %v outside [0,1]", i, b.Rate)
			}
			last := i == len(bs)-1
			if last && b.UpTo != 0 {
				return finance.NewValidationError(finance.ErrInvalidArgument, field, "last bracket must be open-ended")
			}
			if !last {
				if b.UpTo <= b.From {
					return finance.NewValidationError(finance.ErrInvalidArgument, field, "bracket %d upper bound %v not above %v", i, b.UpTo, b.From)
				}
				if bs[i+1].From != b.UpTo {
					return finance.NewValidationError(finance.ErrInvalidArgument, field, "bracket %d starts at %v, want %v", i+1, bs[i+1].From, b.UpTo)
				}
			}
		}
	}
	return nil
}

// ParseTable decodes and validates a YAML bracket table.
func ParseTable(data []byte) (BracketTable, error) {
	var t BracketTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return BracketTable{}, fmt.Errorf("failed to parse tax table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return BracketTable{}, err
	}
	return t, nil
}

// LoadTable reads a bracket table from a YAML file.
func LoadTable(path string) (BracketTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BracketTable{}, fmt.Errorf("failed to read tax table %s: %w", path, err)
	}
	return ParseTable(data)
}
