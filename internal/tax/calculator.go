package tax

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// Deduction reduces taxable income.
type Deduction struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// BracketTax is the tax owed on the slice of income inside one bracket.
type BracketTax struct {
	From          float64 `json:"from"`
	UpTo          float64 `json:"upTo"`
	Rate          float64 `json:"rate"`
	TaxableAmount float64 `json:"taxableAmount"`
	Tax           float64 `json:"tax"`
}

// TaxEstimate is the result of CalculateEstimatedTaxes.
type TaxEstimate struct {
	Year             string       `json:"year"`
	FilingStatus     FilingStatus `json:"filingStatus"`
	GrossIncome      float64      `json:"grossIncome"`
	TotalDeductions  float64      `json:"totalDeductions"`
	TaxableIncome    float64      `json:"taxableIncome"`
	EstimatedTax     float64      `json:"estimatedTax"`
	EffectiveRate    float64      `json:"effectiveRate"`
	MarginalRate     float64      `json:"marginalRate"`
	QuarterlyPayment float64      `json:"quarterlyPayment"`
	Breakdown        []BracketTax `json:"breakdown"`
}

// Calculator applies one bracket table. It is safe for concurrent use.
type Calculator struct {
	table BracketTable
}

// NewCalculator validates the table and keeps a private copy of it.
func NewCalculator(table BracketTable) (*Calculator, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	cp := BracketTable{Year: table.Year, Brackets: make(map[FilingStatus][]Bracket, len(table.Brackets))}
	for status, bs := range table.Brackets {
		cp.Brackets[status] = append([]Bracket(nil), bs...)
	}
	return &Calculator{table: cp}, nil
}

// NewDefaultCalculator returns a calculator over DefaultTable.
func NewDefaultCalculator() *Calculator {
	c, err := NewCalculator(DefaultTable())
	if err != nil {
		panic(err)
	}
	return c
}

// Year returns the tax year of the loaded table.
func (c *Calculator) Year() string {
	return c.table.Year
}

// ParseFilingStatus normalises a caller supplied status. Empty means single.
func ParseFilingStatus(s string) FilingStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultFilingStatus
	}
	return FilingStatus(s)
}

// CalculateEstimatedTaxes taxes gross income less deductions using marginal
// accumulation over the schedule for status. Income exactly on a threshold is
// taxed entirely at the lower bracket.
func (c *Calculator) CalculateEstimatedTaxes(gross float64, status FilingStatus, deductions []Deduction) (TaxEstimate, error) {
	if !finite(gross) {
		return TaxEstimate{}, finance.NewValidationError(finance.ErrInvalidArgument, "grossIncome", "must be a finite number, got %v", gross)
	}
	if gross < 0 {
		return TaxEstimate{}, finance.NewValidationError(finance.ErrInvalidArgument, "grossIncome", "must not be negative, got %v", gross)
	}
	if status == "" {
		status = DefaultFilingStatus
	}
	brackets, ok := c.table.Brackets[status]
	if !ok {
		return TaxEstimate{}, finance.NewValidationError(finance.ErrUnknownFilingStatus, "filingStatus", "no %s schedule for %q", c.table.Year, status)
	}

	totalDeductions := decimal.Zero
	for i, d := range deductions {
		if !finite(d.Amount) {
			return TaxEstimate{}, finance.NewValidationError(finance.ErrInvalidArgument, "deductions", "deduction %d (%s) is not a finite number", i, d.Name)
		}
		if d.Amount < 0 {
			return TaxEstimate{}, finance.NewValidationError(finance.ErrInvalidArgument, "deductions", "deduction %d (%s) is negative", i, d.Name)
		}
		totalDeductions = totalDeductions.Add(decimal.NewFromFloat(d.Amount))
	}

	grossDec := decimal.NewFromFloat(gross)
	taxable := decimal.Max(decimal.Zero, grossDec.Sub(totalDeductions))

	total := decimal.Zero
	var marginal float64
	breakdown := make([]BracketTax, 0, len(brackets))
	for _, b := range brackets {
		from := decimal.NewFromFloat(b.From)
		if taxable.LessThanOrEqual(from) {
			break
		}
		upper := taxable
		if b.UpTo > 0 {
			upper = decimal.Min(upper, decimal.NewFromFloat(b.UpTo))
		}
		slice := upper.Sub(from)
		tax := slice.Mul(decimal.NewFromFloat(b.Rate))
		total = total.Add(tax)
		marginal = b.Rate
		breakdown = append(breakdown, BracketTax{
			From:          b.From,
			UpTo:          b.UpTo,
			Rate:          b.Rate,
			TaxableAmount: slice.Round(2).InexactFloat64(),
			Tax:           tax.Round(2).InexactFloat64(),
		})
	}
	if len(breakdown) == 0 && len(brackets) > 0 {
		marginal = brackets[0].Rate
	}

	est := TaxEstimate{
		Year:             c.table.Year,
		FilingStatus:     status,
		GrossIncome:      finance.Round2(gross),
		TotalDeductions:  totalDeductions.Round(2).InexactFloat64(),
		TaxableIncome:    taxable.Round(2).InexactFloat64(),
		EstimatedTax:     total.Round(2).InexactFloat64(),
		MarginalRate:     marginal,
		QuarterlyPayment: total.Div(decimal.NewFromInt(4)).Round(2).InexactFloat64(),
		Breakdown:        breakdown,
	}
	if grossDec.IsPositive() {
		est.EffectiveRate = total.Div(grossDec).Round(4).InexactFloat64()
	}
	return est, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
