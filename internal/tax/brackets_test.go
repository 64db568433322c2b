package tax

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

const testTableYAML = `
year: "2025-test"
brackets:
  single:
    - {from: 0, up_to: 10000, rate: 0}
    - {from: 10000, up_to: 50000, rate: 0.2}
    - {from: 50000, up_to: 0, rate: 0.4}
`

func TestDefaultTableValid(t *testing.T) {
	table := DefaultTable()
	require.NoError(t, table.Validate())
	assert.Equal(t, []FilingStatus{FilingHeadOfHousehold, FilingMarriedJoint, FilingMarriedSeparate, FilingSingle}, table.Statuses())
	for _, status := range table.Statuses() {
		assert.Len(t, table.Brackets[status], 7, status)
	}
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable([]byte(testTableYAML))
	require.NoError(t, err)
	assert.Equal(t, "2025-test", table.Year)

	calc, err := NewCalculator(table)
	require.NoError(t, err)
	got, err := calc.CalculateEstimatedTaxes(60000, FilingSingle, nil)
	require.NoError(t, err)
	// 40000 * 0.2 + 10000 * 0.4
	assert.Equal(t, 12000.0, got.EstimatedTax)
	assert.Equal(t, "2025-test", calc.Year())

	_, err = calc.CalculateEstimatedTaxes(60000, FilingMarriedJoint, nil)
	assert.Equal(t, finance.ErrUnknownFilingStatus, finance.ValidationCode(err))
}

func TestParseTableInvalid(t *testing.T) {
	tests := map[string]string{
		"not yaml":      "year: [",
		"no schedules":  "year: x\n",
		"gap":           "brackets:\n  single:\n    - {from: 0, up_to: 100, rate: 0.1}\n    - {from: 200, up_to: 0, rate: 0.2}\n",
		"nonzero start": "brackets:\n  single:\n    - {from: 5, up_to: 0, rate: 0.1}\n",
		"closed end":    "brackets:\n  single:\n    - {from: 0, up_to: 100, rate: 0.1}\n",
		"bad rate":      "brackets:\n  single:\n    - {from: 0, up_to: 0, rate: 1.5}\n",
		"nan rate":      "brackets:\n  single:\n    - {from: 0, up_to: 0, rate: .nan}\n",
		"inf bound":     "brackets:\n  single:\n    - {from: 0, up_to: .inf, rate: 0.1}\n    - {from: .inf, up_to: 0, rate: 0.2}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTable([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tax.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testTableYAML), 0o600))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Len(t, table.Brackets[FilingSingle], 3)

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
