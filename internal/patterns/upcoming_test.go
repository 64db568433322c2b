package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

func TestUpcomingPayments(t *testing.T) {
	recurring := []RecurringTransaction{
		{Description: "Netflix", Frequency: finance.FrequencyMonthly, EstimatedAmount: 15, LastSeen: day(2025, 3, 15)},
		{Description: "Gym", Frequency: finance.FrequencyWeekly, EstimatedAmount: 20, LastSeen: day(2025, 3, 28)},
	}

	got := UpcomingPayments(recurring, day(2025, 3, 31), 15)
	require.Len(t, got, 3)
	assert.Equal(t, "Gym", got[0].Description)
	assert.Equal(t, day(2025, 4, 4), got[0].DueDate)
	assert.Equal(t, "Gym", got[1].Description)
	assert.Equal(t, day(2025, 4, 11), got[1].DueDate)
	assert.Equal(t, "Netflix", got[2].Description)
	assert.Equal(t, day(2025, 4, 15), got[2].DueDate)
}

func TestUpcomingPaymentsNonPositiveHorizon(t *testing.T) {
	recurring := []RecurringTransaction{{Frequency: finance.FrequencyDaily, LastSeen: day(2025, 1, 1)}}
	assert.Nil(t, UpcomingPayments(recurring, day(2025, 1, 1), 0))
}

func TestUpcomingPaymentsMonthEnd(t *testing.T) {
	recurring := []RecurringTransaction{
		{Description: "Rent", Frequency: finance.FrequencyMonthly, EstimatedAmount: 2000, LastSeen: day(2026, 1, 31)},
	}

	got := UpcomingPayments(recurring, day(2026, 2, 1), 120)
	require.Len(t, got, 4)
	assert.Equal(t, day(2026, 2, 28), got[0].DueDate)
	assert.Equal(t, day(2026, 3, 31), got[1].DueDate)
	assert.Equal(t, day(2026, 4, 30), got[2].DueDate)
	assert.Equal(t, day(2026, 5, 31), got[3].DueDate)
}
