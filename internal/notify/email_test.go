package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlemilk/pfinance/insights/internal/analytics"
	"github.com/castlemilk/pfinance/insights/internal/finance"
	"github.com/castlemilk/pfinance/insights/internal/forecast"
	"github.com/castlemilk/pfinance/insights/internal/patterns"
	"github.com/castlemilk/pfinance/insights/internal/service"
)

func sampleDigest() service.WeeklyDigest {
	return service.WeeklyDigest{
		UserID:      "user-123",
		PeriodStart: "2024-06-23",
		PeriodEnd:   "2024-06-30",
		TotalSpent:  412.5,
		TotalIncome: 5000,
		TopCategories: []analytics.CategoryBreakdownEntry{
			{Category: finance.CategoryFood, Label: "Food & Dining", Amount: 400, Percentage: 97},
		},
		Anomalies: []patterns.Anomaly{{
			Transaction:    finance.Transaction{Description: "Coffee shop", Amount: 400, Date: time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)},
			ExpectedAmount: 52,
			ActualAmount:   400,
		}},
		Upcoming: []patterns.UpcomingPayment{
			{Description: "Netflix", Amount: 15.99, DueDate: time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)},
		},
		NextMonth: &forecast.Forecast{Month: "2024-07", PredictedExpense: 1234.5},
	}
}

func newTestMailer(t *testing.T, sendErr error) (*Mailer, *[]*email.Email, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	m := NewMailer(SMTPConfig{Host: "smtp.example.com", Port: "587", From: "digest@pfinance.dev"}, logger)

	var sent []*email.Email
	m.send = func(e *email.Email) error {
		sent = append(sent, e)
		return sendErr
	}
	return m, &sent, hook
}

func TestNotifyDigest(t *testing.T) {
	m, sent, hook := newTestMailer(t, nil)

	require.NoError(t, m.NotifyDigest(context.Background(), "alice@example.com", sampleDigest()))
	require.Len(t, *sent, 1)

	e := (*sent)[0]
	assert.Equal(t, "digest@pfinance.dev", e.From)
	assert.Equal(t, []string{"alice@example.com"}, e.To)
	assert.Equal(t, "Your week in money: 2024-06-23 to 2024-06-30", e.Subject)

	body := string(e.Text)
	assert.Contains(t, body, "Spent 412.50 and received 5000.00")
	assert.Contains(t, body, "Food & Dining")
	assert.Contains(t, body, "Jun 28  Coffee shop")
	assert.Contains(t, body, "(usually 52.00)")
	assert.Contains(t, body, "Jul 05  Netflix")
	assert.Contains(t, body, "around 1234.50")

	assert.Equal(t, "Digest email sent", hook.LastEntry().Message)
}

func TestNotifyDigestQuietWeek(t *testing.T) {
	m, sent, _ := newTestMailer(t, nil)

	require.NoError(t, m.NotifyDigest(context.Background(), "bob@example.com", service.WeeklyDigest{
		UserID:      "bob",
		PeriodStart: "2024-06-23",
		PeriodEnd:   "2024-06-30",
	}))
	body := string((*sent)[0].Text)
	assert.Equal(t, "Spent 0.00 and received 0.00 between 2024-06-23 and 2024-06-30.\n", body)
}

func TestNotifyDigestErrors(t *testing.T) {
	m, _, hook := newTestMailer(t, errors.New("554 rejected"))
	err := m.NotifyDigest(context.Background(), "alice@example.com", sampleDigest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "554 rejected")
	assert.Empty(t, hook.AllEntries())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, sent, _ := newTestMailer(t, nil)
	assert.ErrorIs(t, m.NotifyDigest(ctx, "alice@example.com", sampleDigest()), context.Canceled)
	assert.Empty(t, *sent)
}
