package service

import (
	"context"
	"time"

	"github.com/castlemilk/pfinance/insights/internal/auth"
	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// testContextWithUser creates a context with authenticated user claims for testing
func testContextWithUser(userID string) context.Context {
	return auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:   userID,
		Email: userID + "@test.local",
	})
}

// fixedClock returns a clock stopped at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func testExpense(id, description string, amount float64, date time.Time) finance.Transaction {
	return finance.Transaction{ID: id, UserID: "user-123", Description: description, Amount: amount, Date: date}
}

func testIncome(id string, amount float64, date time.Time) finance.Transaction {
	return finance.Transaction{
		ID:          id,
		UserID:      "user-123",
		Description: "Salary",
		Amount:      amount,
		Date:        date,
		Type:        finance.TransactionTypeIncome,
	}
}
