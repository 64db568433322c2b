package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// Dialect selects the placeholder style of a SQL driver.
type Dialect int

const (
	// DialectPostgres uses $1, $2 placeholders (lib/pq).
	DialectPostgres Dialect = iota
	// DialectSQLite uses ? placeholders (mattn/go-sqlite3).
	DialectSQLite
)

// Schema creates the tables read by SQLStore. Column types are shared by
// PostgreSQL and SQLite.
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id               TEXT PRIMARY KEY,
	monthly_income        NUMERIC NOT NULL DEFAULT 0,
	monthly_debt_payments NUMERIC NOT NULL DEFAULT 0,
	liquid_assets         NUMERIC NOT NULL DEFAULT 0,
	monthly_investments   NUMERIC NOT NULL DEFAULT 0,
	total_debt            NUMERIC NOT NULL DEFAULT 0,
	filing_status         TEXT NOT NULL DEFAULT '',
	email                 TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	description TEXT NOT NULL,
	amount      NUMERIC NOT NULL,
	date        TIMESTAMP NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS transactions_user_date ON transactions (user_id, date);
CREATE TABLE IF NOT EXISTS budgets (
	id       TEXT PRIMARY KEY,
	user_id  TEXT NOT NULL,
	category TEXT NOT NULL,
	amount   NUMERIC NOT NULL
);
CREATE TABLE IF NOT EXISTS goals (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	name           TEXT NOT NULL,
	target_amount  NUMERIC NOT NULL,
	current_amount NUMERIC NOT NULL DEFAULT 0,
	deadline       TIMESTAMP NOT NULL,
	priority       INTEGER NOT NULL DEFAULT 2
);
`

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an open database. The caller owns db.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Migrate applies Schema.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites $N placeholders for drivers that expect ?.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectSQLite {
		return query
	}
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '$' {
			j := i + 1
			for j < len(query) && query[j] >= '0' && query[j] <= '9' {
				j++
			}
			if j > i+1 {
				b.WriteByte('?')
				i = j - 1
				continue
			}
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *SQLStore) ListTransactions(ctx context.Context, userID string, start, end *time.Time) ([]finance.Transaction, error) {
	query := `
		SELECT id, user_id, description, amount, date, category, type
		FROM transactions
		WHERE user_id = $1`
	args := []any{userID}
	if start != nil {
		args = append(args, start.UTC())
		query += " AND date >= $" + strconv.Itoa(len(args))
	}
	if end != nil {
		args = append(args, end.UTC())
		query += " AND date <= $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY date, id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []finance.Transaction
	for rows.Next() {
		var t finance.Transaction
		var category, txType string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Description, &t.Amount, &t.Date, &category, &txType); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Category = finance.Category(category)
		t.Type = finance.TransactionType(txType)
		t.Date = t.Date.UTC()
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	sortTransactions(txns)
	return txns, nil
}

func (s *SQLStore) ListBudgets(ctx context.Context, userID string) ([]finance.Budget, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, category, amount
		FROM budgets
		WHERE user_id = $1
		ORDER BY id`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []finance.Budget
	for rows.Next() {
		var b finance.Budget
		var category string
		if err := rows.Scan(&b.ID, &b.UserID, &category, &b.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.Category = finance.Category(category)
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

func (s *SQLStore) ListGoals(ctx context.Context, userID string) ([]finance.Goal, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, name, target_amount, current_amount, deadline, priority
		FROM goals
		WHERE user_id = $1
		ORDER BY id`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []finance.Goal
	for rows.Next() {
		var g finance.Goal
		var priority int
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Deadline, &priority); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		g.Priority = finance.GoalPriority(priority)
		g.Deadline = g.Deadline.UTC()
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

func (s *SQLStore) GetProfile(ctx context.Context, userID string) (finance.Profile, error) {
	p := finance.Profile{UserID: userID}
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT monthly_income, monthly_debt_payments, liquid_assets, monthly_investments, total_debt, filing_status, email
		FROM profiles
		WHERE user_id = $1`), userID).
		Scan(&p.MonthlyIncome, &p.MonthlyDebtPayments, &p.LiquidAssets, &p.MonthlyInvestments, &p.TotalDebt, &p.FilingStatus, &p.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return finance.Profile{}, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return finance.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (s *SQLStore) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}

// PutTransaction inserts or replaces a transaction.
func (s *SQLStore) PutTransaction(ctx context.Context, t finance.Transaction) (string, error) {
	id, err := prepareID("transaction", t.UserID, t.ID)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO transactions (id, user_id, description, amount, date, category, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			description = excluded.description,
			amount = excluded.amount,
			date = excluded.date,
			category = excluded.category,
			type = excluded.type`),
		id, t.UserID, t.Description, t.Amount, t.Date.UTC(), string(t.Category), string(t.Type))
	if err != nil {
		return "", fmt.Errorf("failed to put transaction: %w", err)
	}
	return id, nil
}

// PutBudget inserts or replaces a budget.
func (s *SQLStore) PutBudget(ctx context.Context, b finance.Budget) (string, error) {
	id, err := prepareID("budget", b.UserID, b.ID)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO budgets (id, user_id, category, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			category = excluded.category,
			amount = excluded.amount`),
		id, b.UserID, string(b.Category), b.Amount)
	if err != nil {
		return "", fmt.Errorf("failed to put budget: %w", err)
	}
	return id, nil
}

// PutGoal inserts or replaces a goal.
func (s *SQLStore) PutGoal(ctx context.Context, g finance.Goal) (string, error) {
	id, err := prepareID("goal", g.UserID, g.ID)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO goals (id, user_id, name, target_amount, current_amount, deadline, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			target_amount = excluded.target_amount,
			current_amount = excluded.current_amount,
			deadline = excluded.deadline,
			priority = excluded.priority`),
		id, g.UserID, g.Name, g.TargetAmount, g.CurrentAmount, g.Deadline.UTC(), int(g.Priority))
	if err != nil {
		return "", fmt.Errorf("failed to put goal: %w", err)
	}
	return id, nil
}

// PutProfile inserts or replaces a user's profile.
func (s *SQLStore) PutProfile(ctx context.Context, p finance.Profile) error {
	if p.UserID == "" {
		return fmt.Errorf("profile has no user")
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO profiles (user_id, monthly_income, monthly_debt_payments, liquid_assets, monthly_investments, total_debt, filing_status, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			monthly_income = excluded.monthly_income,
			monthly_debt_payments = excluded.monthly_debt_payments,
			liquid_assets = excluded.liquid_assets,
			monthly_investments = excluded.monthly_investments,
			total_debt = excluded.total_debt,
			filing_status = excluded.filing_status,
			email = excluded.email`),
		p.UserID, p.MonthlyIncome, p.MonthlyDebtPayments, p.LiquidAssets, p.MonthlyInvestments, p.TotalDebt, p.FilingStatus, p.Email)
	if err != nil {
		return fmt.Errorf("failed to put profile: %w", err)
	}
	return nil
}
