package service

import (
	"context"
	"errors"
	"io"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/pfinance/insights/internal/auth"
	"github.com/castlemilk/pfinance/insights/internal/classifier"
	"github.com/castlemilk/pfinance/insights/internal/finance"
	"github.com/castlemilk/pfinance/insights/internal/patterns"
	"github.com/castlemilk/pfinance/insights/internal/store"
	"github.com/castlemilk/pfinance/insights/internal/tax"
	"github.com/sirupsen/logrus"
)

// averagingMonths is how many complete months back monthly averages cover.
const averagingMonths = 3

// InsightsService serves the insight engine over Connect.
type InsightsService struct {
	store      store.Store
	classifier *classifier.Classifier
	taxes      *tax.Calculator
	logger     *logrus.Logger
	threshold  float64
	now        func() time.Time
	digests    DigestCache
	notifier   DigestNotifier
}

// Option configures an InsightsService.
type Option func(*InsightsService)

// WithClassifier replaces the default keyword rules.
func WithClassifier(c *classifier.Classifier) Option {
	return func(s *InsightsService) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithTaxCalculator replaces the default bracket table.
func WithTaxCalculator(c *tax.Calculator) Option {
	return func(s *InsightsService) {
		if c != nil {
			s.taxes = c
		}
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(s *InsightsService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAnomalyThreshold sets the default deviation threshold for anomaly requests.
func WithAnomalyThreshold(threshold float64) Option {
	return func(s *InsightsService) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithDigestCache keeps each built digest so GetWeeklyDigest can serve it
// without recomputing.
func WithDigestCache(c DigestCache) Option {
	return func(s *InsightsService) {
		s.digests = c
	}
}

// WithDigestNotifier emails each digest built by the scheduled run.
func WithDigestNotifier(n DigestNotifier) Option {
	return func(s *InsightsService) {
		s.notifier = n
	}
}

// WithClock sets the source of the reference date used by every request.
func WithClock(now func() time.Time) Option {
	return func(s *InsightsService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewInsightsService(st store.Store, opts ...Option) *InsightsService {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &InsightsService{
		store:      st,
		classifier: classifier.NewDefault(),
		taxes:      tax.NewDefaultCalculator(),
		logger:     discard,
		threshold:  patterns.DefaultAnomalyThreshold,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// asOf is the reference instant for a request, in UTC.
func (s *InsightsService) asOf() time.Time {
	return s.now().UTC()
}

// resolveUser returns the user a request is scoped to, enforcing that callers
// only read their own data.
func resolveUser(ctx context.Context, requested string) (string, error) {
	claims, err := auth.RequireUserAccess(ctx, requested)
	if err != nil {
		return "", err
	}
	return claims.UID, nil
}

// classifiedTransactions loads a user's transactions in [start, end] with
// missing categories filled in.
func (s *InsightsService) classifiedTransactions(ctx context.Context, userID string, start, end *time.Time) ([]finance.Transaction, error) {
	txns, err := s.store.ListTransactions(ctx, userID, start, end)
	if err != nil {
		return nil, toConnectError("list transactions", err)
	}
	return s.classifier.ClassifyAll(txns), nil
}

// profile returns the user's profile, and false when none is stored.
func (s *InsightsService) profile(ctx context.Context, userID string) (finance.Profile, bool, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return finance.Profile{UserID: userID}, false, nil
	}
	if err != nil {
		return finance.Profile{}, false, toConnectError("get profile", err)
	}
	return p, true, nil
}

// MonthlyAverages is income and spending averaged over the last complete months.
type MonthlyAverages struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Months   int     `json:"months"`
}

func (s *InsightsService) monthlyAverages(ctx context.Context, userID string, asOf time.Time) (MonthlyAverages, error) {
	end := finance.MonthStart(asOf)
	start := end.AddDate(0, -averagingMonths, 0)
	last := end.Add(-time.Nanosecond)

	txns, err := s.store.ListTransactions(ctx, userID, &start, &last)
	if err != nil {
		return MonthlyAverages{}, toConnectError("list transactions", err)
	}

	var income, expenses float64
	for _, t := range txns {
		if t.IsIncome() {
			income += t.Magnitude()
		} else {
			expenses += t.Magnitude()
		}
	}
	return MonthlyAverages{
		Income:   finance.Round2(income / averagingMonths),
		Expenses: finance.Round2(expenses / averagingMonths),
		Months:   averagingMonths,
	}, nil
}

// toConnectError maps engine and store errors onto Connect codes.
func toConnectError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return err
	}
	var verr *finance.ValidationError
	if errors.As(err, &verr) {
		if verr.Code == finance.ErrInsufficientHistory {
			return connect.NewError(connect.CodeFailedPrecondition, err)
		}
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	if errors.Is(err, store.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, auth.WrapStoreError(operation, err))
	}
	return connect.NewError(connect.CodeInternal, auth.WrapStoreError(operation, err))
}
