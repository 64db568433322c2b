package service

import (
	"context"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/pfinance/insights/internal/analytics"
	"github.com/castlemilk/pfinance/insights/internal/finance"
	"github.com/castlemilk/pfinance/insights/internal/forecast"
	"github.com/castlemilk/pfinance/insights/internal/patterns"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	digestPeriodDays    = 7
	digestTopN          = 3
	digestHorizonDays   = 7
	digestHistoryMonths = 12
)

// WeeklyDigest is one user's summary of the past week and the week ahead.
type WeeklyDigest struct {
	UserID        string                             `json:"userId"`
	PeriodStart   string                             `json:"periodStart"`
	PeriodEnd     string                             `json:"periodEnd"`
	TotalSpent    float64                            `json:"totalSpent"`
	TotalIncome   float64                            `json:"totalIncome"`
	TopCategories []analytics.CategoryBreakdownEntry `json:"topCategories"`
	Anomalies     []patterns.Anomaly                 `json:"anomalies"`
	Upcoming      []patterns.UpcomingPayment         `json:"upcoming"`
	// NextMonth is nil when there is no complete month of history.
	NextMonth *forecast.Forecast `json:"nextMonth,omitempty"`
}

// DigestRun summarises one pass over all users.
type DigestRun struct {
	UsersProcessed int `json:"usersProcessed"`
	DigestsBuilt   int `json:"digestsBuilt"`
	Emailed        int `json:"emailed"`
	Failures       int `json:"failures"`
}

// DigestCache keeps the most recently built digest for each user.
type DigestCache interface {
	SaveDigest(ctx context.Context, digest WeeklyDigest) error
	// LatestDigest reports false when nothing is cached for the user.
	LatestDigest(ctx context.Context, userID string) (WeeklyDigest, bool, error)
}

// DigestNotifier delivers a digest to the address on the user's profile.
type DigestNotifier interface {
	NotifyDigest(ctx context.Context, recipient string, digest WeeklyDigest) error
}

// GetWeeklyDigest returns the caller's cached digest, building and caching a
// fresh one when none is cached or a refresh is requested. A broken cache
// degrades to building on every call.
func (s *InsightsService) GetWeeklyDigest(ctx context.Context, req *connect.Request[GetWeeklyDigestRequest]) (*connect.Response[GetWeeklyDigestResponse], error) {
	userID, err := resolveUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	if s.digests != nil && !req.Msg.Refresh {
		cached, ok, err := s.digests.LatestDigest(ctx, userID)
		switch {
		case err != nil:
			s.logger.WithError(err).WithField("user_id", userID).Warn("failed to read cached weekly digest")
		case ok:
			return connect.NewResponse(&GetWeeklyDigestResponse{Digest: cached, Cached: true}), nil
		}
	}

	digest, err := s.GenerateWeeklyDigest(ctx, userID, s.asOf())
	if err != nil {
		return nil, toConnectError("weekly digest", err)
	}
	s.cacheDigest(ctx, digest)
	return connect.NewResponse(&GetWeeklyDigestResponse{Digest: digest}), nil
}

func (s *InsightsService) cacheDigest(ctx context.Context, digest WeeklyDigest) {
	if s.digests == nil {
		return
	}
	if err := s.digests.SaveDigest(ctx, digest); err != nil {
		s.logger.WithError(err).WithField("user_id", digest.UserID).Warn("failed to cache weekly digest")
	}
}

// notifyDigest sends the digest when the user has an email on file. It
// reports whether anything was sent.
func (s *InsightsService) notifyDigest(ctx context.Context, digest WeeklyDigest) (bool, error) {
	if s.notifier == nil {
		return false, nil
	}
	profile, _, err := s.profile(ctx, digest.UserID)
	if err != nil {
		return false, err
	}
	if profile.Email == "" {
		return false, nil
	}
	if err := s.notifier.NotifyDigest(ctx, profile.Email, digest); err != nil {
		return false, err
	}
	return true, nil
}

// GenerateWeeklyDigest builds the digest for a single user as of asOf.
// Anomalies are scored against the full lookback, but only those dated in the
// last seven days are reported.
func (s *InsightsService) GenerateWeeklyDigest(ctx context.Context, userID string, asOf time.Time) (WeeklyDigest, error) {
	asOf = asOf.UTC()
	periodStart := asOf.AddDate(0, 0, -digestPeriodDays)
	lookback := asOf.AddDate(0, -defaultLookbackMonths, 0)

	txns, err := s.store.ListTransactions(ctx, userID, &lookback, &asOf)
	if err != nil {
		return WeeklyDigest{}, fmt.Errorf("failed to list transactions: %w", err)
	}
	txns = s.classifier.ClassifyAll(txns)

	var week []finance.Transaction
	for _, t := range txns {
		if t.Date.After(periodStart) {
			week = append(week, t)
		}
	}
	savings := analytics.SavingsRateFromTransactions(week)

	var anomalies []patterns.Anomaly
	for _, a := range patterns.DetectAnomalies(txns, s.threshold) {
		if a.Transaction.Date.After(periodStart) {
			anomalies = append(anomalies, a)
		}
	}

	digest := WeeklyDigest{
		UserID:        userID,
		PeriodStart:   periodStart.Format(time.DateOnly),
		PeriodEnd:     asOf.Format(time.DateOnly),
		TotalSpent:    savings.Expense,
		TotalIncome:   savings.Income,
		TopCategories: analytics.TopCategories(week, digestTopN),
		Anomalies:     anomalies,
		Upcoming:      patterns.UpcomingPayments(patterns.DetectRecurring(txns), asOf, digestHorizonDays),
	}

	next, err := s.nextMonthForecast(ctx, userID, asOf)
	if err != nil {
		return WeeklyDigest{}, err
	}
	digest.NextMonth = next
	return digest, nil
}

// nextMonthForecast projects spending for the calendar month after asOf, or
// returns nil when there is no history to fit.
func (s *InsightsService) nextMonthForecast(ctx context.Context, userID string, asOf time.Time) (*forecast.Forecast, error) {
	history, err := s.monthlyHistory(ctx, userID, asOf, digestHistoryMonths)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}

	target := finance.MonthStart(asOf).AddDate(0, 1, 0)
	last := history[len(history)-1].Start
	horizon := (target.Year()-last.Year())*12 + int(target.Month()-last.Month())

	forecasts, err := forecast.ForecastMonthlyTotals(history, horizon)
	if err != nil {
		return nil, err
	}
	next := forecasts[len(forecasts)-1]
	return &next, nil
}

// RunWeeklyDigest builds the digest for every known user, then caches, emails
// and logs it. A failure
// for one user is logged and does not stop the others.
func (s *InsightsService) RunWeeklyDigest(ctx context.Context) (DigestRun, error) {
	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return DigestRun{}, fmt.Errorf("failed to list users: %w", err)
	}

	asOf := s.asOf()
	var run DigestRun
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		run.UsersProcessed++

		digest, err := s.GenerateWeeklyDigest(ctx, userID, asOf)
		if err != nil {
			run.Failures++
			s.logger.WithError(err).WithField("user_id", userID).Error("weekly digest failed")
			continue
		}
		run.DigestsBuilt++
		s.cacheDigest(ctx, digest)

		sent, err := s.notifyDigest(ctx, digest)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("failed to send weekly digest")
		}
		if sent {
			run.Emailed++
		}

		entry := s.logger.WithFields(logrus.Fields{
			"user_id":      userID,
			"period_start": digest.PeriodStart,
			"period_end":   digest.PeriodEnd,
			"total_spent":  digest.TotalSpent,
			"total_income": digest.TotalIncome,
			"anomalies":    len(digest.Anomalies),
			"upcoming":     len(digest.Upcoming),
		})
		if digest.NextMonth != nil {
			entry = entry.WithField("next_month_forecast", digest.NextMonth.PredictedExpense)
		}
		entry.Info("weekly digest")
	}

	s.logger.WithFields(logrus.Fields{
		"users":    run.UsersProcessed,
		"digests":  run.DigestsBuilt,
		"emailed":  run.Emailed,
		"failures": run.Failures,
	}).Info("weekly digest run complete")
	return run, nil
}

// ScheduleWeeklyDigest adds the digest run to c on the given cron spec.
func (s *InsightsService) ScheduleWeeklyDigest(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if _, err := s.RunWeeklyDigest(context.Background()); err != nil {
			s.logger.WithError(err).Error("weekly digest run failed")
		}
	})
	if err != nil {
		return 0, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	return id, nil
}
