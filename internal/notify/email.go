// Package notify delivers weekly digests by email.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/castlemilk/pfinance/insights/internal/service"
)

// SMTPConfig is the relay used for outgoing mail.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Mailer sends digests over SMTP.
type Mailer struct {
	cfg    SMTPConfig
	logger *logrus.Logger
	send   func(e *email.Email) error
}

var _ service.DigestNotifier = (*Mailer)(nil)

// NewMailer returns a Mailer using PLAIN auth against cfg.Host.
func NewMailer(cfg SMTPConfig, logger *logrus.Logger) *Mailer {
	m := &Mailer{cfg: cfg, logger: logger}
	m.send = func(e *email.Email) error {
		addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
		var auth smtp.Auth
		if cfg.Username != "" {
			auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		}
		return e.Send(addr, auth)
	}
	return m
}

// NotifyDigest emails the digest to recipient as plain text.
func (m *Mailer) NotifyDigest(ctx context.Context, recipient string, digest service.WeeklyDigest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{recipient}
	e.Subject = fmt.Sprintf("Your week in money: %s to %s", digest.PeriodStart, digest.PeriodEnd)
	e.Text = renderDigest(digest)

	if err := m.send(e); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}
	m.logger.WithFields(logrus.Fields{
		"user_id": digest.UserID,
		"subject": e.Subject,
	}).Info("Digest email sent")
	return nil
}

func renderDigest(d service.WeeklyDigest) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Spent %.2f and received %.2f between %s and %s.\n", d.TotalSpent, d.TotalIncome, d.PeriodStart, d.PeriodEnd)

	if len(d.TopCategories) > 0 {
		b.WriteString("\nWhere it went:\n")
		for _, c := range d.TopCategories {
			fmt.Fprintf(&b, "  %-14s %10.2f  (%.1f%%)\n", c.Label, c.Amount, c.Percentage)
		}
	}

	if len(d.Anomalies) > 0 {
		b.WriteString("\nUnusual transactions:\n")
		for _, a := range d.Anomalies {
			fmt.Fprintf(&b, "  %s  %-24s %10.2f  (usually %.2f)\n",
				a.Transaction.Date.Format("Jan 02"), a.Transaction.Description, a.ActualAmount, a.ExpectedAmount)
		}
	}

	if len(d.Upcoming) > 0 {
		b.WriteString("\nComing up:\n")
		for _, u := range d.Upcoming {
			fmt.Fprintf(&b, "  %s  %-24s %10.2f\n", u.DueDate.Format("Jan 02"), u.Description, u.Amount)
		}
	}

	if d.NextMonth != nil {
		fmt.Fprintf(&b, "\nNext month we expect around %.2f of spending.\n", d.NextMonth.PredictedExpense)
	}
	return []byte(strings.TrimRight(b.String(), "\n") + "\n")
}
