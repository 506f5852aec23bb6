// Package mailer delivers the dashboard's transactional email through
// SendGrid and audits every send in the email_logs table.
package mailer

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/findash/findash/internal/domain"
)

// AuditStore records outbound email.
type AuditStore interface {
	InsertEmailLog(ctx context.Context, log *domain.EmailLog) error
}

// Attachment is an inline file (chart PNGs in report emails).
type Attachment struct {
	Filename    string
	ContentType string
	ContentID   string
	Data        []byte
}

// Message is one outbound email.
type Message struct {
	To          string
	UserID      string
	Subject     string
	HTML        string
	EmailType   string
	Attachments []Attachment
}

// Mailer sends email through SendGrid.
type Mailer struct {
	client  *sendgrid.Client
	from    *mail.Email
	audit   AuditStore
	dashURL string
	log     zerolog.Logger
}

// New creates a mailer with the given sender identity. dashboardURL is used
// for links inside the bodies.
func New(apiKey, fromEmail, fromName, dashboardURL string, audit AuditStore, log zerolog.Logger) *Mailer {
	return &Mailer{
		client:  sendgrid.NewSendClient(apiKey),
		from:    mail.NewEmail(fromName, fromEmail),
		audit:   audit,
		dashURL: dashboardURL,
		log:     log.With().Str("component", "mailer").Logger(),
	}
}

// Send delivers one message and logs it. The audit insert is best-effort: a
// failed insert never fails a delivered email.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mailer: recipient is required")
	}

	sgMsg := mail.NewSingleEmail(m.from, msg.Subject, mail.NewEmail("", msg.To), "", msg.HTML)
	for _, att := range msg.Attachments {
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(att.Data))
		a.SetType(att.ContentType)
		a.SetFilename(att.Filename)
		a.SetDisposition("inline")
		a.SetContentID(att.ContentID)
		sgMsg.AddAttachment(a)
	}

	resp, err := m.client.SendWithContext(ctx, sgMsg)
	if err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mailer: sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}

	m.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("email_type", msg.EmailType).
		Msg("Email sent")

	if m.audit != nil {
		if err := m.audit.InsertEmailLog(ctx, &domain.EmailLog{
			UserID:    msg.UserID,
			EmailTo:   msg.To,
			Subject:   msg.Subject,
			Content:   msg.HTML,
			EmailType: msg.EmailType,
		}); err != nil {
			m.log.Error().Err(err).Str("to", msg.To).Msg("Failed to log email")
		}
	}

	return nil
}

// SendWelcome sends the post-signup welcome email.
func (m *Mailer) SendWelcome(ctx context.Context, to, userID string) error {
	return m.Send(ctx, Message{
		To:        to,
		UserID:    userID,
		Subject:   "Welcome to Finance Dashboard",
		HTML:      welcomeHTML(),
		EmailType: "welcome",
	})
}

// SendPasswordReset sends the recovery-link email.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, userID, actionLink string) error {
	return m.Send(ctx, Message{
		To:        to,
		UserID:    userID,
		Subject:   "Reset Your Finance Dashboard Password",
		HTML:      passwordResetHTML(actionLink),
		EmailType: "password_reset",
	})
}

// BudgetAlert carries what the tiered budget-alert email needs.
type BudgetAlert struct {
	To          string
	UserID      string
	Category    string
	PercentUsed float64
}

// SendBudgetAlert sends the threshold-toned budget email.
func (m *Mailer) SendBudgetAlert(ctx context.Context, alert BudgetAlert) error {
	content := budgetAlertContent(alert.Category, alert.PercentUsed, m.dashURL)
	return m.Send(ctx, Message{
		To:        alert.To,
		UserID:    alert.UserID,
		Subject:   content.Subject,
		HTML:      content.HTML,
		EmailType: "budget_alert",
	})
}

// SendReport wraps generated report text in the report template and delivers
// it with any chart attachments.
func (m *Mailer) SendReport(ctx context.Context, to, userID string, frequency domain.Frequency, body string, charts []Attachment) error {
	return m.Send(ctx, Message{
		To:          to,
		UserID:      userID,
		Subject:     fmt.Sprintf("Your %s Financial Report", frequency.Label()),
		HTML:        reportHTML(frequency, body, len(charts) > 0),
		EmailType:   fmt.Sprintf("%s-financial-report", frequency),
		Attachments: charts,
	})
}
