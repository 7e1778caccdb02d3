package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"finance-tracker/internal/config"
	"finance-tracker/internal/logger"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers plain-text mail through the configured relay. The
// circuit breaker stops hammering a relay that keeps failing.
type SMTPMailer struct {
	cfg      config.SMTPConfig
	breaker  CircuitBreakerInterface
	metrics  MetricsRecorderInterface
	sendMail sendMailFunc
}

func NewSMTPMailer(cfg config.SMTPConfig, breaker CircuitBreakerInterface, metrics MetricsRecorderInterface) MailerInterface {
	return &SMTPMailer{
		cfg:      cfg,
		breaker:  breaker,
		metrics:  metrics,
		sendMail: smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.breaker != nil && m.breaker.IsOpen() {
		m.record("rejected")
		return ErrCircuitBreakerOpen
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	err := m.sendMail(m.cfg.Addr(), auth, m.cfg.From, []string{to}, buildMessage(m.cfg.From, to, subject, body))
	if err != nil {
		if m.breaker != nil {
			m.breaker.RecordFailure()
		}
		m.record("failed")
		return fmt.Errorf("failed to send mail: %w", err)
	}

	if m.breaker != nil {
		m.breaker.RecordSuccess()
	}
	m.record("sent")
	return nil
}

func (m *SMTPMailer) record(status string) {
	if m.metrics != nil {
		m.metrics.IncrementCounter(MetricEmailSent, map[string]string{"status": status})
	}
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + stripNewlines(subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// LogMailer writes messages to the log. Used when no SMTP relay is set.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(l *slog.Logger) MailerInterface {
	return &LogMailer{logger: logger.WithComponent(l, "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.InfoContext(ctx, "email not sent, smtp disabled",
		"to", to,
		"subject", subject,
		"body_length", len(body))
	return nil
}

// NewMailer picks the SMTP mailer when a relay is configured
func NewMailer(cfg config.SMTPConfig, breaker CircuitBreakerInterface, metrics MetricsRecorderInterface, l *slog.Logger) MailerInterface {
	if !cfg.Enabled() {
		return NewLogMailer(l)
	}
	return NewSMTPMailer(cfg, breaker, metrics)
}
