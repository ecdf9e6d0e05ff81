// Package email provides transactional email sending.
//
// An EmailService interface with an SMTP implementation (Mailhog in
// development, any authenticated SMTP relay in production) and a Noop
// implementation for running without a mail server.
package email

import (
	"context"
	"log/slog"
)

// EmailService defines the transactional emails the application sends.
// All methods are context-aware for timeout and cancellation support.
type EmailService interface {
	// SendWelcomeEmail greets a newly registered recruiter.
	SendWelcomeEmail(ctx context.Context, to, name string) error

	// SendContactRequestEmail forwards an enterprise contact-sales request
	// to the sales inbox.
	SendContactRequestEmail(ctx context.Context, fromEmail, fromName, company, message string) error
}

// Email represents a single email message.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string // SMTP server hostname (e.g., "localhost" for Mailhog)
	Port     int    // SMTP server port (e.g., 1025 for Mailhog)
	Username string // Authentication username (empty for Mailhog)
	Password string // Authentication password (empty for Mailhog)
	From     string // Default sender email address
	FromName string // Default sender display name

	// SalesInbox receives contact-sales requests.
	SalesInbox string
}

const (
	// DefaultFromEmail is the default sender for transactional emails.
	DefaultFromEmail = "noreply@employsmart.io"

	// DefaultFromName is the default sender display name.
	DefaultFromName = "EmploySmart"

	// DefaultSalesInbox receives enterprise contact requests.
	DefaultSalesInbox = "sales@employsmart.io"
)

// Noop discards all emails, logging at debug level. Used when SMTP is not
// configured.
type Noop struct {
	Logger *slog.Logger
}

func (n *Noop) SendWelcomeEmail(ctx context.Context, to, name string) error {
	n.Logger.Debug("email disabled, dropping welcome email", "to", to)
	return nil
}

func (n *Noop) SendContactRequestEmail(ctx context.Context, fromEmail, fromName, company, message string) error {
	n.Logger.Debug("email disabled, dropping contact request", "from", fromEmail)
	return nil
}
