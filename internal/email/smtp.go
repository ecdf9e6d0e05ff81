package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"path/filepath"
	"strings"
	"time"
)

// SMTPEmailService sends emails via SMTP. Works against Mailhog in
// development (no auth) and any standard relay with plain auth.
type SMTPEmailService struct {
	config    SMTPConfig
	baseURL   string
	templates *template.Template
	logger    *slog.Logger
}

// NewSMTPEmailService creates an SMTP-backed email service. Templates are
// loaded from templatesDir (*.html).
func NewSMTPEmailService(config SMTPConfig, baseURL, templatesDir string, logger *slog.Logger) (*SMTPEmailService, error) {
	if config.From == "" {
		config.From = DefaultFromEmail
	}
	if config.FromName == "" {
		config.FromName = DefaultFromName
	}
	if config.SalesInbox == "" {
		config.SalesInbox = DefaultSalesInbox
	}

	pattern := filepath.Join(templatesDir, "*.html")
	templates, err := template.ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}

	return &SMTPEmailService{
		config:    config,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		templates: templates,
		logger:    logger,
	}, nil
}

// SendWelcomeEmail greets a newly registered recruiter.
func (s *SMTPEmailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	data := map[string]interface{}{
		"Name":         name,
		"DashboardURL": s.baseURL + "/dashboard",
		"Year":         time.Now().Year(),
	}

	htmlBody, err := s.renderTemplate("welcome.html", data)
	if err != nil {
		return fmt.Errorf("render welcome email: %w", err)
	}

	textBody := fmt.Sprintf(`Hi %s,

Welcome to EmploySmart! Your account is ready.

Head to your dashboard to publish your first job posting and upload CVs
for text extraction:

%s

Thanks,
The EmploySmart Team
`, name, s.baseURL+"/dashboard")

	return s.send(ctx, Email{
		To:       to,
		Subject:  "Welcome to EmploySmart",
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
}

// SendContactRequestEmail forwards an enterprise contact request to sales.
func (s *SMTPEmailService) SendContactRequestEmail(ctx context.Context, fromEmail, fromName, company, message string) error {
	data := map[string]interface{}{
		"Email":   fromEmail,
		"Name":    fromName,
		"Company": company,
		"Message": message,
		"Year":    time.Now().Year(),
	}

	htmlBody, err := s.renderTemplate("contact_request.html", data)
	if err != nil {
		return fmt.Errorf("render contact request email: %w", err)
	}

	textBody := fmt.Sprintf(`New enterprise contact request

Name: %s
Email: %s
Company: %s

%s
`, fromName, fromEmail, company, message)

	return s.send(ctx, Email{
		To:       s.config.SalesInbox,
		Subject:  fmt.Sprintf("Enterprise contact request from %s", company),
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
}

// send delivers one message over SMTP.
func (s *SMTPEmailService) send(ctx context.Context, email Email) error {
	msg := s.buildMessage(email)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := smtp.SendMail(addr, auth, s.config.From, []string{email.To}, msg); err != nil {
		s.logger.Error("failed to send email",
			"to", email.To,
			"subject", email.Subject,
			"error", err,
		)
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("email sent", "to", email.To, "subject", email.Subject)
	return nil
}

// buildMessage constructs the raw multipart message with headers.
func (s *SMTPEmailService) buildMessage(email Email) []byte {
	var buf bytes.Buffer

	fromHeader := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	buf.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", email.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	boundary := "===============EMPLOYSMART_BOUNDARY==============="
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.TextBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.HTMLBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return buf.Bytes()
}

func (s *SMTPEmailService) renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
