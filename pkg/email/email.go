package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"inys-backend/internal/domain"
	"net/smtp"
)

// Config holds the SMTP relay settings
type Config struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string // verified sender, may differ from the SMTP login
}

// EmailService sends account notices through an SMTP relay
type EmailService struct {
	cfg  Config
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg Config) *EmailService {
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.Username
	}
	return &EmailService{cfg: cfg, send: smtp.SendMail}
}

var accountCreatedTemplate = template.Must(template.New("account_created").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your INYS account is ready</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0066cc; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Welcome, {{.Name}}</h1>
        </div>
        <div class="content">
            <p>Your application has been accepted and an author account was created for you.</p>
            <p>Sign in at <a href="{{.LoginURL}}">{{.LoginURL}}</a> with <strong>{{.Email}}</strong>
            and the initial password given to you by the editors.</p>
            <p>Please change your password from the profile page after your first login.</p>
        </div>
        <div class="footer">
            <p>This email was sent automatically. Do not reply.</p>
        </div>
    </div>
</body>
</html>`))

// SendAccountCreated tells a newly accepted applicant how to sign in.
func (s *EmailService) SendAccountCreated(_ context.Context, notice domain.AccountNotice) error {
	var body bytes.Buffer
	if err := accountCreatedTemplate.Execute(&body, notice); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.cfg.FromEmail,
		notice.Email,
		"Your INYS author account is ready",
		body.String(),
	))

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, auth, s.cfg.FromEmail, []string{notice.Email}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != ""
}
