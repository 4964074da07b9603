package notify

import (
	"fmt"
	"html"
	"log"
	"net/smtp"
	"strings"
	"time"

	"realtyhub/internal/config"
	"realtyhub/internal/domain"
)

// EmailService handles sending emails
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// IsEnabled returns whether email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.cfg.Enabled
}

// SendInquiryNotification sends a copy of an inquiry to the admin address
func (s *EmailService) SendInquiryNotification(m domain.ContactMessage) error {
	if s.cfg.AdminEmail == "" {
		log.Printf("[EMAIL] No admin address configured, skipping inquiry %s", m.ID)
		return nil
	}

	subject := fmt.Sprintf("New inquiry from %s", m.Name)
	return s.SendHTMLEmail(s.cfg.AdminEmail, subject, inquiryHTML(m), RenderInquiry(m))
}

func inquiryHTML(m domain.ContactMessage) string {
	row := func(label, value string) string {
		return fmt.Sprintf(`<tr><td style="padding: 8px 12px; font-weight: 600; color: #334155;">%s</td><td style="padding: 8px 12px; color: #0D1A2D;">%s</td></tr>`,
			label, html.EscapeString(value))
	}

	body := strings.ReplaceAll(html.EscapeString(m.Message), "\n", "<br>")

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>New inquiry</title>
</head>
<body style="margin: 0; padding: 24px; background-color: #F8FAFC; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;">
    <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="600" style="margin: 0 auto; background-color: #FFFFFF; border-radius: 12px;">
        <tr>
            <td style="padding: 32px 32px 16px;">
                <h2 style="margin: 0 0 16px; font-size: 22px; color: #0D1A2D;">New contact inquiry</h2>
                <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%%">
                    %s
                    %s
                    %s
                    %s
                </table>
                <p style="margin: 24px 0 0; font-size: 15px; line-height: 1.6; color: #334155;">%s</p>
            </td>
        </tr>
        <tr>
            <td style="padding: 16px 32px 32px; font-size: 13px; color: #64748B;">Message ID %s</td>
        </tr>
    </table>
</body>
</html>`,
		row("Name", m.Name),
		row("Email", m.Email),
		row("Phone", m.Phone),
		row("Received", m.CreatedAt.UTC().Format(time.RFC1123)),
		body,
		html.EscapeString(m.ID),
	)
}

// SendHTMLEmail sends a multipart email with a plain text and an HTML part
func (s *EmailService) SendHTMLEmail(to, subject, htmlBody, textBody string) error {
	if !s.cfg.Enabled {
		log.Printf("[EMAIL] Would send to %s: %s", to, subject)
		return nil
	}

	// Validate configuration
	if s.cfg.SMTPHost == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("email service not properly configured")
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)

	from := s.cfg.FromEmail
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromEmail)
	}

	message := buildMultipart(from, to, subject, htmlBody, textBody)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMultipart(from, to, subject, htmlBody, textBody string) string {
	boundary := fmt.Sprintf("----=_NextPart_%d", time.Now().UnixNano())

	headers := fmt.Sprintf("From: %s\r\n", from) +
		fmt.Sprintf("To: %s\r\n", to) +
		fmt.Sprintf("Subject: %s\r\n", subject) +
		"MIME-Version: 1.0\r\n" +
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary) +
		"\r\n"

	// Plain text part
	message := headers +
		fmt.Sprintf("--%s\r\n", boundary) +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		textBody + "\r\n"

	if htmlBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary) +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			htmlBody + "\r\n"
	}

	return message + fmt.Sprintf("--%s--\r\n", boundary)
}
