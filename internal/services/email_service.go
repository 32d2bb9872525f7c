package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/ycmovement/membership-api/internal/config"
	"github.com/ycmovement/membership-api/internal/models"
	"github.com/ycmovement/membership-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// EmailService sends transactional mail through Resend. When no API key is
// configured, sends are logged and skipped so registration never blocks on
// mail delivery in development.
type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// SendVerification emails the member their email-confirmation link
func (s *EmailService) SendVerification(ctx context.Context, member *models.Member) error {
	data := struct {
		Name         string
		MembershipID string
		VerifyURL    string
	}{
		Name:         member.FullName,
		MembershipID: member.MembershipID,
		VerifyURL:    fmt.Sprintf("%s/api/v1/verify?token=%s", s.config.AppURL, member.VerificationToken),
	}

	body, err := s.renderTemplate("verify_email.html", data)
	if err != nil {
		return err
	}

	return s.send(member.Email, "Confirm your YCM registration", body)
}

// SendDecision emails the member the outcome of their application review
func (s *EmailService) SendDecision(ctx context.Context, member *models.Member) error {
	data := struct {
		Name         string
		MembershipID string
		AppURL       string
	}{
		Name:         member.FullName,
		MembershipID: member.MembershipID,
		AppURL:       s.config.AppURL,
	}

	tmpl := "application_approved.html"
	subject := "Your YCM membership has been approved"
	if member.Status == models.MemberStatusRejected {
		tmpl = "application_rejected.html"
		subject = "Update on your YCM membership application"
	}

	body, err := s.renderTemplate(tmpl, data)
	if err != nil {
		return err
	}

	return s.send(member.Email, subject, body)
}

func (s *EmailService) send(to, subject, html string) error {
	if s.config.ResendAPIKey == "" {
		logger.Warn("Resend not configured, skipping email", "to", to, "subject", subject)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s", to, subject))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
