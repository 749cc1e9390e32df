package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resendlabs/resend-go"
)

// ResendEmailSender delivers password-reset mail through the Resend API.
type ResendEmailSender struct {
	client     *resend.Client
	from       string
	appBaseURL string
	resetPath  string
}

// NewResendEmailSender returns nil when the API key or sender address is
// missing, which disables mail dispatch without disabling the reset flow.
func NewResendEmailSender(apiKey, from, appBaseURL string) *ResendEmailSender {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return nil
	}
	return &ResendEmailSender{
		client:     resend.NewClient(apiKey),
		from:       from,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		resetPath:  "/reset-password",
	}
}

func (s *ResendEmailSender) SendPasswordResetEmail(ctx context.Context, email string, token string) error {
	if s == nil || s.client == nil {
		return errors.New("email sender not configured")
	}
	link := fmt.Sprintf("%s%s?token=%s", s.appBaseURL, s.resetPath, token)
	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email},
		Subject: "Reset your password",
		Html:    fmt.Sprintf("<p>Click to reset your password:</p><p><a href=%q>Reset Password</a></p>", link),
		Text:    fmt.Sprintf("Reset your password: %s", link),
	})
	return err
}
