package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendWelcome(ctx context.Context, toEmail, name string) error
	SendQuizAccessCode(ctx context.Context, toEmail, quizName, code string) error
	SendPasswordReset(ctx context.Context, toEmail, resetLink string) error
}

// NoopEmailService is used when no email provider is configured.
type NoopEmailService struct{}

func (s *NoopEmailService) SendWelcome(ctx context.Context, toEmail, name string) error {
	log.Printf("[EmailService] noop send welcome to=%s", toEmail)
	return nil
}

func (s *NoopEmailService) SendQuizAccessCode(ctx context.Context, toEmail, quizName, code string) error {
	log.Printf("[EmailService] noop send quiz access code to=%s quiz=%q", toEmail, quizName)
	return nil
}

func (s *NoopEmailService) SendPasswordReset(ctx context.Context, toEmail, resetLink string) error {
	log.Printf("[EmailService] noop send password reset to=%s", toEmail)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendWelcome(ctx context.Context, toEmail, name string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Welcome to QuizMaker",
		Text:    fmt.Sprintf("Hi %s,\n\nYour account has been created. Start building quizzes right away.", name),
		Html:    fmt.Sprintf("<p>Hi <strong>%s</strong>,</p><p>Your account has been created. Start building quizzes right away.</p>", name),
	}
	return s.sendWithRetry(ctx, params)
}

func (s *ResendEmailService) SendQuizAccessCode(ctx context.Context, toEmail, quizName, code string) error {
	if toEmail == "" || code == "" {
		return fmt.Errorf("toEmail and code are required")
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Access code for quiz %q", quizName),
		Text:    fmt.Sprintf("Your quiz %q is private. Participants can join with code %s.", quizName, code),
		Html:    fmt.Sprintf("<p>Your quiz <strong>%s</strong> is private.</p><p>Participants can join with code <strong>%s</strong>.</p>", quizName, code),
	}
	return s.sendWithRetry(ctx, params)
}

func (s *ResendEmailService) SendPasswordReset(ctx context.Context, toEmail, resetLink string) error {
	if toEmail == "" || resetLink == "" {
		return fmt.Errorf("toEmail and resetLink are required")
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Reset your password",
		Text:    fmt.Sprintf("Follow this link to reset your password: %s\nThe link expires in 1 hour.", resetLink),
		Html:    fmt.Sprintf("<p><a href=%q>Reset your password</a></p><p>The link expires in 1 hour.</p>", resetLink),
	}
	return s.sendWithRetry(ctx, params)
}

func (s *ResendEmailService) sendWithRetry(ctx context.Context, params *resend.SendEmailRequest) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithContext(ctx, params)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary()) {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
