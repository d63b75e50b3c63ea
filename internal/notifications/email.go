package notifications

import (
	"context"
	"fmt"
	"net/smtp"

	"parkwise/internal/shared/config"
	"parkwise/pkg/logger"
)

// EmailSender sends assignment mails over SMTP. When no SMTP host is
// configured it degrades to logging the would-be mail, which keeps local
// development working without a mail relay.
type EmailSender struct {
	cfg config.EmailConfig
	log *logger.Logger
}

func NewEmailSender(cfg config.EmailConfig, log *logger.Logger) *EmailSender {
	return &EmailSender{cfg: cfg, log: log}
}

func (s *EmailSender) SendAssignment(ctx context.Context, assignment *Assignment) error {
	subject := fmt.Sprintf("Parking Spot Assigned: %s", assignment.SpotID)
	body := fmt.Sprintf(
		"Hello %s,\n\nWelcome back!\nOur system has assigned you an optimal parking spot.\n\nYour Spot: %s\nFloor: %d\n\nPlease drive safely.",
		assignment.DriverName, assignment.SpotID, assignment.Floor,
	)

	if s.cfg.SMTPHost == "" {
		s.log.Info("SMTP not configured, logging notification instead",
			"to", assignment.Email,
			"subject", subject,
		)
		return nil
	}

	message := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.FromEmail, assignment.Email, subject, body,
	))

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{assignment.Email}, message); err != nil {
		return fmt.Errorf("failed to send assignment email: %w", err)
	}

	s.log.Info("assignment email sent",
		"to", assignment.Email,
		"spot_id", assignment.SpotID,
	)
	return nil
}
