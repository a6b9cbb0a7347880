package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/agendly/scheduler-api/internal/config"
)

type Service interface {
	SendBookingConfirmation(ctx context.Context, to, name string, bookings int, firstDate string) error
	SendCustom(ctx context.Context, to, subject, body string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.EmailConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendBookingConfirmation(ctx context.Context, to, name string, bookings int, firstDate string) error {
	subject := "Booking confirmed"
	body := fmt.Sprintf("Hi %s,\n\n%d booking(s) were added to your schedule starting %s.\n", name, bookings, firstDate)
	return s.SendCustom(ctx, to, subject, body)
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
