// Package email sends plan-ready notifications over SMTP.
package email

import (
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/nucmed/petplan/internal/config"
	"github.com/nucmed/petplan/internal/model"
)

type Service interface {
	SendPlanReady(to string, schedule *model.Schedule) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

// NewService returns the SMTP-backed notifier, or a no-op one when SMTP is
// disabled in the configuration.
func NewService(cfg config.SMTPConfig) Service {
	if !cfg.Enabled {
		return noopService{}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendPlanReady(to string, schedule *model.Schedule) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Day plan ready")
	m.SetBody("text/plain", renderPlanSummary(schedule))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send plan notification: %w", err)
	}
	return nil
}

func renderPlanSummary(schedule *model.Schedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan for %d patients, total cost %.2f CZK.\n\n", len(schedule.Patients), schedule.TotalCost)
	for _, p := range schedule.Patients {
		fmt.Fprintf(&b, "%s  %s  %.2f MBq\n", p.StartTime, p.Surname, p.DoseMBq)
	}
	if !schedule.OptimalityProven {
		b.WriteString("\nNote: the solver hit its time limit; this plan is feasible but optimality is unproven.\n")
	}
	return b.String()
}

type noopService struct{}

func (noopService) SendPlanReady(string, *model.Schedule) error { return nil }
