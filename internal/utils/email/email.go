package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/payfirst/internal/config"
	"github.com/Dan9191/payfirst/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendHealthDigest emails a monthly financial health summary
func (s *Sender) SendHealthDigest(to, username string, report *models.HealthReport) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your financial health: %.0f/100 (%s)", report.FinalScore, report.Status)
	e.Text = []byte(digestBody(username, report))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func digestBody(username string, r *models.HealthReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", username)
	fmt.Fprintf(&b, "Your financial health score this month is %.0f out of 100 (%s).\n\n", r.FinalScore, r.Status)

	m := r.Metrics
	b.WriteString("Key metrics:\n")
	fmt.Fprintf(&b, "  Savings rate:        %.2f%%\n", m.SavingsRate)
	fmt.Fprintf(&b, "  Monthly burn rate:   %.2f\n", m.MonthlyBurnRate)
	if m.RunwayUnbounded || m.CashRunwayMonths == nil {
		b.WriteString("  Cash runway:         unlimited\n")
	} else {
		fmt.Fprintf(&b, "  Cash runway:         %.1f months\n", *m.CashRunwayMonths)
	}
	fmt.Fprintf(&b, "  Debt-to-income:      %.2f%%\n", m.DebtToIncomeRatio)
	fmt.Fprintf(&b, "  Credit utilization:  %.2f%%\n", m.CreditUtilization)

	fmt.Fprintf(&b, "\n%s\n", r.Narrative.Summary)
	if len(r.Narrative.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range r.Narrative.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
	}

	b.WriteString("\nBest regards,\nPayFirst")
	return b.String()
}
