package service

import (
	"context"
	"fmt"

	"github.com/Dan9191/payfirst/internal/health"
	"github.com/Dan9191/payfirst/internal/models"
)

// FinancialHealth scores the user's current month and attaches a narrative.
func (s *Service) FinancialHealth(ctx context.Context, userID int64, withBreakdown bool) (*models.HealthReport, error) {
	in, err := s.repo.Snapshot(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	report, err := s.ComputeHealth(ctx, in, withBreakdown)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}
	report.Input = &in
	return report, nil
}

// ComputeHealth scores a caller-supplied snapshot. Invalid input is reported as
// health.ErrInvalidInput. A narrative failure never fails the call: the report
// keeps its score and metrics and carries the fallback narrative instead.
func (s *Service) ComputeHealth(ctx context.Context, in health.Input, withBreakdown bool) (*models.HealthReport, error) {
	res, err := health.Compute(in)
	if err != nil {
		return nil, err
	}

	narrative, available := models.FallbackNarrative(), false
	if s.narrator != nil {
		n, err := s.narrator.Narrate(ctx, res)
		if err != nil {
			s.log.WithError(err).Warn("Narrative generation failed, using fallback")
		} else {
			narrative, available = n, true
		}
	}

	return models.NewHealthReport(res, narrative, available, withBreakdown, s.now().UTC()), nil
}

// SendHealthDigests emails every user their current report. Failures for one
// user are logged and do not stop the run. It returns the number of digests sent.
func (s *Service) SendHealthDigests(ctx context.Context) (int, error) {
	if s.mailer == nil {
		return 0, fmt.Errorf("mailer is not configured")
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		report, err := s.FinancialHealth(ctx, u.ID, false)
		if err != nil {
			s.log.Errorf("Health digest skipped for user %d: %v", u.ID, err)
			continue
		}
		if err := s.mailer.SendHealthDigest(u.Email, u.Username, report); err != nil {
			s.log.Errorf("Health digest not delivered to user %d: %v", u.ID, err)
			continue
		}
		sent++
	}

	s.log.Infof("Health digest sent to %d of %d users", sent, len(users))
	return sent, nil
}
