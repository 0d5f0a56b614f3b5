package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// digestTimeout bounds one digest run.
const digestTimeout = 30 * time.Minute

// DigestSender is implemented by service.Service.
type DigestSender interface {
	SendHealthDigests(ctx context.Context) (int, error)
}

// Scheduler runs periodic jobs
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

// New creates a scheduler that recovers from panicking jobs and skips a run
// while the previous one is still going.
func New(log *logrus.Logger) *Scheduler {
	logger := cron.PrintfLogger(log)
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		log:  log,
	}
}

// AddHealthDigest schedules the health digest with a standard five-field cron spec.
func (s *Scheduler) AddHealthDigest(spec string, sender DigestSender) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
		defer cancel()

		start := time.Now()
		sent, err := sender.SendHealthDigests(ctx)
		if err != nil {
			s.log.Errorf("Health digest run failed after %d emails: %v", sent, err)
			return
		}
		s.log.Infof("Health digest run finished in %s", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	return nil
}

// Jobs reports the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out with jobs still running")
	}
}
