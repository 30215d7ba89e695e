// Package scheduler triggers the notification dispatcher once per local
// calendar day, after a configured hour.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/certwatch/certwatch-api/internal/notification"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Runner is the dispatcher capability the scheduler drives.
type Runner interface {
	Run(ctx context.Context, now time.Time) (notification.Result, error)
}

// Scheduler polls on a fixed interval and fires the dispatcher when the
// trigger hour has been reached and no successful run has happened today.
// The last-run marker is deliberately process-local: a restart allows one
// extra run that day, which the oracle's suppression makes harmless.
type Scheduler struct {
	dispatcher   Runner
	logger       zerolog.Logger
	loc          *time.Location
	triggerHour  int
	pollInterval time.Duration
	runTimeout   time.Duration

	cron *cron.Cron
	now  func() time.Time

	mu         sync.Mutex
	lastRunDay string
}

func New(dispatcher Runner, loc *time.Location, triggerHour int, pollInterval, runTimeout time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		dispatcher:   dispatcher,
		logger:       logger.With().Str("component", "scheduler").Logger(),
		loc:          loc,
		triggerHour:  triggerHour,
		pollInterval: pollInterval,
		runTimeout:   runTimeout,
		now:          time.Now,
	}
}

// Start begins polling. Ticks are serialized by cron, so two dispatcher
// runs never overlap within one process.
func (s *Scheduler) Start() error {
	s.cron = cron.New(cron.WithLocation(s.loc))
	if _, err := s.cron.AddFunc("@every "+s.pollInterval.String(), s.Tick); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info().
		Int("trigger_hour", s.triggerHour).
		Str("poll_interval", s.pollInterval.String()).
		Msg("scheduler started")
	return nil
}

// Stop halts the timer and waits for an in-flight tick to drain.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// Tick runs one poll cycle. Exported so the poll logic is drivable without
// the timer.
func (s *Scheduler) Tick() {
	now := s.now().In(s.loc)
	if !s.due(now) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	res, err := s.dispatcher.Run(ctx, now)
	if err != nil {
		// Leave the marker unset: the next tick re-runs, and the oracle
		// keeps already-satisfied milestones quiet.
		s.logger.Error().Err(err).
			Int("sent", res.Sent).
			Int("skipped", res.Skipped).
			Msg("notification run failed; will retry on next poll")
		return
	}

	s.markRun(now)
	s.logger.Info().
		Int("sent", res.Sent).
		Int("skipped", res.Skipped).
		Str("day", dayKey(now)).
		Msg("daily notification run complete")
}

func (s *Scheduler) due(now time.Time) bool {
	if now.Hour() < s.triggerHour {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunDay != dayKey(now)
}

func (s *Scheduler) markRun(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRunDay = dayKey(now)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
