package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/certwatch/certwatch-api/internal/notification"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeRunner struct {
	calls []time.Time
	err   error
}

func (f *fakeRunner) Run(_ context.Context, now time.Time) (notification.Result, error) {
	f.calls = append(f.calls, now)
	return notification.Result{Sent: 1}, f.err
}

func newTestScheduler(runner *fakeRunner) *Scheduler {
	return New(runner, time.UTC, 9, 5*time.Minute, time.Minute, zerolog.Nop())
}

func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 15, hour, min, 0, 0, time.UTC)
}

func TestTickWaitsForTriggerHour(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestScheduler(runner)

	s.now = func() time.Time { return at(8, 55) }
	s.Tick()
	assert.Empty(t, runner.calls)

	s.now = func() time.Time { return at(9, 0) }
	s.Tick()
	assert.Len(t, runner.calls, 1)
}

func TestTickRunsOncePerDay(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestScheduler(runner)

	s.now = func() time.Time { return at(9, 5) }
	s.Tick()
	s.now = func() time.Time { return at(9, 10) }
	s.Tick()
	s.now = func() time.Time { return at(17, 0) }
	s.Tick()
	assert.Len(t, runner.calls, 1)

	// Next day, past the trigger hour again.
	s.now = func() time.Time { return at(9, 5).AddDate(0, 0, 1) }
	s.Tick()
	assert.Len(t, runner.calls, 2)
}

func TestTickRetriesAfterFailedRun(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("smtp down")}
	s := newTestScheduler(runner)

	s.now = func() time.Time { return at(9, 5) }
	s.Tick()
	assert.Len(t, runner.calls, 1)

	// Failure leaves the day marker unset: the next poll tries again.
	s.now = func() time.Time { return at(9, 10) }
	s.Tick()
	assert.Len(t, runner.calls, 2)

	runner.err = nil
	s.now = func() time.Time { return at(9, 15) }
	s.Tick()
	assert.Len(t, runner.calls, 3)

	// Now marked: no further runs today.
	s.now = func() time.Time { return at(9, 20) }
	s.Tick()
	assert.Len(t, runner.calls, 3)
}

func TestStopWithoutStartIsSafe(t *testing.T) {
	s := newTestScheduler(&fakeRunner{})
	s.Stop()
}
