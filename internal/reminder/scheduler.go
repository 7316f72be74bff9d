package reminder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kylemclaren/clockbar/internal/clock"
	"github.com/kylemclaren/clockbar/internal/config"
	"github.com/kylemclaren/clockbar/internal/store"
)

const summary = "Time for a break"

// ErrZeroInterval is returned by NewScheduler when the reminder grid has no
// spacing.
var ErrZeroInterval = errors.New("notify interval must be positive")

// Recorder persists reminder attempts.
type Recorder interface {
	RecordReminder(reminder *store.Reminder) error
}

// Scheduler sends break reminders on a grid anchored at the clock-in time:
// once NotifyTime has passed, a reminder fires every NotifyInterval at
// offsets of NotifyTime mod NotifyInterval from the start of the task.
type Scheduler struct {
	cfg      config.NotifyConfig
	state    *clock.State
	sink     MultiSink
	recorder Recorder
	clock    clock.Clock
	logger   *log.Logger
}

// NewScheduler validates cfg and creates a scheduler reading from state.
// A sink that is not a MultiSink is delivered to under DefaultSinkTimeout.
func NewScheduler(cfg config.NotifyConfig, state *clock.State, sink Sink, logger *log.Logger) (*Scheduler, error) {
	if cfg.NotifyInterval < time.Second {
		return nil, ErrZeroInterval
	}
	if cfg.NotifyTime < 0 {
		return nil, fmt.Errorf("notify time must not be negative, got %v", cfg.NotifyTime)
	}
	if logger == nil {
		logger = log.Default()
	}
	multi, ok := sink.(MultiSink)
	if !ok {
		multi = MultiSink{{Name: "notification", Sink: sink}}
	}
	return &Scheduler{
		cfg:    cfg,
		state:  state,
		sink:   multi,
		clock:  clock.RealClock{},
		logger: logger,
	}, nil
}

// SetClock replaces the time source.
func (s *Scheduler) SetClock(c clock.Clock) {
	s.clock = c
}

// SetRecorder attaches a reminder recorder.
func (s *Scheduler) SetRecorder(r Recorder) {
	s.recorder = r
}

// Config returns the reminder settings.
func (s *Scheduler) Config() config.NotifyConfig {
	return s.cfg
}

// Run checks the clock, possibly fires a reminder, and sleeps until the
// next check, until ctx is done. Time spent delivering a reminder is taken
// off the following sleep so the grid does not drift.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := s.clock.Now()
		wake := now.Add(s.Step(ctx, now))

		wait := wake.Sub(s.clock.Now())
		if wait <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(wait):
		}
	}
}

// Step performs one check at now and returns how long to sleep before the
// next one.
func (s *Scheduler) Step(ctx context.Context, now time.Time) time.Duration {
	task, ok := s.state.Read()
	if !ok {
		return s.cfg.NotifyInterval
	}

	delta := task.Elapsed(now)
	if ShouldFire(s.cfg, delta) {
		s.fire(ctx, task, now, delta)
	}
	return NextDelay(s.cfg, delta)
}

func (s *Scheduler) fire(ctx context.Context, task clock.ActiveTask, now time.Time, delta time.Duration) {
	minutes := int64(delta / time.Minute)
	n := Notification{
		Summary:        summary,
		Body:           fmt.Sprintf("You've worked for %d minutes", minutes),
		TaskName:       task.TaskName,
		ElapsedMinutes: minutes,
	}

	record := &store.Reminder{
		TaskName:       task.TaskName,
		StartedAt:      task.StartedAt,
		FiredAt:        now,
		ElapsedMinutes: minutes,
		Delivered:      true,
	}
	if err := s.sink.Notify(ctx, n); err != nil {
		s.logger.Printf("Could not send notification: %v", err)
		record.Delivered = false
		record.Error = err.Error()
	}

	if s.recorder != nil {
		if err := s.recorder.RecordReminder(record); err != nil {
			s.logger.Printf("Failed to record reminder: %v", err)
		}
	}
}

// ShouldFire reports whether a check after delta of work sends a reminder.
// Both sides are compared in whole minutes.
func ShouldFire(cfg config.NotifyConfig, delta time.Duration) bool {
	return int64(delta/time.Minute) > int64(cfg.NotifyTime/time.Minute)
}

// NextDelay returns the sleep that lands the next check on the first grid
// point strictly after delta. Grid points sit at NotifyTime mod
// NotifyInterval plus whole multiples of NotifyInterval, measured in
// seconds from the clock-in time. The result is in (0, NotifyInterval].
func NextDelay(cfg config.NotifyConfig, delta time.Duration) time.Duration {
	d := int64(delta / time.Second)
	if d < 0 {
		d = 0
	}
	interval := int64(cfg.NotifyInterval / time.Second)
	offset := int64(cfg.NotifyTime/time.Second) % interval

	next := ((d+interval-offset)/interval)*interval + offset
	return time.Duration(next-d) * time.Second
}

// NextReminder returns the elapsed time of the first grid point strictly
// after delta at which a check fires.
func NextReminder(cfg config.NotifyConfig, delta time.Duration) time.Duration {
	d := int64(delta / time.Second)
	if d < 0 {
		d = 0
	}
	interval := int64(cfg.NotifyInterval / time.Second)
	offset := int64(cfg.NotifyTime/time.Second) % interval

	// Earliest elapsed second that ShouldFire accepts.
	threshold := (int64(cfg.NotifyTime/time.Minute) + 1) * 60
	from := d + 1
	if threshold > from {
		from = threshold
	}
	// from > offset always holds, since offset <= NotifyTime < threshold.
	k := (from - offset + interval - 1) / interval
	return time.Duration(k*interval+offset) * time.Second
}

// Preview describes the upcoming reminder schedule for a task.
type Preview struct {
	Active       bool      `json:"active"`
	NextCheck    time.Time `json:"next_check"`
	NextReminder time.Time `json:"next_reminder"`
	// IntervalProgress is how far through the current grid interval the
	// task is, from 0 to 1.
	IntervalProgress float64 `json:"interval_progress"`
}

// Preview computes when the scheduler will next check and next fire,
// without sending anything.
func (s *Scheduler) Preview(now time.Time) Preview {
	task, ok := s.state.Read()
	if !ok {
		return Preview{NextCheck: now.Add(s.cfg.NotifyInterval)}
	}

	delta := task.Elapsed(now)
	delay := NextDelay(s.cfg, delta)
	grid := NextReminder(s.cfg, delta)

	return Preview{
		Active:           true,
		NextCheck:        now.Add(delay),
		NextReminder:     task.StartedAt.Add(grid),
		IntervalProgress: 1 - float64(delay)/float64(s.cfg.NotifyInterval),
	}
}
