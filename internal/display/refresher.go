package display

import (
	"context"
	"log"
	"time"

	"github.com/kylemclaren/clockbar/internal/clock"
)

// Refresher renders the shared state once per wall-clock second.
type Refresher struct {
	state  *clock.State
	sink   OutputSink
	clock  clock.Clock
	logger *log.Logger
}

// NewRefresher creates a refresher emitting to sink.
func NewRefresher(state *clock.State, sink OutputSink, logger *log.Logger) *Refresher {
	if logger == nil {
		logger = log.Default()
	}
	return &Refresher{
		state:  state,
		sink:   sink,
		clock:  clock.RealClock{},
		logger: logger,
	}
}

// SetClock replaces the time source.
func (r *Refresher) SetClock(c clock.Clock) {
	r.clock = c
}

// Run emits a line, then sleeps to the next whole second, until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.Refresh()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(UntilNextSecond(r.clock.Now())):
		}
	}
}

// Refresh renders and emits a single line.
func (r *Refresher) Refresh() StatusLine {
	task, active := r.state.Read()
	line := Render(task, active, r.clock.Now())
	if err := r.sink.Emit(line); err != nil {
		r.logger.Printf("Could not emit status line: %v", err)
	}
	return line
}

// UntilNextSecond returns the time left until the next integral second.
func UntilNextSecond(now time.Time) time.Duration {
	return time.Second - time.Duration(now.Nanosecond())
}
