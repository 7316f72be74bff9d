package poller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kylemclaren/clockbar/internal/clock"
	"github.com/robfig/cron/v3"
)

// SessionRecorder persists the sessions the poller observes.
type SessionRecorder interface {
	RecordSession(task clock.ActiveTask, seenAt time.Time) error
}

// Poller periodically queries a clock source and publishes the result into
// the shared state. It is the only writer of that state.
type Poller struct {
	source   clock.Source
	state    *clock.State
	recorder SessionRecorder
	logger   *log.Logger
	now      func() time.Time

	cron *cron.Cron
	// job is the scheduled poll wrapped in the skip-if-running chain. The
	// first poll and Trigger run it too, so no two polls ever overlap.
	job cron.Job

	pollMu  sync.Mutex
	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// New creates a poller firing on the given cron schedule (e.g. "@every 5s").
func New(source clock.Source, state *clock.State, schedule string, logger *log.Logger) (*Poller, error) {
	if logger == nil {
		logger = log.Default()
	}

	p := &Poller{
		source: source,
		state:  state,
		logger: logger,
		now:    time.Now,
	}

	cronLogger := cron.PrintfLogger(logger)
	p.cron = cron.New(cron.WithLogger(cronLogger))
	p.job = cron.NewChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)).
		Then(cron.FuncJob(func() { _ = p.PollOnce(context.Background()) }))
	if _, err := p.cron.AddJob(schedule, p.job); err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", schedule, err)
	}
	return p, nil
}

// SetRecorder attaches a session recorder.
func (p *Poller) SetRecorder(recorder SessionRecorder) {
	p.recorder = recorder
}

// Start polls once immediately and then on every scheduled tick.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.job.Run()
	}()
	p.cron.Start()
}

// Trigger polls now in the background unless a poll is already running.
// It does nothing once the poller is stopped.
func (p *Poller) Trigger() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.job.Run()
	}()
}

// Stop halts the schedule and waits for in-flight polls to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	ctx := p.cron.Stop()
	<-ctx.Done()
	p.wg.Wait()
}

// NextPoll returns when the next scheduled poll fires, or the zero time if
// the poller is not running.
func (p *Poller) NextPoll() time.Time {
	entries := p.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// PollOnce queries the source a single time. On failure the previous state
// is kept, since Emacs may only be briefly unreachable while the clock is
// still running. Calls are serialized, so a slow poll never overwrites the
// result of one that started after it.
func (p *Poller) PollOnce(ctx context.Context) error {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()

	task, err := p.source.Poll(ctx)
	if err != nil {
		p.logger.Printf("Something went wrong when checking clock: %v", err)
		return err
	}

	p.state.Write(task)

	if task != nil && p.recorder != nil {
		if err := p.recorder.RecordSession(*task, p.now()); err != nil {
			p.logger.Printf("Failed to record session %q: %v", task.TaskName, err)
		}
	}
	return nil
}
