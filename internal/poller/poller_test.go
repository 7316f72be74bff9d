package poller

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kylemclaren/clockbar/internal/clock"
)

type scriptedSource struct {
	mu      sync.Mutex
	results []result
	calls   int
}

type result struct {
	task *clock.ActiveTask
	err  error
}

func (s *scriptedSource) Poll(ctx context.Context) (*clock.ActiveTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.results[s.calls%len(s.results)]
	s.calls++
	return r.task, r.err
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type memRecorder struct {
	mu    sync.Mutex
	seen  []clock.ActiveTask
	fails bool
}

func (r *memRecorder) RecordSession(task clock.ActiveTask, seenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, task)
	if r.fails {
		return errors.New("disk full")
	}
	return nil
}

func newTestPoller(t *testing.T, src clock.Source, state *clock.State) (*Poller, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	p, err := New(src, state, "@every 1h", log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	return p, &buf
}

func TestPollOnceWritesResult(t *testing.T) {
	task := &clock.ActiveTask{TaskName: "Write", StartedAt: time.Unix(1700000000, 0)}
	src := &scriptedSource{results: []result{{task: task}, {task: nil}}}
	state := clock.NewState()
	p, _ := newTestPoller(t, src, state)

	if err := p.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	got, ok := state.Read()
	if !ok || !got.Equal(*task) {
		t.Fatalf("state = %+v, %v", got, ok)
	}

	if err := p.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := state.Read(); ok {
		t.Fatal("clock-out should clear the state")
	}
}

func TestPollFailureKeepsPreviousTask(t *testing.T) {
	task := &clock.ActiveTask{TaskName: "Write", StartedAt: time.Unix(1700000000, 0)}
	queryErr := &clock.QueryError{Query: clock.QueryMarker, Err: errors.New("server not running")}
	src := &scriptedSource{results: []result{{task: task}, {err: queryErr}}}
	state := clock.NewState()
	p, logs := newTestPoller(t, src, state)

	_ = p.PollOnce(context.Background())
	if err := p.PollOnce(context.Background()); !errors.Is(err, queryErr) {
		t.Fatalf("expected query error, got %v", err)
	}

	got, ok := state.Read()
	if !ok || !got.Equal(*task) {
		t.Fatalf("failed poll changed state to %+v, %v", got, ok)
	}
	if !strings.Contains(logs.String(), "server not running") {
		t.Errorf("failure not logged: %q", logs.String())
	}
}

func TestPollRecordsSessions(t *testing.T) {
	task := &clock.ActiveTask{TaskName: "Write", StartedAt: time.Unix(1700000000, 0)}
	src := &scriptedSource{results: []result{{task: task}, {task: nil}}}
	rec := &memRecorder{fails: true}
	p, logs := newTestPoller(t, src, clock.NewState())
	p.SetRecorder(rec)

	if err := p.PollOnce(context.Background()); err != nil {
		t.Fatalf("recorder failure must not fail the poll: %v", err)
	}
	_ = p.PollOnce(context.Background())

	if len(rec.seen) != 1 || rec.seen[0].TaskName != "Write" {
		t.Fatalf("recorded %+v", rec.seen)
	}
	if !strings.Contains(logs.String(), "disk full") {
		t.Errorf("recorder failure not logged")
	}
}

func TestStartPollsImmediately(t *testing.T) {
	task := &clock.ActiveTask{TaskName: "Write", StartedAt: time.Unix(1700000000, 0)}
	src := &scriptedSource{results: []result{{task: task}}}
	state := clock.NewState()
	p, _ := newTestPoller(t, src, state)

	p.Start()
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for src.Calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if src.Calls() == 0 {
		t.Fatal("poller did not poll on start")
	}
	if p.NextPoll().IsZero() {
		t.Error("expected a scheduled next poll")
	}
}

func TestNewRejectsBadSchedule(t *testing.T) {
	if _, err := New(&scriptedSource{}, clock.NewState(), "sometimes", nil); err == nil {
		t.Fatal("expected error for bad schedule")
	}
}

// gatedSource blocks its first poll until release is closed and tracks how
// many polls run at once.
type gatedSource struct {
	mu        sync.Mutex
	calls     int
	active    int
	maxActive int
	started   chan struct{}
	release   chan struct{}
	first     *clock.ActiveTask
}

func newGatedSource(first *clock.ActiveTask) *gatedSource {
	return &gatedSource{
		first:   first,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *gatedSource) Poll(ctx context.Context) (*clock.ActiveTask, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.active++
	if s.active > s.maxActive {
		s.maxActive = s.active
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	if call == 1 {
		close(s.started)
		<-s.release
		return s.first, nil
	}
	return nil, nil
}

func (s *gatedSource) stats() (calls, maxActive int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls, s.maxActive
}

func TestSlowFirstPollIsNotOverlapped(t *testing.T) {
	task := &clock.ActiveTask{TaskName: "slow", StartedAt: time.Unix(1700000000, 0)}
	src := newGatedSource(task)
	state := clock.NewState()
	var logs bytes.Buffer
	p, err := New(src, state, "@every 1s", log.New(&logs, "", 0))
	if err != nil {
		t.Fatal(err)
	}

	p.Start()
	<-src.started

	// A scheduled tick and a manual trigger both land while the first poll
	// is still waiting on Emacs.
	p.Trigger()
	time.Sleep(1300 * time.Millisecond)

	if calls, _ := src.stats(); calls != 1 {
		t.Fatalf("polls overlapped the slow first poll: %d calls", calls)
	}

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the first poll was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(src.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the poll finished")
	}

	if _, maxActive := src.stats(); maxActive != 1 {
		t.Errorf("max concurrent polls = %d", maxActive)
	}
	got, ok := state.Read()
	if !ok || got.TaskName != "slow" {
		t.Errorf("state = %+v, %v", got, ok)
	}
}

func TestPollOnceSerializesCallers(t *testing.T) {
	task := &clock.ActiveTask{TaskName: "first", StartedAt: time.Unix(1700000000, 0)}
	src := newGatedSource(task)
	state := clock.NewState()
	p, _ := newTestPoller(t, src, state)

	firstDone := make(chan struct{})
	go func() {
		_ = p.PollOnce(context.Background())
		close(firstDone)
	}()
	<-src.started

	secondDone := make(chan struct{})
	go func() {
		_ = p.PollOnce(context.Background())
		close(secondDone)
	}()

	time.Sleep(50 * time.Millisecond)
	if calls, _ := src.stats(); calls != 1 {
		t.Fatalf("second poll started before the first finished: %d calls", calls)
	}

	close(src.release)
	<-firstDone
	<-secondDone

	// The later poll saw the clock stopped and its result wins.
	if _, ok := state.Read(); ok {
		t.Error("older result overwrote the newer one")
	}
}

func TestTriggerAfterStopDoesNothing(t *testing.T) {
	src := &scriptedSource{results: []result{{task: nil}}}
	p, _ := newTestPoller(t, src, clock.NewState())
	p.Start()
	p.Stop()

	calls := src.Calls()
	p.Trigger()
	time.Sleep(20 * time.Millisecond)
	if src.Calls() != calls {
		t.Error("Trigger polled after Stop")
	}
}
