package clock

import (
	"sync"
	"time"
)

// ActiveTask is the task org-clock reported as clocked in at the last
// successful poll. Values are replaced wholesale, never mutated.
type ActiveTask struct {
	TaskName  string    `json:"task_name"`
	StartedAt time.Time `json:"started_at"`
}

// Elapsed returns the whole seconds between StartedAt and now, clamped at
// zero when the start time lies in the future.
func (t ActiveTask) Elapsed(now time.Time) time.Duration {
	elapsed := now.Sub(t.StartedAt).Truncate(time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Equal reports whether both tasks name the same clock entry.
func (t ActiveTask) Equal(other ActiveTask) bool {
	return t.TaskName == other.TaskName && t.StartedAt.Equal(other.StartedAt)
}

// State holds the currently clocked task shared between the poller and its
// readers. The zero value is ready to use and holds no task.
type State struct {
	mu     sync.RWMutex
	task   ActiveTask
	active bool
}

// NewState creates an empty state.
func NewState() *State {
	return &State{}
}

// Write replaces the slot. A nil task clears it.
func (s *State) Write(task *ActiveTask) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task == nil {
		s.task = ActiveTask{}
		s.active = false
		return
	}
	s.task = *task
	s.active = true
}

// Read returns a copy of the current task and whether one is active.
func (s *State) Read() (ActiveTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.task, s.active
}

// Snapshot is Read returning a pointer to a private copy, or nil when no
// task is active.
func (s *State) Snapshot() *ActiveTask {
	task, ok := s.Read()
	if !ok {
		return nil
	}
	return &task
}
