package store

import "time"

// Session is one clock entry the poller has seen, identified by task name
// and clock-in time.
type Session struct {
	ID          int64     `json:"id" yaml:"id"`
	TaskName    string    `json:"task_name" yaml:"task_name"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	FirstSeenAt time.Time `json:"first_seen_at" yaml:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at" yaml:"last_seen_at"`
}

// Duration is how long the session had been running when last observed.
func (s *Session) Duration() time.Duration {
	d := s.LastSeenAt.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

// Reminder is a single break reminder attempt.
type Reminder struct {
	ID             int64     `json:"id" yaml:"id"`
	TaskName       string    `json:"task_name" yaml:"task_name"`
	StartedAt      time.Time `json:"started_at" yaml:"started_at"`
	FiredAt        time.Time `json:"fired_at" yaml:"fired_at"`
	ElapsedMinutes int64     `json:"elapsed_minutes" yaml:"elapsed_minutes"`
	Delivered      bool      `json:"delivered" yaml:"delivered"`
	Error          string    `json:"error,omitempty" yaml:"error,omitempty"`
}
