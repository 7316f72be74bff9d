package api

import "time"

// StatusResponse describes the current clock state
type StatusResponse struct {
	Active           bool       `json:"active"`
	TaskName         string     `json:"task_name,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	ElapsedSeconds   int64      `json:"elapsed_seconds"`
	Text             string     `json:"text"`
	RemindersEnabled bool       `json:"reminders_enabled"`
	NextReminderAt   *time.Time `json:"next_reminder_at,omitempty"`
}

// SessionResponse represents a clock session in API responses
type SessionResponse struct {
	ID              int64     `json:"id"`
	TaskName        string    `json:"task_name"`
	StartedAt       time.Time `json:"started_at"`
	LastSeenAt      time.Time `json:"last_seen_at"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// SessionsResponse represents a list of sessions
type SessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

// ReminderResponse represents a reminder in API responses
type ReminderResponse struct {
	ID             int64     `json:"id"`
	TaskName       string    `json:"task_name"`
	FiredAt        time.Time `json:"fired_at"`
	ElapsedMinutes int64     `json:"elapsed_minutes"`
	Delivered      bool      `json:"delivered"`
	Error          string    `json:"error,omitempty"`
}

// RemindersResponse represents a list of reminders
type RemindersResponse struct {
	Reminders []ReminderResponse `json:"reminders"`
	Total     int                `json:"total"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// SSEStatusLine represents a status line sent via SSE
type SSEStatusLine struct {
	Text      string   `json:"text"`
	Tooltip   string   `json:"tooltip"`
	Class     []string `json:"class"`
	Timestamp string   `json:"timestamp"`
}
