package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kylemclaren/clockbar/internal/clock"
	_ "github.com/mattn/go-sqlite3"
)

// FileName is the database file inside the data directory.
const FileName = "clockbar.db"

// Store wraps the SQLite history database
type Store struct {
	conn *sql.DB
}

// New opens (and migrates) the database at dbPath
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_name TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		first_seen_at DATETIME NOT NULL,
		last_seen_at DATETIME NOT NULL,
		UNIQUE (task_name, started_at)
	);

	CREATE TABLE IF NOT EXISTS reminders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_name TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		fired_at DATETIME NOT NULL,
		elapsed_minutes INTEGER NOT NULL,
		delivered INTEGER NOT NULL DEFAULT 0,
		error TEXT DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_last_seen_at ON sessions(last_seen_at);
	CREATE INDEX IF NOT EXISTS idx_reminders_fired_at ON reminders(fired_at);
	`

	_, err := s.conn.Exec(schema)
	return err
}

// RecordSession inserts the session on first sight and bumps last_seen_at
// afterwards
func (s *Store) RecordSession(task clock.ActiveTask, seenAt time.Time) error {
	_, err := s.conn.Exec(`
		INSERT INTO sessions (task_name, started_at, first_seen_at, last_seen_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (task_name, started_at) DO UPDATE SET last_seen_at = excluded.last_seen_at
	`, task.TaskName, task.StartedAt.UTC(), seenAt.UTC(), seenAt.UTC())
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// ListSessions returns the most recently seen sessions first
func (s *Store) ListSessions(limit int) ([]*Session, error) {
	rows, err := s.conn.Query(`
		SELECT id, task_name, started_at, first_seen_at, last_seen_at
		FROM sessions ORDER BY last_seen_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session := &Session{}
		if err := rows.Scan(&session.ID, &session.TaskName, &session.StartedAt, &session.FirstSeenAt, &session.LastSeenAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// RecordReminder stores a reminder attempt
func (s *Store) RecordReminder(reminder *Reminder) error {
	result, err := s.conn.Exec(`
		INSERT INTO reminders (task_name, started_at, fired_at, elapsed_minutes, delivered, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, reminder.TaskName, reminder.StartedAt.UTC(), reminder.FiredAt.UTC(), reminder.ElapsedMinutes, reminder.Delivered, reminder.Error)
	if err != nil {
		return fmt.Errorf("record reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	reminder.ID = id
	return nil
}

// ListReminders returns the latest reminders first
func (s *Store) ListReminders(limit int) ([]*Reminder, error) {
	rows, err := s.conn.Query(`
		SELECT id, task_name, started_at, fired_at, elapsed_minutes, delivered, error
		FROM reminders ORDER BY fired_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*Reminder
	for rows.Next() {
		reminder := &Reminder{}
		if err := rows.Scan(&reminder.ID, &reminder.TaskName, &reminder.StartedAt, &reminder.FiredAt, &reminder.ElapsedMinutes, &reminder.Delivered, &reminder.Error); err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

// PruneBefore deletes sessions last seen and reminders fired before cutoff
func (s *Store) PruneBefore(cutoff time.Time) (int64, error) {
	var total int64
	for _, query := range []string{
		"DELETE FROM sessions WHERE last_seen_at < ?",
		"DELETE FROM reminders WHERE fired_at < ?",
	} {
		result, err := s.conn.Exec(query, cutoff.UTC())
		if err != nil {
			return total, err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
