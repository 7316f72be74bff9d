package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kylemclaren/clockbar/internal/clock"
	"github.com/kylemclaren/clockbar/internal/config"
	"github.com/kylemclaren/clockbar/internal/display"
	"github.com/kylemclaren/clockbar/internal/reminder"
	"github.com/kylemclaren/clockbar/internal/store"
	"github.com/kylemclaren/clockbar/internal/stream"
)

type fakeHistory struct {
	sessions  []*store.Session
	reminders []*store.Reminder
	err       error
	lastLimit int
}

func (f *fakeHistory) ListSessions(limit int) ([]*store.Session, error) {
	f.lastLimit = limit
	return f.sessions, f.err
}

func (f *fakeHistory) ListReminders(limit int) ([]*store.Reminder, error) {
	f.lastLimit = limit
	return f.reminders, f.err
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthCheck(t *testing.T) {
	s := NewServer(clock.NewState(), nil, nil, nil)
	rec := get(t, s.Router(), "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Status != "ok" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetStatus(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	state := clock.NewState()
	sched, err := reminder.NewScheduler(
		config.NotifyConfig{NotifyTime: 30 * time.Minute, NotifyInterval: 15 * time.Minute},
		state,
		reminder.SinkFunc(func(context.Context, reminder.Notification) error { return nil }),
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}

	s := NewServer(state, sched, nil, nil)
	s.now = func() time.Time { return start.Add(3661 * time.Second) }

	var idle StatusResponse
	_ = json.NewDecoder(get(t, s.Router(), "/api/v1/status").Body).Decode(&idle)
	if idle.Active || idle.Text != display.UntrackedLabel || !idle.RemindersEnabled {
		t.Errorf("idle = %+v", idle)
	}

	state.Write(&clock.ActiveTask{TaskName: "Deep work", StartedAt: start})
	var active StatusResponse
	_ = json.NewDecoder(get(t, s.Router(), "/api/v1/status").Body).Decode(&active)
	if !active.Active || active.TaskName != "Deep work" || active.ElapsedSeconds != 3661 {
		t.Errorf("active = %+v", active)
	}
	if active.Text != "Deep work: 01:01:01" {
		t.Errorf("text = %q", active.Text)
	}
	if active.NextReminderAt == nil || !active.NextReminderAt.Equal(start.Add(75*time.Minute)) {
		t.Errorf("next reminder = %v", active.NextReminderAt)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	history := &fakeHistory{
		sessions: []*store.Session{{ID: 1, TaskName: "a", StartedAt: start, LastSeenAt: start.Add(time.Hour)}},
		reminders: []*store.Reminder{
			{ID: 7, TaskName: "a", FiredAt: start.Add(31 * time.Minute), ElapsedMinutes: 31, Delivered: true},
		},
	}
	s := NewServer(clock.NewState(), nil, history, nil)

	var sessions SessionsResponse
	rec := get(t, s.Router(), "/api/v1/sessions?limit=5")
	_ = json.NewDecoder(rec.Body).Decode(&sessions)
	if sessions.Total != 1 || sessions.Sessions[0].DurationSeconds != 3600 {
		t.Errorf("sessions = %+v", sessions)
	}
	if history.lastLimit != 5 {
		t.Errorf("limit = %d", history.lastLimit)
	}

	var reminders RemindersResponse
	rec = get(t, s.Router(), "/api/v1/reminders?limit=bogus")
	_ = json.NewDecoder(rec.Body).Decode(&reminders)
	if reminders.Total != 1 || reminders.Reminders[0].ElapsedMinutes != 31 {
		t.Errorf("reminders = %+v", reminders)
	}
	if history.lastLimit != defaultHistoryLimit {
		t.Errorf("limit = %d", history.lastLimit)
	}

	history.err = errors.New("db locked")
	if rec := get(t, s.Router(), "/api/v1/sessions"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHistoryDisabled(t *testing.T) {
	s := NewServer(clock.NewState(), nil, nil, nil)
	if rec := get(t, s.Router(), "/api/v1/reminders"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestStreamStatus(t *testing.T) {
	mgr := stream.NewManager()
	_ = mgr.Emit(display.StatusLine{Text: "Deep work: 00:00:05", Class: []string{}})

	srv := httptest.NewServer(NewServer(clock.NewState(), nil, nil, mgr).Router())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/status/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event SSEStatusLine
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			t.Fatal(err)
		}
		if event.Text != "Deep work: 00:00:05" {
			t.Fatalf("event = %+v", event)
		}
		return
	}
	t.Fatalf("no event received: %v", scanner.Err())
}
