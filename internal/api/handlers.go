package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kylemclaren/clockbar/internal/display"
	"github.com/kylemclaren/clockbar/internal/version"
)

const defaultHistoryLimit = 20

// HealthCheck handles GET /api/v1/health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: version.Short(),
	})
}

// GetStatus handles GET /api/v1/status
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	task, active := s.state.Read()

	resp := StatusResponse{
		Active:           active,
		Text:             display.Render(task, active, now).Text,
		RemindersEnabled: s.scheduler != nil,
	}
	if active {
		startedAt := task.StartedAt
		resp.TaskName = task.TaskName
		resp.StartedAt = &startedAt
		resp.ElapsedSeconds = int64(task.Elapsed(now) / time.Second)

		if s.scheduler != nil {
			next := s.scheduler.Preview(now).NextReminder
			resp.NextReminderAt = &next
		}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// StreamStatus handles GET /api/v1/status/stream as server-sent events
func (s *Server) StreamStatus(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.errorResponse(w, http.StatusInternalServerError, "Streaming unsupported", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	clientID := uuid.NewString()
	client := s.streamMgr.Subscribe(clientID)
	defer s.streamMgr.Unsubscribe(clientID)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.Done:
			return
		case update := <-client.Updates:
			data, err := json.Marshal(SSEStatusLine{
				Text:      update.Line.Text,
				Tooltip:   update.Line.Tooltip,
				Class:     update.Line.Class,
				Timestamp: update.Timestamp.Format(time.RFC3339),
			})
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: status\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// ListSessions handles GET /api/v1/sessions
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "History store disabled", nil)
		return
	}

	sessions, err := s.history.ListSessions(limitParam(r))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to fetch sessions", err)
		return
	}

	response := SessionsResponse{
		Sessions: make([]SessionResponse, len(sessions)),
		Total:    len(sessions),
	}
	for i, session := range sessions {
		response.Sessions[i] = SessionResponse{
			ID:              session.ID,
			TaskName:        session.TaskName,
			StartedAt:       session.StartedAt,
			LastSeenAt:      session.LastSeenAt,
			DurationSeconds: int64(session.Duration() / time.Second),
		}
	}

	s.jsonResponse(w, http.StatusOK, response)
}

// ListReminders handles GET /api/v1/reminders
func (s *Server) ListReminders(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "History store disabled", nil)
		return
	}

	reminders, err := s.history.ListReminders(limitParam(r))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to fetch reminders", err)
		return
	}

	response := RemindersResponse{
		Reminders: make([]ReminderResponse, len(reminders)),
		Total:     len(reminders),
	}
	for i, rem := range reminders {
		response.Reminders[i] = ReminderResponse{
			ID:             rem.ID,
			TaskName:       rem.TaskName,
			FiredAt:        rem.FiredAt,
			ElapsedMinutes: rem.ElapsedMinutes,
			Delivered:      rem.Delivered,
			Error:          rem.Error,
		}
	}

	s.jsonResponse(w, http.StatusOK, response)
}

// Helper functions

func limitParam(r *http.Request) int {
	limit := defaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	return limit
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{
		Error: message,
	}
	if err != nil {
		resp.Details = err.Error()
	}
	s.jsonResponse(w, status, resp)
}
