package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultSinkTimeout bounds one sink's delivery when NamedSink.Timeout is
// unset.
const DefaultSinkTimeout = 10 * time.Second

// Notification is a break reminder ready for delivery.
type Notification struct {
	Summary        string
	Body           string
	TaskName       string
	ElapsedMinutes int64
}

// Sink delivers a notification. Delivery is best effort; callers only log
// the error.
type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n Notification) error

func (f SinkFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// NotifySinkError reports that a sink failed to deliver a reminder.
type NotifySinkError struct {
	Sink string
	Err  error
}

func (e *NotifySinkError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Sink, e.Err)
}

func (e *NotifySinkError) Unwrap() error { return e.Err }

// NamedSink labels a sink for error reporting.
type NamedSink struct {
	Name string
	Sink Sink
	// Timeout bounds this sink's delivery; zero means DefaultSinkTimeout.
	Timeout time.Duration
}

func (s NamedSink) notify(ctx context.Context, n Notification) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultSinkTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Sink.Notify(ctx, n); err != nil {
		return &NotifySinkError{Sink: s.Name, Err: err}
	}
	return nil
}

// MultiSink delivers to every sink and joins the failures.
type MultiSink []NamedSink

// Notify calls every sink in turn, even after one fails. Each sink gets its
// own deadline, so a hung sink does not starve the ones after it.
func (m MultiSink) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
