package reminder

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsService   = "org.freedesktop.Notifications"
	notificationsPath      = "/org/freedesktop/Notifications"
	notificationsInterface = "org.freedesktop.Notifications"
)

// DesktopSink shows reminders through the freedesktop notification service
// on the session bus.
type DesktopSink struct {
	AppName string
	// Timeout in milliseconds; -1 lets the server decide.
	Timeout int32
}

// NewDesktopSink creates a sink that lets the notification server pick the
// expiry.
func NewDesktopSink(appName string) *DesktopSink {
	return &DesktopSink{AppName: appName, Timeout: -1}
}

// Notify sends the reminder over a bus connection opened for this call.
func (d *DesktopSink) Notify(ctx context.Context, n Notification) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	defer conn.Close()

	obj := conn.Object(notificationsService, notificationsPath)
	call := obj.CallWithContext(ctx, notificationsInterface+".Notify", 0,
		d.AppName,
		uint32(0),
		"",
		n.Summary,
		n.Body,
		[]string{},
		map[string]dbus.Variant{},
		d.Timeout,
	)
	if call.Err != nil {
		return fmt.Errorf("call Notify: %w", call.Err)
	}
	return nil
}
