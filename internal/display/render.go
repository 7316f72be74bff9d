package display

import (
	"fmt"
	"time"

	"github.com/kylemclaren/clockbar/internal/clock"
)

const (
	// UntrackedLabel is shown while nothing is clocked in.
	UntrackedLabel = "Untracked time"
	// ErrorLabel replaces a line that could not be produced.
	ErrorLabel = "Clock error"
)

// StatusLine is the JSON object waybar expects from a custom module with
// return-type json.
type StatusLine struct {
	Text    string   `json:"text"`
	Tooltip string   `json:"tooltip"`
	Class   []string `json:"class"`
}

// Render builds the status line for the given snapshot at now.
func Render(task clock.ActiveTask, active bool, now time.Time) StatusLine {
	if !active {
		return StatusLine{Text: UntrackedLabel, Class: []string{}}
	}
	return StatusLine{
		Text:    fmt.Sprintf("%s: %s", task.TaskName, FormatElapsed(task.Elapsed(now))),
		Tooltip: "Clocked in at " + task.StartedAt.Format("15:04:05"),
		Class:   []string{},
	}
}

// FormatElapsed renders whole seconds as HH:MM:SS. Hours are not capped.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := total / 60 % 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
