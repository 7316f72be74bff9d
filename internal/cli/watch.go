package cli

import (
	"io"

	"github.com/kylemclaren/clockbar/internal/clock"
	"github.com/kylemclaren/clockbar/internal/poller"
	"github.com/kylemclaren/clockbar/internal/reminder"
	"github.com/kylemclaren/clockbar/internal/tui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the live clock and reminder schedule in the terminal",
	Long: `watch polls org-clock like the status agent and shows the clocked task,
its elapsed time, and progress toward the next break reminder. It never sends
reminders itself.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	// The alternate screen owns the terminal, so poll errors are dropped.
	logger := newLogger(io.Discard)
	cfg, notify := loadConfig(configPath, logger)

	state := clock.NewState()
	source := clock.NewEmacsSource(cfg.OrgClock.Emacsclient, clock.ExecRunner{})
	p, err := poller.New(source, state, cfg.OrgClock.PollSchedule, logger)
	if err != nil {
		return err
	}
	p.Start()
	defer p.Stop()

	var sched *reminder.Scheduler
	if notify != nil {
		// Used for Preview only; Run is never called.
		sched, err = reminder.NewScheduler(*notify, state, reminder.MultiSink{}, logger)
		if err != nil {
			sched = nil
		}
	}

	return tui.Run(state, sched, p.Trigger)
}
