package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kylemclaren/clockbar/internal/clock"
	"github.com/kylemclaren/clockbar/internal/display"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Poll org-clock once and print one status line",
	RunE:  runStatusCmd,
}

func init() {
	statusCmd.Flags().Bool("text", false, "Print plain text instead of waybar JSON")
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	asText, _ := cmd.Flags().GetBool("text")

	cfg, _ := loadConfig(configPath, newLogger(os.Stderr))
	source := clock.NewEmacsSource(cfg.OrgClock.Emacsclient, clock.ExecRunner{})
	return printStatus(cmd.Context(), source, os.Stdout, time.Now(), asText)
}

// printStatus polls source once and writes the rendered line to w. A poll
// failure is returned rather than shown as untracked time.
func printStatus(ctx context.Context, source clock.Source, w io.Writer, now time.Time, asText bool) error {
	task, err := source.Poll(ctx)
	if err != nil {
		return fmt.Errorf("checking clock: %w", err)
	}

	var line display.StatusLine
	if task != nil {
		line = display.Render(*task, true, now)
	} else {
		line = display.Render(clock.ActiveTask{}, false, now)
	}

	if asText {
		_, err := fmt.Fprintln(w, line.Text)
		return err
	}
	return display.NewStdoutSink(w).Emit(line)
}
