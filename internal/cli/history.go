package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kylemclaren/clockbar/internal/store"
	"github.com/kylemclaren/clockbar/internal/tui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	formatTable    = "table"
	formatJSON     = "json"
	formatYAML     = "yaml"
	formatMarkdown = "markdown"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded clock sessions and break reminders",
}

var historySessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent clock sessions",
	RunE:  runHistorySessions,
}

var historyRemindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "List recent break reminders",
	RunE:  runHistoryReminders,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete history older than a cutoff",
	RunE:  runHistoryPrune,
}

func init() {
	historyCmd.AddCommand(historySessionsCmd)
	historyCmd.AddCommand(historyRemindersCmd)
	historyCmd.AddCommand(historyPruneCmd)

	for _, c := range []*cobra.Command{historySessionsCmd, historyRemindersCmd} {
		c.Flags().Int("limit", 20, "Number of entries to show")
		c.Flags().StringP("format", "o", formatTable, "Output format: table, json, yaml, markdown")
	}
	historyPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "Delete entries last seen before this long ago")
}

func openHistory() (*store.Store, error) {
	if noHistory {
		return nil, errNoHistory
	}
	return openStore()
}

func runHistorySessions(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.ListSessions(limit)
	if err != nil {
		return err
	}
	return writeSessions(cmd.OutOrStdout(), sessions, format)
}

func runHistoryReminders(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	reminders, err := st.ListReminders(limit)
	if err != nil {
		return err
	}
	return writeReminders(cmd.OutOrStdout(), reminders, format)
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	olderThan, _ := cmd.Flags().GetDuration("older-than")
	if olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive, got %s", olderThan)
	}

	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	deleted, err := st.PruneBefore(time.Now().Add(-olderThan))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries.\n", deleted)
	return nil
}

func writeSessions(w io.Writer, sessions []*store.Session, format string) error {
	switch format {
	case formatTable:
		if len(sessions) == 0 {
			_, err := fmt.Fprintln(w, "No sessions recorded yet.")
			return err
		}
		_, err := fmt.Fprintln(w, tui.SessionsTable(sessions))
		return err
	case formatMarkdown:
		return writeMarkdown(w, tui.SessionsMarkdown(sessions))
	default:
		return writeStructured(w, sessions, format)
	}
}

func writeReminders(w io.Writer, reminders []*store.Reminder, format string) error {
	switch format {
	case formatTable:
		if len(reminders) == 0 {
			_, err := fmt.Fprintln(w, "No reminders sent yet.")
			return err
		}
		_, err := fmt.Fprintln(w, tui.RemindersTable(reminders))
		return err
	case formatMarkdown:
		return writeMarkdown(w, tui.RemindersMarkdown(reminders))
	default:
		return writeStructured(w, reminders, format)
	}
}

func writeStructured(w io.Writer, v any, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want table, json, yaml or markdown)", format)
	}
}

// writeMarkdown renders through glamour when w is a terminal and writes the
// raw markdown otherwise, so the output can be piped into files.
func writeMarkdown(w io.Writer, md string) error {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		out, err := tui.RenderMarkdown(md, 100)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
	_, err := io.WriteString(w, md)
	return err
}
