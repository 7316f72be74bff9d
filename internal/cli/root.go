package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	noHistory  bool
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "clockbar",
		Short: "clockbar - org-clock status for waybar",
		Long: `clockbar reports the task currently clocked in Emacs org-mode as a waybar
status line, refreshed every second, and sends break reminders while you work.

Add it to waybar as a custom module with return-type "json".`,
		RunE:          runAgent, // Default action is the status agent
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/waybar/modules.toml)")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "Do not open the history database")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// newLogger logs to w with the program prefix. stdout carries the status
// line, so the agent passes os.Stderr.
func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "clockbar: ", log.LstdFlags)
}
