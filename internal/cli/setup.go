package cli

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/kylemclaren/clockbar/internal/config"
	"github.com/kylemclaren/clockbar/internal/reminder"
	"github.com/kylemclaren/clockbar/internal/store"
	"github.com/kylemclaren/clockbar/internal/webhook"
)

// errNoHistory is returned by history commands run with --no-history.
var errNoHistory = errors.New("history is disabled (--no-history)")

// loadConfig reads the config file. A missing or broken file, or unusable
// reminder settings, only disable reminders: notify is nil in that case and
// the defaults are used for everything else.
func loadConfig(path string, logger *log.Logger) (cfg *config.Config, notify *config.NotifyConfig) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			logger.Printf("Could not locate config, break reminders disabled: %v", err)
			return config.Default(), nil
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		logger.Printf("Could not load config, break reminders disabled: %v", err)
		return config.Default(), nil
	}

	n, err := cfg.Notify()
	if err != nil {
		logger.Printf("Break reminders disabled: %v", err)
		return cfg, nil
	}
	return cfg, &n
}

// openStore opens the history database in the data directory.
func openStore() (*store.Store, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	st, err := store.New(filepath.Join(dataDir, store.FileName))
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return st, nil
}

// reminderSinks builds the desktop sink plus any configured webhooks.
func reminderSinks(cfg *config.Config) reminder.MultiSink {
	sinks := reminder.MultiSink{
		{Name: "desktop", Sink: reminder.NewDesktopSink("clockbar")},
	}
	if url := cfg.OrgClock.DiscordWebhook; url != "" {
		sinks = append(sinks, reminder.NamedSink{Name: "discord", Sink: webhook.NewDiscord(url)})
	}
	if url := cfg.OrgClock.SlackWebhook; url != "" {
		sinks = append(sinks, reminder.NamedSink{Name: "slack", Sink: webhook.NewSlack(url)})
	}
	return sinks
}
