package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

const (
	// DefaultPollSchedule polls org-clock every five seconds.
	DefaultPollSchedule = "@every 5s"

	configDirName  = "waybar"
	configFileName = "modules.toml"
)

// ConfigLoadError reports a missing or unusable configuration file.
type ConfigLoadError struct {
	Path string
	Err  error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("load config %s: %v", e.Path, e.Err)
}

func (e *ConfigLoadError) Unwrap() error { return e.Err }

// ErrInvalidNotify is wrapped by NotifyConfig for unusable reminder settings.
var ErrInvalidNotify = errors.New("invalid notification settings")

// Config is the [org-clock] table of modules.toml.
type Config struct {
	OrgClock OrgClock `toml:"org-clock"`
}

// OrgClock holds the settings of the clock module. Times are in minutes.
type OrgClock struct {
	NotifyTime     int    `toml:"notify-time"`
	NotifyInterval int    `toml:"notify-interval"`
	PollSchedule   string `toml:"poll-schedule"`
	Emacsclient    string `toml:"emacsclient"`
	DiscordWebhook string `toml:"discord-webhook"`
	SlackWebhook   string `toml:"slack-webhook"`
	Listen         string `toml:"listen"`
}

// NotifyConfig controls when break reminders fire.
type NotifyConfig struct {
	// NotifyTime is the elapsed time after which reminders start.
	NotifyTime time.Duration
	// NotifyInterval is the spacing of the reminder grid.
	NotifyInterval time.Duration
}

// Default returns the settings used when no config file can be read.
func Default() *Config {
	return &Config{
		OrgClock: OrgClock{
			PollSchedule: DefaultPollSchedule,
			Emacsclient:  "emacsclient",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/waybar/modules.toml.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, configDirName, configFileName), nil
}

// Load reads and validates the config file at path. Any failure is returned
// as a *ConfigLoadError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigLoadError{Path: path, Err: err}
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("parse toml: %w", err)}
	}

	if cfg.OrgClock.PollSchedule == "" {
		cfg.OrgClock.PollSchedule = DefaultPollSchedule
	}
	if cfg.OrgClock.Emacsclient == "" {
		cfg.OrgClock.Emacsclient = "emacsclient"
	}
	if _, err := cron.ParseStandard(cfg.OrgClock.PollSchedule); err != nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("poll-schedule: %w", err)}
	}

	return cfg, nil
}

// maxMinutes is the largest minute count a time.Duration can hold.
const maxMinutes = math.MaxInt64 / int64(time.Minute)

// Notify returns the reminder settings, rejecting a zero or negative
// interval, a negative threshold, and values too large for a time.Duration.
func (c *Config) Notify() (NotifyConfig, error) {
	if c.OrgClock.NotifyInterval <= 0 {
		return NotifyConfig{}, fmt.Errorf("%w: notify-interval must be positive, got %d", ErrInvalidNotify, c.OrgClock.NotifyInterval)
	}
	if c.OrgClock.NotifyTime < 0 {
		return NotifyConfig{}, fmt.Errorf("%w: notify-time must not be negative, got %d", ErrInvalidNotify, c.OrgClock.NotifyTime)
	}
	if int64(c.OrgClock.NotifyInterval) > maxMinutes {
		return NotifyConfig{}, fmt.Errorf("%w: notify-interval %d is larger than %d minutes", ErrInvalidNotify, c.OrgClock.NotifyInterval, maxMinutes)
	}
	if int64(c.OrgClock.NotifyTime) > maxMinutes {
		return NotifyConfig{}, fmt.Errorf("%w: notify-time %d is larger than %d minutes", ErrInvalidNotify, c.OrgClock.NotifyTime, maxMinutes)
	}
	return NotifyConfig{
		NotifyTime:     time.Duration(c.OrgClock.NotifyTime) * time.Minute,
		NotifyInterval: time.Duration(c.OrgClock.NotifyInterval) * time.Minute,
	}, nil
}

// DataDir returns $CLOCKBAR_DATA, or ~/.clockbar when unset.
func DataDir() (string, error) {
	if dataDir := os.Getenv("CLOCKBAR_DATA"); dataDir != "" {
		return dataDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".clockbar"), nil
}
