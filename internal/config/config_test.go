package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modules.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[org-clock]
notify-time = 30
notify-interval = 15
slack-webhook = "https://hooks.slack.test/x"
listen = "127.0.0.1:7878"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OrgClock.PollSchedule != DefaultPollSchedule {
		t.Errorf("poll schedule = %q", cfg.OrgClock.PollSchedule)
	}
	if cfg.OrgClock.Emacsclient != "emacsclient" {
		t.Errorf("emacsclient = %q", cfg.OrgClock.Emacsclient)
	}
	if cfg.OrgClock.Listen != "127.0.0.1:7878" {
		t.Errorf("listen = %q", cfg.OrgClock.Listen)
	}

	notify, err := cfg.Notify()
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if notify.NotifyTime != 30*time.Minute || notify.NotifyInterval != 15*time.Minute {
		t.Errorf("notify = %+v", notify)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	var loadErr *ConfigLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected ConfigLoadError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"bad toml":          "[org-clock\nnotify-time = ",
		"bad poll schedule": "[org-clock]\npoll-schedule = \"every now and then\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			var loadErr *ConfigLoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected ConfigLoadError, got %v", err)
			}
		})
	}
}

func TestNotifyRejectsZeroInterval(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[org-clock]\nnotify-time = 30\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := cfg.Notify(); !errors.Is(err, ErrInvalidNotify) {
		t.Fatalf("expected ErrInvalidNotify, got %v", err)
	}
}

func TestNotifyRejectsOverflowingMinutes(t *testing.T) {
	tests := map[string]string{
		"interval": "[org-clock]\nnotify-time = 30\nnotify-interval = 200000000\n",
		"time":     "[org-clock]\nnotify-time = 200000000\nnotify-interval = 15\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, body))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			_, err = cfg.Notify()
			if !errors.Is(err, ErrInvalidNotify) {
				t.Fatalf("expected ErrInvalidNotify, got %v", err)
			}
			if !strings.Contains(err.Error(), "larger than") {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestNotifyAcceptsLargestMinutes(t *testing.T) {
	cfg := Default()
	cfg.OrgClock.NotifyInterval = int(maxMinutes)
	notify, err := cfg.Notify()
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if notify.NotifyInterval <= 0 {
		t.Errorf("interval wrapped to %v", notify.NotifyInterval)
	}
}

func TestDataDirFromEnv(t *testing.T) {
	t.Setenv("CLOCKBAR_DATA", "/tmp/clockbar-test")
	dir, err := DataDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/clockbar-test" {
		t.Fatalf("data dir = %q", dir)
	}
}
