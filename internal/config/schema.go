// Package config loads cronalarm configuration from TOML.
//
// Configuration structure:
//   - [logging]: level, format and output of the structured logger
//   - [crontab]: which scheduler backend stores the jobs (system crontab or a file)
//   - [alarm]: identifier prefixes, snooze delay and the trigger command line
//   - [notify]: where fired alarms are delivered (log, Telegram)
//   - [server]: HTTP API listen address and metrics path
//
// String values may reference environment variables as ${VAR} or ${VAR:default},
// e.g. token = "${CRONALARM_TELEGRAM_TOKEN}".
package config

import "time"

// Config is the root configuration.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Crontab CrontabConfig `toml:"crontab"`
	Alarm   AlarmConfig   `toml:"alarm"`
	Notify  NotifyConfig  `toml:"notify"`
	Server  ServerConfig  `toml:"server"`
}

// LoggingConfig представляет конфигурацию логирования
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Crontab backend kinds.
const (
	BackendCommand = "command"
	BackendFile    = "file"
)

// CrontabConfig selects the scheduler storage.
type CrontabConfig struct {
	Backend string `toml:"backend"` // command | file
	Binary  string `toml:"binary"`  // crontab executable for the command backend
	User    string `toml:"user"`    // optional -u user for the command backend
	Path    string `toml:"path"`    // crontab file for the file backend
}

// AlarmConfig представляет конфигурацию будильников
type AlarmConfig struct {
	Prefix         string `toml:"prefix"`
	SnoozePrefix   string `toml:"snooze_prefix"`
	SnoozeMinutes  int    `toml:"snooze_minutes"`
	DefaultMessage string `toml:"default_message"`
	// Executable is the program cron runs on trigger; defaults to the running binary.
	Executable string `toml:"executable"`
	// ConfigPath is passed to the trigger command with --config when set.
	ConfigPath string `toml:"config_path"`
}

// SnoozeDelay returns the snooze delay as a duration.
func (c AlarmConfig) SnoozeDelay() time.Duration {
	return time.Duration(c.SnoozeMinutes) * time.Minute
}

// NotifyConfig представляет конфигурацию уведомлений
type NotifyConfig struct {
	Log      bool           `toml:"log"`
	Telegram TelegramConfig `toml:"telegram"`
}

// TelegramConfig представляет конфигурацию Telegram уведомлений
type TelegramConfig struct {
	Enabled        bool   `toml:"enabled"`
	Token          string `toml:"token"`
	ChatID         int64  `toml:"chat_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxAttempts    int    `toml:"max_attempts"` // delivery attempts on transient errors
}

// ServerConfig представляет конфигурацию HTTP API
type ServerConfig struct {
	Addr        string `toml:"addr"`
	MetricsPath string `toml:"metrics_path"`
}
