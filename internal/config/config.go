package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aatumaykin/cronalarm/internal/constants"
	"github.com/aatumaykin/cronalarm/internal/crontab"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		Notify: NotifyConfig{Log: true},
	}
	applyDefaults(cfg)
	return cfg
}

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)
	expandEnvVars(cfg)

	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = Default()
			expandEnvVars(cfg)
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет конфигурацию и возвращает все найденные ошибки
func (c *Config) Validate() []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error)", c.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
	}

	switch c.Crontab.Backend {
	case BackendCommand:
	case BackendFile:
		if c.Crontab.Path == "" {
			errs = append(errs, fmt.Errorf("crontab.path is required when crontab.backend is 'file'"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid crontab.backend: %s (expected: command, file)", c.Crontab.Backend))
	}

	if !crontab.ValidIdentifier(c.Alarm.Prefix) {
		errs = append(errs, fmt.Errorf("invalid alarm.prefix: %q (letters, digits, '_', '.', ':' and '-' only)", c.Alarm.Prefix))
	}
	if !crontab.ValidIdentifier(c.Alarm.SnoozePrefix) {
		errs = append(errs, fmt.Errorf("invalid alarm.snooze_prefix: %q (letters, digits, '_', '.', ':' and '-' only)", c.Alarm.SnoozePrefix))
	}
	if c.Alarm.Prefix != "" && c.Alarm.Prefix == c.Alarm.SnoozePrefix {
		errs = append(errs, fmt.Errorf("alarm.prefix and alarm.snooze_prefix must differ"))
	}
	if c.Alarm.SnoozeMinutes < 1 || c.Alarm.SnoozeMinutes > 60 {
		errs = append(errs, fmt.Errorf("alarm.snooze_minutes must be between 1 and 60 (got %d)", c.Alarm.SnoozeMinutes))
	}

	if c.Notify.Telegram.Enabled {
		if err := validateTelegramToken(c.Notify.Telegram.Token); err != nil {
			errs = append(errs, err)
		}
		if c.Notify.Telegram.ChatID == 0 {
			errs = append(errs, fmt.Errorf("notify.telegram.chat_id is required when telegram is enabled"))
		}
		if c.Notify.Telegram.MaxAttempts < 1 || c.Notify.Telegram.MaxAttempts > 10 {
			errs = append(errs, fmt.Errorf("notify.telegram.max_attempts must be between 1 and 10 (got %d)", c.Notify.Telegram.MaxAttempts))
		}
	}

	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("server.metrics_path must start with '/' (got %s)", c.Server.MetricsPath))
	}

	return errs
}

func validateTelegramToken(token string) error {
	if token == "" {
		return fmt.Errorf("notify.telegram.token is required when telegram is enabled")
	}

	parts := strings.Split(token, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return formatValidationError("notify.telegram.token", "invalid format (expected <bot_id>:<token>)", token)
	}

	for _, r := range parts[0] {
		if r < '0' || r > '9' {
			return formatValidationError("notify.telegram.token", "bot ID must contain digits only", token)
		}
	}

	return nil
}

// applyDefaults применяет значения по умолчанию
func applyDefaults(c *Config) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}

	if c.Crontab.Backend == "" {
		c.Crontab.Backend = BackendCommand
	}
	if c.Crontab.Binary == "" {
		c.Crontab.Binary = crontab.DefaultBinary
	}

	if c.Alarm.Prefix == "" {
		c.Alarm.Prefix = constants.AlarmPrefix
	}
	if c.Alarm.SnoozePrefix == "" {
		c.Alarm.SnoozePrefix = constants.SnoozePrefix
	}
	if c.Alarm.SnoozeMinutes == 0 {
		c.Alarm.SnoozeMinutes = constants.SnoozeMinutes
	}
	if c.Alarm.DefaultMessage == "" {
		c.Alarm.DefaultMessage = constants.DefaultAlarmMessage
	}

	if c.Notify.Telegram.TimeoutSeconds == 0 {
		c.Notify.Telegram.TimeoutSeconds = constants.DefaultTelegramTimeoutSeconds
	}
	if c.Notify.Telegram.MaxAttempts == 0 {
		c.Notify.Telegram.MaxAttempts = constants.DefaultTelegramMaxAttempts
	}

	if c.Server.Addr == "" {
		c.Server.Addr = constants.DefaultServerAddr
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = constants.DefaultMetricsPath
	}
}

// expandEnvVars расширяет переменные окружения в конфигурации
func expandEnvVars(c *Config) {
	c.Notify.Telegram.Token = expandEnv(c.Notify.Telegram.Token)
	c.Crontab.User = expandEnv(c.Crontab.User)

	c.Crontab.Path = expandHome(expandEnv(c.Crontab.Path))
	c.Alarm.Executable = expandHome(expandEnv(c.Alarm.Executable))
	c.Alarm.ConfigPath = expandHome(expandEnv(c.Alarm.ConfigPath))
	c.Logging.Output = expandHome(c.Logging.Output)
}

// expandEnv расширяет переменную окружения формата ${VAR:default}
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	content := s[2:end]
	if key, def, ok := strings.Cut(content, ":"); ok {
		if val := os.Getenv(key); val != "" {
			return val + s[end+1:]
		}
		return def + s[end+1:]
	}

	return os.Getenv(content) + s[end+1:]
}

// expandHome расширяет ~ в пути
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
