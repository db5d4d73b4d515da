package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"

	"github.com/aatumaykin/cronalarm/internal/alarm"
	"github.com/aatumaykin/cronalarm/internal/config"
	"github.com/aatumaykin/cronalarm/internal/constants"
	"github.com/aatumaykin/cronalarm/internal/crontab"
	"github.com/aatumaykin/cronalarm/internal/jobstore"
	"github.com/aatumaykin/cronalarm/internal/logger"
	"github.com/aatumaykin/cronalarm/internal/notify"
	"github.com/aatumaykin/cronalarm/internal/retry"
)

// app wires configuration, logging, the crontab backend and the job store.
type app struct {
	cfg        *config.Config
	configPath string
	log        *logger.Logger
	registry   *prometheus.Registry
	store      *jobstore.Manager
}

// loadConfig reads the config file (defaults when it does not exist),
// applies flag overrides and validates the result.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (o *rootOptions) newApp() (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	backend, err := newBackend(cfg.Crontab)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store := jobstore.NewManager(backend, log, jobstore.Options{
		SecondaryPrefix: cfg.Alarm.SnoozePrefix,
		Metrics:         jobstore.NewMetrics(constants.MetricsNamespace, registry),
	})

	return &app{
		cfg:        cfg,
		configPath: o.configPath,
		log:        log,
		registry:   registry,
		store:      store,
	}, nil
}

func newBackend(cfg config.CrontabConfig) (crontab.Backend, error) {
	switch cfg.Backend {
	case config.BackendCommand:
		return crontab.NewCommandBackend(cfg.Binary, cfg.User, crontab.ExecRunner{}), nil
	case config.BackendFile:
		return crontab.NewFileBackend(afero.NewOsFs(), cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown crontab backend: %s", cfg.Backend)
	}
}

// notifier builds the delivery chain for fired alarms.
func (a *app) notifier() (notify.Notifier, error) {
	var chain notify.Multi

	if a.cfg.Notify.Log {
		chain = append(chain, notify.NewLogNotifier(a.log))
	}

	if tg := a.cfg.Notify.Telegram; tg.Enabled {
		n, err := notify.NewTelegramNotifier(tg.Token, tg.ChatID, time.Duration(tg.TimeoutSeconds)*time.Second)
		if err != nil {
			return nil, err
		}
		n.Retry = retry.Config{MaxAttempts: tg.MaxAttempts}
		chain = append(chain, n)
	}

	return chain, nil
}

func (a *app) alarmService() (*alarm.Service, error) {
	notifier, err := a.notifier()
	if err != nil {
		return nil, err
	}

	executable := a.cfg.Alarm.Executable
	if executable == "" {
		if executable, err = os.Executable(); err != nil {
			return nil, fmt.Errorf("failed to resolve executable: %w", err)
		}
	}

	return alarm.NewService(a.store, notifier, alarm.Config{
		Prefix:         a.cfg.Alarm.Prefix,
		SnoozePrefix:   a.cfg.Alarm.SnoozePrefix,
		SnoozeDelay:    a.cfg.Alarm.SnoozeDelay(),
		DefaultMessage: a.cfg.Alarm.DefaultMessage,
		Executable:     executable,
		ConfigPath:     a.triggerConfigPath(),
	}, a.log)
}

// triggerConfigPath is the config the trigger command is started with: the
// configured value, else the absolute path of the loaded file if it exists.
func (a *app) triggerConfigPath() string {
	if a.cfg.Alarm.ConfigPath != "" {
		return a.cfg.Alarm.ConfigPath
	}

	abs, err := filepath.Abs(a.configPath)
	if err != nil {
		return ""
	}
	if _, err := os.Stat(abs); err != nil {
		return ""
	}
	return abs
}
