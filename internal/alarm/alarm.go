// Package alarm implements daily alarms on top of the crontab job store.
//
// Each alarm is a job block identified as <Prefix><HHMM> whose command runs
// "cronalarm trigger" at that time. Snoozing creates a second block
// <SnoozePrefix><HHMM> that fires once after the snooze delay and is removed
// when it triggers.
package alarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/aatumaykin/cronalarm/internal/jobstore"
	"github.com/aatumaykin/cronalarm/internal/logger"
	"github.com/aatumaykin/cronalarm/internal/notify"
	"github.com/aatumaykin/cronalarm/internal/schedule"
)

// ErrNotConfigured is returned when the service cannot build trigger commands.
var ErrNotConfigured = errors.New("alarm service is not configured")

// Config holds the alarm settings.
type Config struct {
	Prefix         string
	SnoozePrefix   string
	SnoozeDelay    time.Duration
	DefaultMessage string
	Executable     string // program cron runs on trigger
	ConfigPath     string // passed to the trigger command as --config when set
}

// Alarm is a scheduled alarm as found in the crontab.
type Alarm struct {
	ID       string    `json:"id" yaml:"id"`
	Time     string    `json:"time" yaml:"time"`
	Schedule string    `json:"schedule" yaml:"schedule"`
	Command  string    `json:"command" yaml:"command"`
	Next     time.Time `json:"next,omitzero" yaml:"next,omitempty"`
}

// Service sets, lists, cancels and fires alarms.
type Service struct {
	store    *jobstore.Manager
	notifier notify.Notifier
	cfg      Config
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates an alarm service.
func NewService(store *jobstore.Manager, notifier notify.Notifier, cfg Config, log *logger.Logger) (*Service, error) {
	if cfg.Prefix == "" || cfg.SnoozePrefix == "" {
		return nil, fmt.Errorf("%w: prefixes must not be empty", ErrNotConfigured)
	}
	if cfg.Executable == "" {
		return nil, fmt.Errorf("%w: executable is empty", ErrNotConfigured)
	}
	if cfg.DefaultMessage == "" {
		cfg.DefaultMessage = "Alarm!"
	}
	if notifier == nil {
		notifier = notify.Multi{}
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Service{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   log.With(logger.Field{Key: "component", Value: "alarm"}),
		now:      time.Now,
	}, nil
}

// Set schedules a daily alarm at hour:minute.
func (s *Service) Set(ctx context.Context, hour, minute int, message string) (Alarm, error) {
	if err := checkTime(hour, minute); err != nil {
		return Alarm{}, err
	}

	expr, err := schedule.Daily(hour, minute)
	if err != nil {
		return Alarm{}, err
	}

	code := Code(hour, minute)
	job := jobstore.Job{
		ID:       s.cfg.Prefix + code,
		Schedule: expr.String(),
		Command:  s.triggerCommand(code, s.message(message), false),
	}
	if err := s.store.Add(ctx, job); err != nil {
		return Alarm{}, fmt.Errorf("failed to set alarm %s: %w", Clock(hour, minute), err)
	}

	s.logger.Info("alarm set", logger.Field{Key: "id", Value: job.ID})

	next, _ := expr.Next(s.now())
	return Alarm{ID: job.ID, Time: Clock(hour, minute), Schedule: job.Schedule, Command: job.Command, Next: next}, nil
}

// List returns the alarms in crontab order. Snoozes are not included.
func (s *Service) List(ctx context.Context) ([]Alarm, error) {
	seq, err := s.store.Records(ctx, s.cfg.Prefix)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var alarms []Alarm
	for rec := range seq {
		a := Alarm{ID: rec.ID, Time: rec.Clock(), Schedule: rec.Schedule, Command: rec.Command}
		if expr, err := schedule.Parse(rec.Schedule); err == nil {
			a.Next, _ = expr.Next(now)
		}
		alarms = append(alarms, a)
	}
	return alarms, nil
}

// Times returns the HH:MM of every alarm.
func (s *Service) Times(ctx context.Context) ([]string, error) {
	alarms, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(alarms, func(a Alarm, _ int) string { return a.Time }), nil
}

// Cancel removes the alarm at hour:minute together with a pending snooze of
// it. It returns jobstore.ErrNotFound when neither exists.
func (s *Service) Cancel(ctx context.Context, hour, minute int) error {
	if err := checkTime(hour, minute); err != nil {
		return err
	}

	code := Code(hour, minute)
	removed := 0
	for _, id := range []string{s.cfg.Prefix + code, s.cfg.SnoozePrefix + code} {
		n, err := s.store.Remove(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to cancel alarm %s: %w", Clock(hour, minute), err)
		}
		removed += n
	}

	if removed == 0 {
		return fmt.Errorf("%w: no alarm at %s", jobstore.ErrNotFound, Clock(hour, minute))
	}

	s.logger.Info("alarm cancelled", logger.Field{Key: "code", Value: code})
	return nil
}

// CancelAll removes every alarm and snooze. Each identifier is removed in
// its own crontab replacement; it returns how many blocks were removed.
func (s *Service) CancelAll(ctx context.Context) (int, error) {
	seq, err := s.store.Identifiers(ctx, s.cfg.Prefix, s.cfg.SnoozePrefix)
	if err != nil {
		return 0, err
	}

	var ids []string
	for id := range seq {
		ids = append(ids, id)
	}

	cancelled := 0
	for _, id := range lo.Uniq(ids) {
		n, err := s.store.Remove(ctx, id)
		if err != nil {
			return cancelled, fmt.Errorf("failed to cancel %s: %w", id, err)
		}
		cancelled += n
	}

	s.logger.Info("all alarms cancelled", logger.Field{Key: "count", Value: cancelled})
	return cancelled, nil
}

// Snooze schedules a one-shot repeat of the alarm code at now plus the
// snooze delay. An existing snooze of the same alarm is moved.
func (s *Service) Snooze(ctx context.Context, code, message string, now time.Time) (time.Time, error) {
	if _, _, err := ParseCode(code); err != nil {
		return time.Time{}, err
	}

	at := now.Add(s.cfg.SnoozeDelay).Truncate(time.Minute)
	expr, err := schedule.Daily(at.Hour(), at.Minute())
	if err != nil {
		return time.Time{}, err
	}

	id := s.cfg.SnoozePrefix + code
	err = s.store.Add(ctx, jobstore.Job{
		ID:       id,
		Schedule: expr.String(),
		Command:  s.triggerCommand(code, s.message(message), true),
	})
	if errors.Is(err, jobstore.ErrDuplicateIdentifier) {
		err = s.store.UpdateSchedule(ctx, id, expr.String())
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to snooze alarm %s: %w", code, err)
	}

	s.logger.Info("alarm snoozed",
		logger.Field{Key: "code", Value: code},
		logger.Field{Key: "until", Value: Clock(at.Hour(), at.Minute())},
	)
	return at, nil
}

// Trigger delivers the alarm code. A snoozed trigger also removes its
// snooze block so it fires only once.
func (s *Service) Trigger(ctx context.Context, code, message string, snoozed bool) error {
	if _, _, err := ParseCode(code); err != nil {
		return err
	}

	n := notify.Notification{
		Code:    code,
		Message: s.message(message),
		Snoozed: snoozed,
		FiredAt: s.now(),
	}

	var errs []error
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.ErrorCtx(ctx, "failed to deliver alarm", err, logger.Field{Key: "code", Value: code})
		errs = append(errs, err)
	}

	if snoozed {
		if _, err := s.store.Remove(ctx, s.cfg.SnoozePrefix+code); err != nil {
			errs = append(errs, fmt.Errorf("failed to clear snooze %s: %w", code, err))
		}
	}

	return errors.Join(errs...)
}

func (s *Service) message(msg string) string {
	if msg = NormalizeMessage(msg); msg == "" {
		return s.cfg.DefaultMessage
	}
	return msg
}
