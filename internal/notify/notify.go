// Package notify delivers fired alarms to the user.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aatumaykin/cronalarm/internal/logger"
)

// Notification describes one fired alarm.
type Notification struct {
	Code    string // HHMM of the alarm
	Message string
	Snoozed bool
	FiredAt time.Time
}

// Clock returns the alarm time as HH:MM.
func (n Notification) Clock() string {
	if len(n.Code) != 4 {
		return n.Code
	}
	return n.Code[:2] + ":" + n.Code[2:]
}

// Text renders the notification as a single human readable message.
func (n Notification) Text() string {
	text := fmt.Sprintf("⏰ %s %s", n.Clock(), n.Message)
	if n.Snoozed {
		text += " (snoozed)"
	}
	return text
}

// Notifier delivers a notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{logger: log}
}

// Notify implements Notifier.
func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	l.logger.InfoCtx(ctx, "alarm fired",
		logger.Field{Key: "code", Value: n.Code},
		logger.Field{Key: "message", Value: n.Message},
		logger.Field{Key: "snoozed", Value: n.Snoozed},
	)
	return nil
}

// Multi fans a notification out to every notifier. All notifiers are
// attempted; their errors are joined.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
