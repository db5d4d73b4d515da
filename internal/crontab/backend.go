package crontab

import (
	"context"
)

// Backend reads and installs a complete crontab.
//
// Load returns an empty string and a nil error when no crontab exists yet;
// that is a valid zero-job state and must not be confused with a failure.
// Install replaces the whole crontab or fails without changing it.
type Backend interface {
	Load(ctx context.Context) (string, error)
	Install(ctx context.Context, content string) error
	Name() string
}
