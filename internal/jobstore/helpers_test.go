package jobstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aatumaykin/cronalarm/internal/logger"
)

// memBackend is an in-memory crontab with failure injection.
type memBackend struct {
	content    string
	loadErr    error
	installErr error
	installs   int
}

func (b *memBackend) Name() string { return "memory" }

func (b *memBackend) Load(_ context.Context) (string, error) {
	if b.loadErr != nil {
		return "", b.loadErr
	}
	return b.content, nil
}

func (b *memBackend) Install(_ context.Context, content string) error {
	if b.installErr != nil {
		return b.installErr
	}
	b.installs++
	b.content = content
	return nil
}

var errBackend = errors.New("backend unavailable")

func newTestManager(t *testing.T, content string) (*Manager, *memBackend) {
	t.Helper()
	backend := &memBackend{content: content}
	return NewManager(backend, logger.Nop(), Options{SecondaryPrefix: "SNOOZE_"}), backend
}

// foreignCrontab has lines owned by other tools around one managed block.
const foreignCrontab = `SHELL=/bin/bash
MAILTO=ops@example.com
# m h dom mon dow command
0 3 * * * /usr/local/bin/backup --full

# ALARM_0600
0 6 * * * /usr/bin/cronalarm trigger 0600 'Wake up'
*/15 * * * * /usr/local/bin/poll
`
