package alarm

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/cronalarm/internal/crontab"
	"github.com/aatumaykin/cronalarm/internal/jobstore"
	"github.com/aatumaykin/cronalarm/internal/logger"
	"github.com/aatumaykin/cronalarm/internal/notify"
)

const crontabPath = "/var/spool/cron/alice"

type recordingNotifier struct {
	got []notify.Notification
	err error
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.got = append(r.got, n)
	return r.err
}

type fixture struct {
	svc      *Service
	fs       afero.Fs
	notifier *recordingNotifier
}

func newFixture(t *testing.T, initial string) *fixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	if initial != "" {
		require.NoError(t, afero.WriteFile(fs, crontabPath, []byte(initial), 0644))
	}

	store := jobstore.NewManager(crontab.NewFileBackend(fs, crontabPath), logger.Nop(), jobstore.Options{SecondaryPrefix: "SNOOZE_"})
	notifier := &recordingNotifier{}

	svc, err := NewService(store, notifier, Config{
		Prefix:         "ALARM_",
		SnoozePrefix:   "SNOOZE_",
		SnoozeDelay:    5 * time.Minute,
		DefaultMessage: "Alarm!",
		Executable:     "/usr/local/bin/cronalarm",
		ConfigPath:     "/etc/cronalarm/config.toml",
	}, logger.Nop())
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local) }

	return &fixture{svc: svc, fs: fs, notifier: notifier}
}

func (f *fixture) content(t *testing.T) string {
	t.Helper()
	data, err := afero.ReadFile(f.fs, crontabPath)
	if errors.Is(err, os.ErrNotExist) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

// commandArgs undoes the crontab escaping and shell quoting of a trigger command.
func commandArgs(t *testing.T, command string) []string {
	t.Helper()
	args, err := shellquote.Split(strings.ReplaceAll(command, `\%`, "%"))
	require.NoError(t, err)
	return args
}

func TestNewService_Validation(t *testing.T) {
	store := jobstore.NewManager(crontab.NewFileBackend(afero.NewMemMapFs(), crontabPath), nil, jobstore.Options{})

	_, err := NewService(store, nil, Config{SnoozePrefix: "SNOOZE_", Executable: "x"}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewService(store, nil, Config{Prefix: "ALARM_", SnoozePrefix: "SNOOZE_"}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	svc, err := NewService(store, nil, Config{Prefix: "ALARM_", SnoozePrefix: "SNOOZE_", Executable: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alarm!", svc.cfg.DefaultMessage)
}

func TestSet(t *testing.T) {
	f := newFixture(t, "")

	a, err := f.svc.Set(context.Background(), 7, 30, "Wake up")
	require.NoError(t, err)

	assert.Equal(t, "ALARM_0730", a.ID)
	assert.Equal(t, "07:30", a.Time)
	assert.Equal(t, "30 7 * * *", a.Schedule)
	assert.Equal(t, time.Date(2026, 3, 11, 7, 30, 0, 0, time.Local), a.Next)

	content := f.content(t)
	assert.True(t, strings.HasPrefix(content, "# ALARM_0730\n30 7 * * * "), content)

	assert.Equal(t,
		[]string{"/usr/local/bin/cronalarm", "--config", "/etc/cronalarm/config.toml", "trigger", "--", "0730", "Wake up"},
		commandArgs(t, a.Command),
	)
}

func TestSet_EscapesPercentAndQuotes(t *testing.T) {
	f := newFixture(t, "")

	a, err := f.svc.Set(context.Background(), 6, 5, "100% it's time; rm -rf $HOME")
	require.NoError(t, err)

	assert.NotContains(t, strings.ReplaceAll(a.Command, `\%`, ""), "%", "bare % would become a newline in cron")
	args := commandArgs(t, a.Command)
	assert.Equal(t, "100% it's time; rm -rf $HOME", args[len(args)-1])
	assert.Equal(t, "0605", args[len(args)-2])
}

func TestSet_DefaultMessage(t *testing.T) {
	f := newFixture(t, "")

	a, err := f.svc.Set(context.Background(), 6, 0, " \n\t ")
	require.NoError(t, err)

	args := commandArgs(t, a.Command)
	assert.Equal(t, "Alarm!", args[len(args)-1])
}

func TestSet_Errors(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.svc.Set(ctx, 24, 0, "")
	assert.ErrorIs(t, err, ErrInvalidTime)
	_, err = f.svc.Set(ctx, 7, 60, "")
	assert.ErrorIs(t, err, ErrInvalidTime)
	assert.Empty(t, f.content(t))

	_, err = f.svc.Set(ctx, 7, 30, "first")
	require.NoError(t, err)
	before := f.content(t)

	_, err = f.svc.Set(ctx, 7, 30, "second")
	assert.ErrorIs(t, err, jobstore.ErrDuplicateIdentifier)
	assert.Equal(t, before, f.content(t))
}

func TestList(t *testing.T) {
	f := newFixture(t, "MAILTO=root\n# nightly backups\n0 3 * * * /usr/local/bin/backup\n")
	ctx := context.Background()

	_, err := f.svc.Set(ctx, 7, 30, "Wake up")
	require.NoError(t, err)
	_, err = f.svc.Set(ctx, 6, 0, "Early")
	require.NoError(t, err)
	_, err = f.svc.Snooze(ctx, "0730", "Wake up", time.Date(2026, 3, 10, 7, 30, 0, 0, time.Local))
	require.NoError(t, err)

	alarms, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, alarms, 2)

	assert.Equal(t, "07:30", alarms[0].Time)
	assert.Equal(t, "06:00", alarms[1].Time)
	assert.Equal(t, time.Date(2026, 3, 11, 6, 0, 0, 0, time.Local), alarms[1].Next)

	times, err := f.svc.Times(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"07:30", "06:00"}, times)
}

func TestList_Empty(t *testing.T) {
	f := newFixture(t, "")

	alarms, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alarms)
}

func TestCancel(t *testing.T) {
	f := newFixture(t, "# nightly backups\n0 3 * * * /usr/local/bin/backup\n")
	ctx := context.Background()

	_, err := f.svc.Set(ctx, 7, 30, "Wake up")
	require.NoError(t, err)
	_, err = f.svc.Snooze(ctx, "0730", "", time.Date(2026, 3, 10, 7, 30, 0, 0, time.Local))
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, 7, 30))
	assert.Equal(t, "# nightly backups\n0 3 * * * /usr/local/bin/backup\n", f.content(t))

	err = f.svc.Cancel(ctx, 7, 30)
	assert.ErrorIs(t, err, jobstore.ErrNotFound)

	assert.ErrorIs(t, f.svc.Cancel(ctx, -1, 0), ErrInvalidTime)
}

func TestCancelAll(t *testing.T) {
	foreign := "SHELL=/bin/sh\n# nightly backups\n0 3 * * * /usr/local/bin/backup\n"
	f := newFixture(t, foreign)
	ctx := context.Background()

	for _, hm := range [][2]int{{6, 0}, {7, 30}, {22, 15}} {
		_, err := f.svc.Set(ctx, hm[0], hm[1], "")
		require.NoError(t, err)
	}
	_, err := f.svc.Snooze(ctx, "0600", "", time.Date(2026, 3, 10, 6, 0, 0, 0, time.Local))
	require.NoError(t, err)

	n, err := f.svc.CancelAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, foreign, f.content(t))

	n, err = f.svc.CancelAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSnooze(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	at, err := f.svc.Snooze(ctx, "0730", "Wake up", time.Date(2026, 3, 10, 7, 30, 42, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 7, 35, 0, 0, time.Local), at)

	content := f.content(t)
	require.True(t, strings.HasPrefix(content, "# SNOOZE_0730\n35 7 * * * "), content)
	line := strings.Split(content, "\n")[1]
	_, command, ok := crontab.SplitEntry(line)
	require.True(t, ok)
	assert.Equal(t,
		[]string{"/usr/local/bin/cronalarm", "--config", "/etc/cronalarm/config.toml", "trigger", "--snoozed", "--", "0730", "Wake up"},
		commandArgs(t, command),
	)

	// snoozing again moves the existing block
	_, err = f.svc.Snooze(ctx, "0730", "Wake up", time.Date(2026, 3, 10, 23, 58, 0, 0, time.Local))
	require.NoError(t, err)
	content = f.content(t)
	assert.Equal(t, 1, strings.Count(content, "# SNOOZE_0730"))
	assert.True(t, strings.HasPrefix(content, "# SNOOZE_0730\n3 0 * * * "), content)
}

func TestSnooze_InvalidCode(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.svc.Snooze(context.Background(), "2560", "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTime)
	assert.Empty(t, f.content(t))
}

func TestTrigger(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.svc.Trigger(context.Background(), "0730", "Wake\nup", false))

	require.Len(t, f.notifier.got, 1)
	n := f.notifier.got[0]
	assert.Equal(t, "0730", n.Code)
	assert.Equal(t, "Wake up", n.Message)
	assert.False(t, n.Snoozed)
	assert.Equal(t, f.svc.now(), n.FiredAt)
}

func TestTrigger_SnoozedConsumesBlock(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.svc.Set(ctx, 7, 30, "Wake up")
	require.NoError(t, err)
	_, err = f.svc.Snooze(ctx, "0730", "Wake up", time.Date(2026, 3, 10, 7, 30, 0, 0, time.Local))
	require.NoError(t, err)

	require.NoError(t, f.svc.Trigger(ctx, "0730", "", true))

	assert.Equal(t, "Alarm!", f.notifier.got[0].Message)
	assert.True(t, f.notifier.got[0].Snoozed)

	content := f.content(t)
	assert.NotContains(t, content, "SNOOZE_0730")
	assert.Contains(t, content, "# ALARM_0730\n")
}

func TestTrigger_NotifyFailureStillClearsSnooze(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	f.notifier.err = errors.New("telegram down")

	_, err := f.svc.Snooze(ctx, "0730", "", time.Date(2026, 3, 10, 7, 30, 0, 0, time.Local))
	require.NoError(t, err)

	err = f.svc.Trigger(ctx, "0730", "", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram down")
	assert.NotContains(t, f.content(t), "SNOOZE_0730")
}

func TestTrigger_InvalidCode(t *testing.T) {
	f := newFixture(t, "")

	assert.ErrorIs(t, f.svc.Trigger(context.Background(), "7:30", "", false), ErrInvalidTime)
	assert.Empty(t, f.notifier.got)
}
