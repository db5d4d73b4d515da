package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aatumaykin/cronalarm/internal/alarm"
	"github.com/aatumaykin/cronalarm/internal/jobstore"
	"github.com/aatumaykin/cronalarm/internal/logger"
)

const foreignLines = "SHELL=/bin/bash\n# nightly backup job\n0 3 * * * /usr/local/bin/backup --full\n"

type testEnv struct {
	dir         string
	configPath  string
	crontabPath string
}

func newTestEnv(t *testing.T, crontab string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:         dir,
		configPath:  filepath.Join(dir, "config.toml"),
		crontabPath: filepath.Join(dir, "crontab"),
	}

	cfg := fmt.Sprintf(`
[logging]
level = "debug"
output = "discard"

[crontab]
backend = "file"
path = %q

[alarm]
executable = "/usr/local/bin/cronalarm"
`, env.crontabPath)
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0644))

	if crontab != "" {
		require.NoError(t, os.WriteFile(env.crontabPath, []byte(crontab), 0644))
	}
	return env
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath, "--env-file", filepath.Join(e.dir, ".env")}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) crontab(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.crontabPath)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:")
	assert.Contains(t, out, "Git Commit:")
}

func TestAlarmSetListCancel(t *testing.T) {
	env := newTestEnv(t, foreignLines)

	out, err := env.run(t, "alarm", "set", "07:30", "Wake", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "Alarm set for 07:30 daily")
	assert.Contains(t, out, "Next:")

	content := env.crontab(t)
	assert.True(t, strings.HasPrefix(content, foreignLines), content)
	assert.Contains(t, content, "# ALARM_0730\n30 7 * * * /usr/local/bin/cronalarm --config "+env.configPath+" trigger -- 0730 ")

	out, err = env.run(t, "alarm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Current alarms:")
	assert.Contains(t, out, "- 07:30 (next: ")

	out, err = env.run(t, "alarm", "cancel", "7:30")
	require.NoError(t, err)
	assert.Contains(t, out, "Alarm at 07:30 cancelled")
	assert.Equal(t, foreignLines, env.crontab(t))

	out, err = env.run(t, "alarm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No alarms currently set")

	_, err = env.run(t, "alarm", "cancel", "07:30")
	assert.ErrorIs(t, err, jobstore.ErrNotFound)
}

func TestAlarmSetErrors(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.run(t, "alarm", "set", "25:00")
	assert.ErrorIs(t, err, alarm.ErrInvalidTime)

	_, err = env.run(t, "alarm", "set", "06:00")
	require.NoError(t, err)
	_, err = env.run(t, "alarm", "set", "06:00")
	assert.ErrorIs(t, err, jobstore.ErrDuplicateIdentifier)

	_, err = env.run(t, "alarm", "set")
	assert.Error(t, err)
}

func TestAlarmListStructured(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.run(t, "alarm", "set", "06:15")
	require.NoError(t, err)

	out, err := env.run(t, "alarm", "list", "--output", "json")
	require.NoError(t, err)

	var alarms []alarm.Alarm
	require.NoError(t, json.Unmarshal([]byte(out), &alarms))
	require.Len(t, alarms, 1)
	assert.Equal(t, "ALARM_0615", alarms[0].ID)
	assert.Equal(t, "06:15", alarms[0].Time)
	assert.Equal(t, "15 6 * * *", alarms[0].Schedule)

	out, err = env.run(t, "alarm", "list", "-o", "yaml")
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "06:15", raw[0]["time"])

	_, err = env.run(t, "alarm", "list", "-o", "xml")
	assert.Error(t, err)
}

func TestAlarmListEmptyJSON(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := env.run(t, "alarm", "list", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestAlarmCancelAll(t *testing.T) {
	env := newTestEnv(t, foreignLines)

	for _, tm := range []string{"06:00", "07:30"} {
		_, err := env.run(t, "alarm", "set", tm)
		require.NoError(t, err)
	}
	_, err := env.run(t, "alarm", "snooze", "0600")
	require.NoError(t, err)

	out, err := env.run(t, "alarm", "cancel-all")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled 3 alarms")
	assert.Equal(t, foreignLines, env.crontab(t))
}

func TestSnoozeAndTrigger(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := env.run(t, "alarm", "snooze", "0730", "Wake up")
	require.NoError(t, err)
	assert.Contains(t, out, "Alarm snoozed until")
	assert.Contains(t, env.crontab(t), "# SNOOZE_0730\n")
	assert.Contains(t, env.crontab(t), " trigger --snoozed -- 0730 ")

	_, err = env.run(t, "trigger", "--snoozed", "--", "0730", "-wake", "up")
	require.NoError(t, err)
	assert.NotContains(t, env.crontab(t), "SNOOZE_0730")

	_, err = env.run(t, "trigger", "7:30")
	assert.ErrorIs(t, err, alarm.ErrInvalidTime)
}

func TestJobCommands(t *testing.T) {
	env := newTestEnv(t, foreignLines)

	out, err := env.run(t, "job", "add", "--id", "BACKUP_0200", "0 2 * * *", "/usr/local/bin/backup", "--incremental")
	require.NoError(t, err)
	assert.Contains(t, out, "Job added")
	assert.Contains(t, out, "Command: /usr/local/bin/backup --incremental")
	assert.Equal(t, foreignLines+"# BACKUP_0200\n0 2 * * * /usr/local/bin/backup --incremental\n", env.crontab(t))

	out, err = env.run(t, "job", "exists", "BACKUP_0200")
	require.NoError(t, err)
	assert.Equal(t, "BACKUP_0200\n", out)

	_, err = env.run(t, "job", "exists", "BACKUP_0300")
	assert.ErrorIs(t, err, jobstore.ErrNotFound)

	out, err = env.run(t, "job", "update", "BACKUP_0200", "30 2 * * 0")
	require.NoError(t, err)
	assert.Contains(t, out, "BACKUP_0200 now runs at 30 2 * * 0")
	assert.Contains(t, env.crontab(t), "# BACKUP_0200\n30 2 * * 0 /usr/local/bin/backup --incremental\n")

	out, err = env.run(t, "job", "records", "BACKUP_")
	require.NoError(t, err)
	assert.Contains(t, out, "ID: BACKUP_0200")
	assert.Contains(t, out, "Schedule: 30 2 * * 0")
	assert.Contains(t, out, "Total: 1")

	out, err = env.run(t, "job", "list")
	require.NoError(t, err)
	assert.Equal(t, env.crontab(t), out)

	out, err = env.run(t, "job", "remove", "BACKUP_0200")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 block(s) for BACKUP_0200")
	assert.Equal(t, foreignLines, env.crontab(t))

	out, err = env.run(t, "job", "remove", "BACKUP_0200")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to remove")
}

func TestJobErrors(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.run(t, "job", "add", "60 2 * * *", "backup")
	assert.ErrorIs(t, err, jobstore.ErrInvalidSchedule)

	_, err = env.run(t, "job", "add", "--id", "two words", "0 2 * * *", "backup")
	assert.ErrorIs(t, err, jobstore.ErrInvalidIdentifier)

	_, err = env.run(t, "job", "update", "MISSING", "0 2 * * *")
	assert.ErrorIs(t, err, jobstore.ErrNotFound)

	assert.Empty(t, env.crontab(t))
}

func TestJobListEmpty(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := env.run(t, "job", "list")
	require.NoError(t, err)
	assert.Equal(t, "Crontab is empty\n", out)
}

func TestJobRecordsYAML(t *testing.T) {
	env := newTestEnv(t, "# ALARM_0545\n45 5 * * 1-5 wake\n")

	out, err := env.run(t, "job", "records", "-o", "yaml")
	require.NoError(t, err)

	var views []recordView
	require.NoError(t, yaml.Unmarshal([]byte(out), &views))
	assert.Equal(t, []recordView{{ID: "ALARM_0545", Time: "05:45", Schedule: "45 5 * * 1-5", Command: "wake"}}, views)
}

func TestJobValidate(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := env.run(t, "job", "validate", "*/7 7 * * *", "--next", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "*/7 7 * * * is a valid schedule")
	assert.Equal(t, 3, strings.Count(out, "Next:"))

	_, err = env.run(t, "job", "validate", "30 7 * *")
	assert.ErrorIs(t, err, jobstore.ErrInvalidSchedule)
}

func TestConfigValidate(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := env.run(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	bad := filepath.Join(env.dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[crontab]\nbackend = \"ftp\"\n[alarm]\nsnooze_minutes = 600\n"), 0644))

	out, err = env.run(t, "config", "validate", bad)
	require.Error(t, err)
	assert.Contains(t, out, "invalid crontab.backend")
	assert.Contains(t, out, "snooze_minutes")

	_, err = env.run(t, "config", "validate", filepath.Join(env.dir, "missing.toml"))
	assert.Error(t, err)
}

func TestConfigShowMasksToken(t *testing.T) {
	env := newTestEnv(t, "")
	cfg, err := os.ReadFile(env.configPath)
	require.NoError(t, err)
	cfg = append(cfg, []byte("\n[notify.telegram]\nenabled = true\ntoken = \"${CRONALARM_TEST_TOKEN}\"\nchat_id = 42\n")...)
	require.NoError(t, os.WriteFile(env.configPath, cfg, 0644))

	// restored after the test; the .env file below sets it
	t.Setenv("CRONALARM_TEST_TOKEN", "")
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, ".env"), []byte("CRONALARM_TEST_TOKEN=123456:ABCDEFGHIJKLMNOP\n"), 0644))

	out, err := env.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "123456:ABCD********MNOP")
	assert.NotContains(t, out, "ABCDEFGHIJKLMNOP")
	assert.Contains(t, out, "[crontab]")
}

func TestInvalidConfigRejected(t *testing.T) {
	env := newTestEnv(t, "")
	require.NoError(t, os.WriteFile(env.configPath, []byte("[crontab]\nbackend = \"ftp\"\n"), 0644))

	_, err := env.run(t, "alarm", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid crontab.backend")
}

func TestLogLevelOverride(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.run(t, "--log-level", "verbose", "alarm", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("CRONALARM_CONFIG", "/etc/cronalarm/custom.toml")
	assert.Equal(t, "/etc/cronalarm/custom.toml", defaultConfigPath())

	t.Setenv("CRONALARM_CONFIG", "")
	assert.Equal(t, "./config.toml", defaultConfigPath())
}

func TestRunServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, ln, handler, logger.Nop(), &out)
	}()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	assert.Contains(t, out.String(), "Listening on "+ln.Addr().String())
	assert.Contains(t, out.String(), "Server stopped")
}
