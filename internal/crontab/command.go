package crontab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// DefaultBinary is the crontab executable looked up in PATH.
const DefaultBinary = "crontab"

// noCrontabMarker is what cron implementations print when a user has no crontab yet.
const noCrontabMarker = "no crontab for"

// Runner executes an external program. ExitCode is meaningful only when err is nil;
// err reports that the program could not be started at all.
type Runner interface {
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) (Result, error)
}

// Result is the outcome of a finished program.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if err != nil {
		return res, err
	}
	return res, nil
}

// CommandBackend talks to the system crontab binary.
type CommandBackend struct {
	binary string
	user   string
	runner Runner
}

// NewCommandBackend creates a backend for binary (DefaultBinary when empty).
// A non-empty user is passed with -u, which requires privileges.
func NewCommandBackend(binary, user string, runner Runner) *CommandBackend {
	if binary == "" {
		binary = DefaultBinary
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &CommandBackend{binary: binary, user: user, runner: runner}
}

// Name implements Backend.
func (b *CommandBackend) Name() string {
	return "command"
}

// Load runs "crontab -l".
func (b *CommandBackend) Load(ctx context.Context) (string, error) {
	res, err := b.runner.Run(ctx, nil, b.binary, b.args("-l")...)
	if err != nil {
		return "", fmt.Errorf("failed to run %s -l: %w", b.binary, err)
	}

	if res.ExitCode != 0 {
		if strings.Contains(string(res.Stderr), noCrontabMarker) {
			return "", nil
		}
		return "", fmt.Errorf("%s -l exited with code %d: %s", b.binary, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}

	return string(res.Stdout), nil
}

// Install pipes content to "crontab -". crontab validates the whole file and
// replaces the installed table in one step, or leaves it untouched on error.
func (b *CommandBackend) Install(ctx context.Context, content string) error {
	res, err := b.runner.Run(ctx, strings.NewReader(content), b.binary, b.args("-")...)
	if err != nil {
		return fmt.Errorf("failed to run %s -: %w", b.binary, err)
	}

	if res.ExitCode != 0 {
		return fmt.Errorf("%s - exited with code %d: %s", b.binary, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}

	return nil
}

func (b *CommandBackend) args(op string) []string {
	if b.user == "" {
		return []string{op}
	}
	return []string{"-u", b.user, op}
}
