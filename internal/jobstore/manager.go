// Package jobstore manages identified job blocks inside a crontab.
//
// A block is a marker line "# <identifier>" followed by the lines up to the
// next marker. The Manager is the only writer of the crontab: every mutation
// runs as one read-modify-write cycle that loads the whole table, edits the
// parsed lines in memory and installs the complete result. Lines that do not
// belong to the edited block are carried over untouched and in order.
package jobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aatumaykin/cronalarm/internal/crontab"
	"github.com/aatumaykin/cronalarm/internal/logger"
	"github.com/aatumaykin/cronalarm/internal/schedule"
)

// Job is a crontab entry to add. ID is optional.
type Job struct {
	ID       string
	Schedule string
	Command  string
}

// Options configures a Manager.
type Options struct {
	// SecondaryPrefix marks volatile identifiers (e.g. snoozes) that Records skips.
	SecondaryPrefix string
	Metrics         *Metrics
}

// Manager serializes all access to one crontab backend.
type Manager struct {
	backend   crontab.Backend
	logger    *logger.Logger
	metrics   *Metrics
	secondary string

	mu sync.Mutex
}

// NewManager creates a Manager for backend.
func NewManager(backend crontab.Backend, log *logger.Logger, opts Options) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		backend:   backend,
		logger:    log.With(logger.Field{Key: "backend", Value: backend.Name()}),
		metrics:   opts.Metrics,
		secondary: opts.SecondaryPrefix,
	}
}

// mutation edits the listing in place and reports whether anything changed.
type mutation func(l *crontab.Listing) (bool, error)

// List returns the crontab exactly as the backend reports it.
func (m *Manager) List(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	content, err := m.backend.Load(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrExternalRead, err)
		m.logger.Error("failed to list crontab", err)
	}
	m.metrics.observe("list", err, time.Since(start))

	return content, err
}

// Exists reports whether a marker line for id is present.
func (m *Manager) Exists(ctx context.Context, id string) (bool, error) {
	if err := checkIdentifier(id); err != nil {
		return false, err
	}

	l, err := m.snapshot(ctx, "exists")
	if err != nil {
		return false, err
	}
	return l.Contains(id), nil
}

// Add appends a new block for job to the end of the crontab.
// The schedule is validated and, when job.ID is set, the identifier must not
// already be present in the crontab read inside the same cycle.
func (m *Manager) Add(ctx context.Context, job Job) error {
	expr, err := schedule.Parse(job.Schedule)
	if err != nil {
		m.metrics.observe("add", err, 0)
		return err
	}

	command := strings.TrimSpace(job.Command)
	if err := checkCommand(command); err != nil {
		m.metrics.observe("add", err, 0)
		return err
	}
	if job.ID != "" {
		if err := checkIdentifier(job.ID); err != nil {
			m.metrics.observe("add", err, 0)
			return err
		}
	}

	return m.apply(ctx, "add", job.ID, func(l *crontab.Listing) (bool, error) {
		if job.ID != "" {
			if l.Contains(job.ID) {
				return false, fmt.Errorf("%w: %s", ErrDuplicateIdentifier, job.ID)
			}
			l.Append(crontab.MarkerLine(job.ID))
		}
		l.Append(crontab.JoinEntry(expr.String(), command))
		return true, nil
	})
}

// UpdateSchedule replaces the five schedule fields of the first entry line
// in the block of id. The command part of that line is kept verbatim.
func (m *Manager) UpdateSchedule(ctx context.Context, id, newSchedule string) error {
	if err := checkIdentifier(id); err != nil {
		m.metrics.observe("update", err, 0)
		return err
	}

	expr, err := schedule.Parse(newSchedule)
	if err != nil {
		m.metrics.observe("update", err, 0)
		return err
	}

	return m.apply(ctx, "update", id, func(l *crontab.Listing) (bool, error) {
		i := l.IndexOf(id)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		j := l.EntryAfter(i)
		if j < 0 {
			return false, fmt.Errorf("%w: %s has no schedule line", ErrMalformedBlock, id)
		}

		_, command, ok := crontab.SplitEntry(l.Lines[j].Raw)
		if !ok {
			return false, fmt.Errorf("%w: %s schedule line %q has no command", ErrMalformedBlock, id, l.Lines[j].Raw)
		}

		updated := crontab.JoinEntry(expr.String(), command)
		if updated == l.Lines[j].Raw {
			return false, nil
		}
		l.Lines[j] = crontab.Classify(updated)
		return true, nil
	})
}

// Remove deletes the marker line of id and every line after it up to the
// next comment line of any kind, marker or not. A comment placed between a
// marker and its schedule line therefore ends the removal early and leaves
// the schedule line behind.
//
// It returns how many markers were removed; zero is a successful no-op and
// leaves the crontab untouched.
func (m *Manager) Remove(ctx context.Context, id string) (int, error) {
	if err := checkIdentifier(id); err != nil {
		m.metrics.observe("remove", err, 0)
		return 0, err
	}

	removed := 0
	err := m.apply(ctx, "remove", id, func(l *crontab.Listing) (bool, error) {
		kept := make([]crontab.Line, 0, len(l.Lines))
		suppress := false

		for _, line := range l.Lines {
			if line.IsComment() {
				suppress = false
				if line.IsMarkerFor(id) {
					suppress = true
					removed++
					continue
				}
			}
			if !suppress {
				kept = append(kept, line)
			}
		}

		l.Lines = kept
		return removed > 0, nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

// snapshot reads and parses the crontab under the lock.
func (m *Manager) snapshot(ctx context.Context, op string) (*crontab.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	l, err := m.load(ctx)
	m.metrics.observe(op, err, time.Since(start))
	if err != nil {
		m.logger.Error("failed to read crontab", err, logger.Field{Key: "op", Value: op})
	}
	return l, err
}

// apply runs one read-modify-write cycle. Nothing is installed when fn fails
// or reports no change.
func (m *Manager) apply(ctx context.Context, op, id string, fn mutation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logger.With(
		logger.Field{Key: "op", Value: op},
		logger.Field{Key: "op_id", Value: uuid.NewString()},
		logger.Field{Key: "id", Value: id},
	)

	start := time.Now()
	changed, err := m.applyLocked(ctx, fn)
	m.metrics.observe(op, err, time.Since(start))

	switch {
	case errors.Is(err, ErrExternalRead), errors.Is(err, ErrExternalWrite):
		log.Error("crontab operation failed", err)
	case err != nil:
		log.Warn("crontab operation rejected", logger.Field{Key: "reason", Value: err.Error()})
	case changed:
		log.Info("crontab updated", logger.Field{Key: "duration", Value: time.Since(start)})
	default:
		log.Debug("crontab unchanged")
	}

	return err
}

func (m *Manager) applyLocked(ctx context.Context, fn mutation) (bool, error) {
	current, err := m.load(ctx)
	if err != nil {
		return false, err
	}

	next := current.Clone()
	changed, err := fn(next)
	if err != nil || !changed {
		return false, err
	}

	if err := m.backend.Install(ctx, next.Render()); err != nil {
		return false, fmt.Errorf("%w: %w", ErrExternalWrite, err)
	}

	m.metrics.installed()
	m.metrics.setIdentified(countMarkers(next))

	return true, nil
}

func (m *Manager) load(ctx context.Context) (*crontab.Listing, error) {
	content, err := m.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExternalRead, err)
	}

	l := crontab.Parse(content)
	m.metrics.setIdentified(countMarkers(l))
	return l, nil
}

func countMarkers(l *crontab.Listing) int {
	n := 0
	for _, line := range l.Lines {
		if line.Kind == crontab.Marker {
			n++
		}
	}
	return n
}

func checkIdentifier(id string) error {
	if !crontab.ValidIdentifier(id) {
		return fmt.Errorf("%w: %q must be a single token of letters, digits, '_', '.', ':' or '-'", ErrInvalidIdentifier, id)
	}
	return nil
}

func checkCommand(command string) error {
	if command == "" {
		return fmt.Errorf("%w: command is empty", ErrInvalidJob)
	}
	if strings.ContainsAny(command, "\r\n") {
		return fmt.Errorf("%w: command must be a single line", ErrInvalidJob)
	}
	return nil
}
