package jobstore

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/aatumaykin/cronalarm/internal/crontab"
)

// Record is a managed job whose identifier encodes a time of day as
// <prefix><HHMM>, e.g. ALARM_0730.
type Record struct {
	ID       string
	Hour     int
	Minute   int
	Schedule string // five schedule fields, empty when the block has no schedule line
	Command  string
}

// Clock formats the encoded time as HH:MM.
func (r Record) Clock() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

// Records reads the crontab once and returns a sequence over the records
// whose identifier starts with prefix. Identifiers containing the secondary
// prefix are skipped, as are identifiers whose suffix is not a valid HHMM.
//
// The sequence works on the snapshot taken by this call: it can be ranged
// over any number of times and never touches the backend.
func (m *Manager) Records(ctx context.Context, prefix string) (iter.Seq[Record], error) {
	l, err := m.snapshot(ctx, "records")
	if err != nil {
		return nil, err
	}

	secondary := m.secondary
	return func(yield func(Record) bool) {
		for i, line := range l.Lines {
			if line.Kind != crontab.Marker || !strings.HasPrefix(line.Label, prefix) {
				continue
			}
			if secondary != "" && strings.Contains(line.Label, secondary) {
				continue
			}

			hour, minute, ok := DecodeClock(strings.TrimPrefix(line.Label, prefix))
			if !ok {
				continue
			}

			rec := Record{ID: line.Label, Hour: hour, Minute: minute}
			if j := l.EntryAfter(i); j >= 0 {
				if fields, command, ok := crontab.SplitEntry(l.Lines[j].Raw); ok {
					rec.Schedule = strings.Join(fields, " ")
					rec.Command = command
				}
			}

			if !yield(rec) {
				return
			}
		}
	}, nil
}

// Identifiers reads the crontab once and returns a sequence over every
// identifier that starts with one of prefixes, in crontab order.
func (m *Manager) Identifiers(ctx context.Context, prefixes ...string) (iter.Seq[string], error) {
	l, err := m.snapshot(ctx, "identifiers")
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		for _, line := range l.Lines {
			if line.Kind != crontab.Marker || !hasAnyPrefix(line.Label, prefixes) {
				continue
			}
			if !yield(line.Label) {
				return
			}
		}
	}, nil
}

// EncodeClock renders hour and minute as the four-digit identifier suffix.
func EncodeClock(hour, minute int) string {
	return fmt.Sprintf("%02d%02d", hour, minute)
}

// DecodeClock parses the leading HHMM of an identifier suffix.
func DecodeClock(suffix string) (hour, minute int, ok bool) {
	if len(suffix) < 4 {
		return 0, 0, false
	}

	h, err := strconv.Atoi(suffix[:2])
	if err != nil || h < 0 || h > 23 || suffix[0] == '-' || suffix[0] == '+' {
		return 0, 0, false
	}
	mm, err := strconv.Atoi(suffix[2:4])
	if err != nil || mm < 0 || mm > 59 || suffix[2] == '-' || suffix[2] == '+' {
		return 0, 0, false
	}

	return h, mm, true
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
