package alarm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aatumaykin/cronalarm/internal/jobstore"
)

// ErrInvalidTime is returned for times outside 00:00..23:59 or in the wrong format.
var ErrInvalidTime = errors.New("invalid alarm time")

// ParseClock parses "H:MM" or "HH:MM".
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q (expected HH:MM)", ErrInvalidTime, s)
	}

	if !isDigits(h) || len(h) > 2 {
		return 0, 0, fmt.Errorf("%w: %q has a bad hour", ErrInvalidTime, s)
	}
	if !isDigits(m) || len(m) != 2 {
		return 0, 0, fmt.Errorf("%w: %q has a bad minute", ErrInvalidTime, s)
	}
	hour, _ = strconv.Atoi(h)
	minute, _ = strconv.Atoi(m)

	if err := checkTime(hour, minute); err != nil {
		return 0, 0, err
	}
	return hour, minute, nil
}

// ParseCode parses the four digit HHMM alarm code.
func ParseCode(code string) (hour, minute int, err error) {
	if len(code) != 4 {
		return 0, 0, fmt.Errorf("%w: code %q must be four digits HHMM", ErrInvalidTime, code)
	}
	hour, minute, ok := jobstore.DecodeClock(code)
	if !ok || !isDigits(code) {
		return 0, 0, fmt.Errorf("%w: code %q", ErrInvalidTime, code)
	}
	return hour, minute, nil
}

// Code returns the HHMM code of a time of day.
func Code(hour, minute int) string {
	return jobstore.EncodeClock(hour, minute)
}

// Clock formats a time of day as HH:MM.
func Clock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func checkTime(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("%w: hour %d out of range 0-23", ErrInvalidTime, hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("%w: minute %d out of range 0-59", ErrInvalidTime, minute)
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
