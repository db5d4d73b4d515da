package crontab

import (
	"strings"
	"unicode"
)

// ScheduleFields is the number of leading schedule fields of an entry line.
const ScheduleFields = 5

// SplitEntry splits an entry line into its five schedule fields and the
// command that follows them. The command is returned exactly as written,
// including any internal whitespace. ok is false when the line has fewer
// than five fields or no command.
func SplitEntry(raw string) (fields []string, command string, ok bool) {
	rest := strings.TrimLeftFunc(raw, unicode.IsSpace)

	for len(fields) < ScheduleFields {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return nil, "", false
		}
		fields = append(fields, rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}

	if rest == "" {
		return nil, "", false
	}
	return fields, rest, true
}

// JoinEntry builds an entry line from a schedule and a command.
func JoinEntry(schedule, command string) string {
	return schedule + " " + command
}
