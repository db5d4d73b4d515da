package alarm

import (
	"strings"
	"unicode"

	"github.com/kballard/go-shellquote"
	"golang.org/x/text/unicode/norm"
)

// maxMessageRunes bounds the message embedded into a crontab line.
const maxMessageRunes = 200

// NormalizeMessage prepares a user message for embedding into a crontab
// line: NFKC normalization, control characters (including newlines) turned
// into spaces, runs of whitespace collapsed and the result truncated.
func NormalizeMessage(msg string) string {
	msg = norm.NFKC.String(msg)
	msg = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, msg)
	msg = strings.Join(strings.Fields(msg), " ")

	if runes := []rune(msg); len(runes) > maxMessageRunes {
		msg = strings.TrimSpace(string(runes[:maxMessageRunes]))
	}
	return msg
}

// triggerCommand builds the command line cron runs when the alarm fires:
//
//	<executable> [--config <path>] trigger [--snoozed] -- <code> <message>
//
// Arguments are shell quoted and '%' is escaped, since cron turns a bare
// '%' into a newline. "--" keeps a message starting with '-' from being
// parsed as a flag.
func (s *Service) triggerCommand(code, message string, snoozed bool) string {
	args := []string{s.cfg.Executable}
	if s.cfg.ConfigPath != "" {
		args = append(args, "--config", s.cfg.ConfigPath)
	}
	args = append(args, "trigger")
	if snoozed {
		args = append(args, "--snoozed")
	}
	args = append(args, "--", code, message)

	return escapePercent(shellquote.Join(args...))
}

func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%", `\%`)
}
