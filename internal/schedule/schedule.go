// Package schedule validates five-field crontab schedule expressions.
//
// The accepted grammar is deliberately narrow: every field is either a wildcard,
// a literal integer inside the field range, or a step "*/N" with N inside the
// field range. Lists, ranges and names are rejected. Validation is purely
// syntactic per field, so "0 0 31 2 *" is accepted just like cron accepts it.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wasilibs/go-re2"
)

// ErrInvalidSchedule is returned when an expression does not match the grammar.
var ErrInvalidSchedule = errors.New("invalid schedule")

// FieldCount is the number of fields in a schedule expression.
const FieldCount = 5

// Field describes one position of a schedule expression.
type Field struct {
	Name string
	Min  int
	Max  int
}

// Fields lists the schedule positions in crontab order.
var Fields = [FieldCount]Field{
	{Name: "minute", Min: 0, Max: 59},
	{Name: "hour", Min: 0, Max: 23},
	{Name: "day-of-month", Min: 1, Max: 31},
	{Name: "month", Min: 1, Max: 12},
	{Name: "day-of-week", Min: 0, Max: 6},
}

// fieldPattern matches "*", "N" or "*/N" with no leading zeros; ranges are checked separately.
var fieldPattern = re2.MustCompile(`^(\*|\*/(0|[1-9][0-9]?)|(0|[1-9][0-9]?))$`)

// Expression is a validated five-field schedule.
type Expression [FieldCount]string

// Validate reports whether text is a valid schedule expression.
func Validate(text string) bool {
	_, err := Parse(text)
	return err == nil
}

// Parse validates text and returns the typed expression.
func Parse(text string) (Expression, error) {
	var expr Expression

	parts := strings.Fields(text)
	if len(parts) != FieldCount {
		return expr, fmt.Errorf("%w: expected %d fields, got %d", ErrInvalidSchedule, FieldCount, len(parts))
	}

	for i, part := range parts {
		if err := checkField(Fields[i], part); err != nil {
			return expr, err
		}
		expr[i] = part
	}

	return expr, nil
}

func checkField(f Field, value string) error {
	m := fieldPattern.FindStringSubmatch(value)
	if m == nil {
		return fmt.Errorf("%w: %s field %q is malformed", ErrInvalidSchedule, f.Name, value)
	}
	if value == "*" {
		return nil
	}

	digits := m[2]
	if digits == "" {
		digits = m[3]
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < f.Min || n > f.Max {
		return fmt.Errorf("%w: %s field %q out of range %d-%d", ErrInvalidSchedule, f.Name, value, f.Min, f.Max)
	}

	return nil
}

// Daily returns the expression firing every day at hour:minute.
func Daily(hour, minute int) (Expression, error) {
	return Parse(fmt.Sprintf("%d %d * * *", minute, hour))
}

// String renders the expression with single spaces.
func (e Expression) String() string {
	return strings.Join(e[:], " ")
}

// Minute returns the minute field.
func (e Expression) Minute() string { return e[0] }

// Hour returns the hour field.
func (e Expression) Hour() string { return e[1] }

// Next returns the first activation time after from.
// Expressions such as "*/0" pass the grammar but cannot be scheduled; they return an error here.
func (e Expression) Next(from time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(e.String())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to compute next run: %w", err)
	}

	next := sched.Next(from)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("schedule %q never fires", e.String())
	}
	return next, nil
}
