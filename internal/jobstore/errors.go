package jobstore

import (
	"errors"
	"fmt"

	"github.com/aatumaykin/cronalarm/internal/schedule"
)

var (
	// ErrInvalidSchedule is returned when a schedule expression is rejected by the validator
	ErrInvalidSchedule = schedule.ErrInvalidSchedule

	// ErrInvalidJob is returned for identifiers or commands that cannot be written as crontab lines
	ErrInvalidJob = errors.New("invalid job")

	// ErrInvalidIdentifier is returned for identifiers that cannot be written as a marker line
	ErrInvalidIdentifier = fmt.Errorf("%w: bad identifier", ErrInvalidJob)

	// ErrDuplicateIdentifier is returned when adding a job whose identifier is already present
	ErrDuplicateIdentifier = errors.New("identifier already exists")

	// ErrNotFound is returned when an identifier is absent from the crontab
	ErrNotFound = errors.New("identifier not found")

	// ErrMalformedBlock is returned when an identifier has no schedule line to operate on
	ErrMalformedBlock = errors.New("malformed job block")

	// ErrExternalRead is returned when the current crontab cannot be read
	ErrExternalRead = errors.New("failed to read crontab")

	// ErrExternalWrite is returned when the new crontab cannot be installed
	ErrExternalWrite = errors.New("failed to install crontab")
)

// outcome maps an error to the label used in logs and metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidSchedule), errors.Is(err, ErrInvalidJob):
		return "invalid"
	case errors.Is(err, ErrDuplicateIdentifier):
		return "duplicate"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformedBlock):
		return "malformed"
	case errors.Is(err, ErrExternalRead):
		return "read_error"
	case errors.Is(err, ErrExternalWrite):
		return "write_error"
	default:
		return "error"
	}
}
