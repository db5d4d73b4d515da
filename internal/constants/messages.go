package constants

// Package messages contains the text printed by the cronalarm command line.

// Alarm messages
const (
	// MsgAlarmSet confirms a new daily alarm.
	MsgAlarmSet = "⏰ Alarm set for %s daily\n"

	// MsgAlarmNext shows the next fire time of an alarm.
	MsgAlarmNext = "   Next: %s\n"

	// MsgAlarmsNone is printed when no alarm is scheduled.
	MsgAlarmsNone = "No alarms currently set\n"

	// MsgAlarmsHeader is the header of the alarm list.
	MsgAlarmsHeader = "Current alarms:\n"

	// MsgAlarmItem is one line of the alarm list.
	MsgAlarmItem = "- %s\n"

	// MsgAlarmItemNext is one line of the alarm list with its next fire time.
	MsgAlarmItemNext = "- %s (next: %s)\n"

	// MsgAlarmCancelled confirms cancellation of one alarm.
	MsgAlarmCancelled = "✅ Alarm at %s cancelled\n"

	// MsgAlarmsCancelled reports how many alarms and snoozes were removed.
	MsgAlarmsCancelled = "✅ Cancelled %d alarms\n"

	// MsgAlarmSnoozed confirms a snooze.
	MsgAlarmSnoozed = "⏰ Alarm snoozed until %s\n"
)

// Job messages
const (
	// MsgJobAdded confirms a new crontab job.
	MsgJobAdded = "✅ Job added\n"

	// MsgJobID is the label for the job identifier.
	MsgJobID = "ID: %s\n"

	// MsgJobSchedule is the label for the job schedule.
	MsgJobSchedule = "Schedule: %s\n"

	// MsgJobCommand is the label for the job command.
	MsgJobCommand = "Command: %s\n"

	// MsgJobUpdated confirms a schedule change.
	MsgJobUpdated = "✅ Job %s now runs at %s\n"

	// MsgJobRemoved reports removed blocks.
	MsgJobRemoved = "✅ Removed %d block(s) for %s\n"

	// MsgJobNotPresent is printed when remove found nothing.
	MsgJobNotPresent = "Nothing to remove: no job with identifier %s\n"

	// MsgJobsListSep separates job records.
	MsgJobsListSep = "---\n"

	// MsgJobsTotal is the footer of the record list.
	MsgJobsTotal = "Total: %d\n"

	// MsgCrontabEmpty is printed for an empty crontab.
	MsgCrontabEmpty = "Crontab is empty\n"

	// MsgScheduleValid confirms a schedule expression.
	MsgScheduleValid = "✅ %s is a valid schedule\n"
)

// Config messages
const (
	// MsgConfigLoadError is the error message when configuration loading fails.
	MsgConfigLoadError = "❌ Failed to load configuration: %v\n"

	// MsgConfigValidationError is the message when configuration validation fails.
	MsgConfigValidationError = "❌ Configuration validation failed:\n"

	// MsgConfigValid is the message when configuration is successfully loaded and validated.
	MsgConfigValid = "✅ Configuration is valid\n"

	// MsgConfigValidatePrefix is the prefix for configuration validation errors.
	MsgConfigValidatePrefix = "  - %v\n"
)

// Server messages
const (
	// MsgServerListening is printed once the HTTP API is accepting connections.
	MsgServerListening = "🚀 Listening on %s\n"

	// MsgServerStopped is printed after a graceful shutdown.
	MsgServerStopped = "👋 Server stopped\n"
)

// MsgErrorFormat is the prefix for formatting error messages.
const MsgErrorFormat = "❌ Error: %v\n"
