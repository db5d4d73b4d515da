package constants

// Crontab identifiers and defaults for alarm jobs.

// AlarmPrefix starts the identifier of every alarm block, e.g. ALARM_0730.
const AlarmPrefix = "ALARM_"

// SnoozePrefix starts the identifier of a pending snooze, e.g. SNOOZE_0730.
const SnoozePrefix = "SNOOZE_"

// SnoozeMinutes is the default snooze delay.
const SnoozeMinutes = 5

// DefaultAlarmMessage is shown when an alarm has no message.
const DefaultAlarmMessage = "Alarm!"

// MetricsNamespace prefixes every exported Prometheus metric.
const MetricsNamespace = "cronalarm"
