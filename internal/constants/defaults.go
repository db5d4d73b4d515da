package constants

// DefaultVersion is the default version of the application
const DefaultVersion = "0.1.0-dev"

// DefaultBuildTime is the default build time when not provided at build time
const DefaultBuildTime = "unknown"

// DefaultGitCommit is the default git commit hash when not provided at build time
const DefaultGitCommit = "unknown"

// DefaultGoVersion is the default Go version when not provided at build time
const DefaultGoVersion = "unknown"

// DefaultServerAddr is where the HTTP API listens unless configured otherwise
const DefaultServerAddr = "127.0.0.1:8080"

// DefaultMetricsPath is the HTTP path of the Prometheus endpoint
const DefaultMetricsPath = "/metrics"

// DefaultTelegramTimeoutSeconds bounds a single Telegram delivery
const DefaultTelegramTimeoutSeconds = 10

// DefaultTelegramMaxAttempts is how many times a Telegram delivery is tried
const DefaultTelegramMaxAttempts = 3
