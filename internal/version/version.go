// Package version holds build information injected with -ldflags.
package version

import (
	"fmt"

	"github.com/aatumaykin/cronalarm/internal/constants"
)

var (
	Version   = constants.DefaultVersion
	BuildTime = constants.DefaultBuildTime
	GitCommit = constants.DefaultGitCommit
	GoVersion = constants.DefaultGoVersion
)

func SetInfo(v, bt, gc, gv string) {
	if v != "" {
		Version = v
	}
	if bt != "" {
		BuildTime = bt
	}
	if gc != "" {
		GitCommit = gc
	}
	if gv != "" {
		GoVersion = gv
	}
}

// Format renders the build information for "cronalarm version".
func Format() string {
	return fmt.Sprintf("cronalarm - crontab backed alarms\nVersion: %s\nBuild Time: %s\nGit Commit: %s\nGo Version: %s\n",
		Version, BuildTime, GitCommit, GoVersion)
}

// FormatStartupMessage is logged when the API server starts.
func FormatStartupMessage() string {
	return fmt.Sprintf("⏰ cronalarm запущен\nВерсия: %s\nСборка: %s", Version, BuildTime)
}
