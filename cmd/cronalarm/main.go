package main

import (
	"fmt"
	"os"

	"github.com/aatumaykin/cronalarm/internal/constants"
	"github.com/aatumaykin/cronalarm/internal/version"
)

var (
	Version   string = constants.DefaultVersion
	BuildTime string = constants.DefaultBuildTime
	GitCommit string = constants.DefaultGitCommit
	GoVersion string = constants.DefaultGoVersion
)

func init() {
	version.SetInfo(Version, BuildTime, GitCommit, GoVersion)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, constants.MsgErrorFormat, err)
		os.Exit(1)
	}
}
