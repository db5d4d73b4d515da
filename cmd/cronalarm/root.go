package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/cronalarm/internal/config"
	"github.com/aatumaykin/cronalarm/internal/constants"
	"github.com/aatumaykin/cronalarm/internal/version"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	envPath    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cronalarm",
		Short: "cronalarm - daily alarms kept in your crontab",
		Long: `cronalarm sets, lists and cancels daily alarms. Timekeeping is left to cron:
every alarm is a named block in the crontab that runs "cronalarm trigger"
when it fires. Entries that belong to other tools are never touched.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvOptional(opts.envPath)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath(), "path to config.toml")
	cmd.PersistentFlags().StringVar(&opts.envPath, "env-file", constants.DefaultEnvPath, "path to a .env file loaded before the config")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	cmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(opts),
		newAlarmCmd(opts),
		newTriggerCmd(opts),
		newJobCmd(opts),
		newServeCmd(opts),
	)

	return cmd
}

func defaultConfigPath() string {
	if path := os.Getenv(constants.EnvConfigPath); path != "" {
		return path
	}
	return constants.DefaultConfigPath
}
