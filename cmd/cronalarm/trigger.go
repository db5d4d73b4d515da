package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newTriggerCmd(opts *rootOptions) *cobra.Command {
	var snoozed bool

	cmd := &cobra.Command{
		Use:   "trigger <HHMM> [message...]",
		Short: "Deliver an alarm (run by cron)",
		Long: `Deliver the alarm with the given HHMM code to the configured notifiers.
cron runs this command from the alarm's crontab entry. With --snoozed the
one-shot snooze entry of the alarm is removed after delivery.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.alarmService()
			if err != nil {
				return err
			}
			return svc.Trigger(cmd.Context(), args[0], strings.Join(args[1:], " "), snoozed)
		},
	}

	cmd.Flags().BoolVar(&snoozed, "snoozed", false, "the alarm fires from a snooze entry")
	return cmd
}
