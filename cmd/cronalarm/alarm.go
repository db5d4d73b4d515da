package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/cronalarm/internal/alarm"
	"github.com/aatumaykin/cronalarm/internal/constants"
)

const timeLayout = "2006-01-02 15:04"

func newAlarmCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alarm",
		Short: "Manage daily alarms",
	}

	cmd.AddCommand(
		newAlarmSetCmd(opts),
		newAlarmListCmd(opts),
		newAlarmCancelCmd(opts),
		newAlarmCancelAllCmd(opts),
		newAlarmSnoozeCmd(opts),
	)
	return cmd
}

func newAlarmSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <HH:MM> [message...]",
		Short: "Set a daily alarm",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hour, minute, err := alarm.ParseClock(args[0])
			if err != nil {
				return err
			}

			svc, err := opts.alarmService()
			if err != nil {
				return err
			}

			a, err := svc.Set(cmd.Context(), hour, minute, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, constants.MsgAlarmSet, a.Time)
			if !a.Next.IsZero() {
				fmt.Fprintf(out, constants.MsgAlarmNext, a.Next.Format(timeLayout))
			}
			return nil
		},
	}
}

func newAlarmListCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alarms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}

			svc, err := opts.alarmService()
			if err != nil {
				return err
			}

			alarms, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != outputText {
				if alarms == nil {
					alarms = []alarm.Alarm{}
				}
				return writeStructured(out, output, alarms)
			}

			if len(alarms) == 0 {
				fmt.Fprint(out, constants.MsgAlarmsNone)
				return nil
			}

			fmt.Fprint(out, constants.MsgAlarmsHeader)
			for _, a := range alarms {
				if a.Next.IsZero() {
					fmt.Fprintf(out, constants.MsgAlarmItem, a.Time)
					continue
				}
				fmt.Fprintf(out, constants.MsgAlarmItemNext, a.Time, a.Next.Format(timeLayout))
			}
			return nil
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

func newAlarmCancelCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <HH:MM>",
		Short: "Cancel one alarm and its pending snooze",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hour, minute, err := alarm.ParseClock(args[0])
			if err != nil {
				return err
			}

			svc, err := opts.alarmService()
			if err != nil {
				return err
			}

			if err := svc.Cancel(cmd.Context(), hour, minute); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), constants.MsgAlarmCancelled, alarm.Clock(hour, minute))
			return nil
		},
	}
}

func newAlarmCancelAllCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-all",
		Short: "Cancel every alarm and snooze",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.alarmService()
			if err != nil {
				return err
			}

			n, err := svc.CancelAll(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), constants.MsgAlarmsCancelled, n)
			return nil
		},
	}
}

func newAlarmSnoozeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snooze <HHMM> [message...]",
		Short: "Repeat an alarm once after the snooze delay",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.alarmService()
			if err != nil {
				return err
			}

			at, err := svc.Snooze(cmd.Context(), args[0], strings.Join(args[1:], " "), time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), constants.MsgAlarmSnoozed, at.Format("15:04"))
			return nil
		},
	}
}

// alarmService builds the alarm service from the shared flags.
func (o *rootOptions) alarmService() (*alarm.Service, error) {
	a, err := o.newApp()
	if err != nil {
		return nil, err
	}
	return a.alarmService()
}
