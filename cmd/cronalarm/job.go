package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/aatumaykin/cronalarm/internal/constants"
	"github.com/aatumaykin/cronalarm/internal/jobstore"
	"github.com/aatumaykin/cronalarm/internal/schedule"
)

func newJobCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Work with identified crontab jobs directly",
		Long: `Low level access to the job store. A job is a crontab block: a marker
comment "# <id>" followed by its schedule line. Lines that belong to
other tools are preserved by every command.`,
	}

	cmd.AddCommand(
		newJobListCmd(opts),
		newJobRecordsCmd(opts),
		newJobExistsCmd(opts),
		newJobAddCmd(opts),
		newJobUpdateCmd(opts),
		newJobRemoveCmd(opts),
		newJobValidateCmd(),
	)
	return cmd
}

func newJobListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the crontab verbatim",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}

			content, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}

			if content == "" {
				fmt.Fprint(cmd.OutOrStdout(), constants.MsgCrontabEmpty)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	}
}

// recordView is the printable form of a job record.
type recordView struct {
	ID       string `json:"id" yaml:"id"`
	Time     string `json:"time" yaml:"time"`
	Schedule string `json:"schedule" yaml:"schedule"`
	Command  string `json:"command" yaml:"command"`
}

func newJobRecordsCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "records [prefix]",
		Short: "List jobs whose identifier encodes a time of day (<prefix>HHMM)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}

			a, err := opts.newApp()
			if err != nil {
				return err
			}

			prefix := a.cfg.Alarm.Prefix
			if len(args) > 0 {
				prefix = args[0]
			}

			seq, err := a.store.Records(cmd.Context(), prefix)
			if err != nil {
				return err
			}

			var records []jobstore.Record
			for rec := range seq {
				records = append(records, rec)
			}
			views := lo.Map(records, func(r jobstore.Record, _ int) recordView {
				return recordView{ID: r.ID, Time: r.Clock(), Schedule: r.Schedule, Command: r.Command}
			})

			out := cmd.OutOrStdout()
			if output != outputText {
				return writeStructured(out, output, views)
			}

			for _, v := range views {
				fmt.Fprintf(out, constants.MsgJobID, v.ID)
				fmt.Fprintf(out, constants.MsgJobSchedule, v.Schedule)
				fmt.Fprintf(out, constants.MsgJobCommand, v.Command)
				fmt.Fprint(out, constants.MsgJobsListSep)
			}
			fmt.Fprintf(out, constants.MsgJobsTotal, len(views))
			return nil
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

func newJobExistsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <id>",
		Short: "Report whether a job identifier is present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}

			ok, err := a.store.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", jobstore.ErrNotFound, args[0])
			}

			fmt.Fprintln(cmd.OutOrStdout(), args[0])
			return nil
		},
	}
}

func newJobAddCmd(opts *rootOptions) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   `add "<schedule>" <command...>`,
		Short: "Append a job to the crontab",
		Example: `  cronalarm job add --id BACKUP_NIGHTLY "0 3 * * *" /usr/local/bin/backup --full
  cronalarm job add "*/15 * * * *" /usr/local/bin/poll`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}

			job := jobstore.Job{
				ID:       id,
				Schedule: args[0],
				Command:  strings.Join(args[1:], " "),
			}
			if err := a.store.Add(cmd.Context(), job); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, constants.MsgJobAdded)
			if id != "" {
				fmt.Fprintf(out, constants.MsgJobID, id)
			}
			fmt.Fprintf(out, constants.MsgJobSchedule, job.Schedule)
			fmt.Fprintf(out, constants.MsgJobCommand, job.Command)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "identifier written as the block marker")
	// flags after the schedule belong to the job's command
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newJobUpdateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   `update <id> "<schedule>"`,
		Short: "Change the schedule of a job, keeping its command",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}

			if err := a.store.UpdateSchedule(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), constants.MsgJobUpdated, args[0], args[1])
			return nil
		},
	}
}

func newJobRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a job block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}

			n, err := a.store.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), constants.MsgJobNotPresent, args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), constants.MsgJobRemoved, n, args[0])
			return nil
		},
	}
}

func newJobValidateCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   `validate "<schedule>"`,
		Short: "Check a five-field schedule and show its next run times",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := schedule.Parse(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, constants.MsgScheduleValid, expr)

			at := time.Now()
			for range count {
				if at, err = expr.Next(at); err != nil {
					return err
				}
				fmt.Fprintf(out, constants.MsgAlarmNext, at.Format(timeLayout))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "next", "n", 1, "number of upcoming run times to show")
	return cmd
}
