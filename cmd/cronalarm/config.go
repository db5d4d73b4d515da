package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/aatumaykin/cronalarm/internal/config"
	"github.com/aatumaykin/cronalarm/internal/constants"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Validate and inspect the cronalarm configuration.`,
	}

	cmd.AddCommand(newConfigValidateCmd(opts), newConfigShowCmd(opts))
	return cmd
}

func newConfigValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate configuration file",
		Long:  `Validate the configuration file and report every problem found.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if len(args) > 0 {
				path = args[0]
			}

			out := cmd.OutOrStdout()

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			if errs := cfg.Validate(); len(errs) > 0 {
				fmt.Fprint(out, constants.MsgConfigValidationError)
				for _, e := range errs {
					fmt.Fprintf(out, constants.MsgConfigValidatePrefix, e)
				}
				return fmt.Errorf("%d configuration errors in %s", len(errs), path)
			}

			fmt.Fprint(out, constants.MsgConfigValid)
			return nil
		},
	}
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg.Redacted())
		},
	}
}
