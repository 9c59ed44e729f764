package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"vmattr/internal/config"
	"vmattr/internal/preflight"
	"vmattr/internal/run"
)

var (
	reportFlag bool
	inputFlag  string
	configFlag string
)

var rootCmd = &cobra.Command{
	Use:   "vmattr <server>",
	Short: "Apply custom attribute values to vSphere VMs from a CSV file",
	Long: `vmattr connects to a vCenter server, ensures every attribute column
of the input CSV exists as a custom attribute, and sets per-VM values
row by row. With --report no change is made; every intended change is
logged instead.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Preflight gates the run before any file I/O, config included.
		if err := preflight.Check(); err != nil {
			err = errors.Wrap(err, "preflight check failed")
			cmd.PrintErrln(err)
			return err
		}

		cfg, err := config.LoadConfig(configFlag)
		if err != nil {
			cmd.PrintErrln(err)
			return err
		}

		opts := run.Options{
			Server:    args[0],
			Report:    reportFlag,
			InputPath: inputFlag,
		}
		if err := run.Execute(context.Background(), cfg, opts); err != nil {
			cmd.PrintErrln(err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVar(&reportFlag, "report", false, "Report intended changes without applying them")
	rootCmd.Flags().StringVar(&inputFlag, "input", "", "Path to the input CSV (skips the interactive picker)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", ".", "Directory searched for config.yaml")

	rootCmd.AddCommand(credentialCmd)
}
