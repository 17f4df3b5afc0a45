package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/supportagent/harness"
)

func runCmd(flags *globalFlags) *cobra.Command {
	var (
		fixtures    string
		parallelism int
		dryRun      bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run fixture cases and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if fixtures == "" {
				fixtures = cfg.Harness.Fixtures
			}
			if fixtures == "" {
				return fmt.Errorf("no fixtures given (use --fixtures or harness.fixtures)")
			}
			if parallelism < 1 {
				parallelism = cfg.Harness.Parallelism
			}

			cases, err := harness.LoadCases(fixtures)
			if err != nil {
				return err
			}

			a, release, err := buildAgent(cmd.Context(), cfg, logger, dryRun)
			if err != nil {
				return err
			}
			defer release()

			runner := harness.NewRunner(a, func(o *harness.Options) {
				o.Parallelism = parallelism
				o.Logger = logger
			})
			results, err := runner.Run(cmd.Context(), cases)
			if err != nil {
				return err
			}
			return harness.WriteReport(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVarP(&fixtures, "fixtures", "f", "", "JSON or YAML fixture file")
	cmd.Flags().IntVarP(&parallelism, "parallel", "p", 0, "cases to run concurrently (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "use a scripted model instead of a model endpoint")
	return cmd
}
