package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/supportagent/harness"
)

func askCmd(flags *globalFlags) *cobra.Command {
	var (
		orderCtx harness.OrderContext
		items    []string
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Answer a single customer query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			a, release, err := buildAgent(cmd.Context(), cfg, logger, dryRun)
			if err != nil {
				return err
			}
			defer release()

			orderCtx.Items = harness.Items(items)
			c := harness.Case{ID: "cli", UserInput: strings.Join(args, " "), Context: orderCtx}

			res, err := harness.NewRunner(a, func(o *harness.Options) { o.Logger = logger }).RunCase(cmd.Context(), c)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ACTION TAKEN: %s\n", res.ActionSummary())
			fmt.Fprintf(out, "RESPONSE:     %s\n", res.Response)
			return res.Err
		},
	}
	cmd.Flags().StringVar(&orderCtx.TimePlaced, "time-placed", "", "order placement time")
	cmd.Flags().StringSliceVar(&items, "items", nil, "ordered items")
	cmd.Flags().StringVar(&orderCtx.ETA, "eta", "", "estimated delivery time")
	cmd.Flags().StringVar(&orderCtx.Status, "status", "", "order status")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "use a scripted model instead of a model endpoint")
	return cmd
}
