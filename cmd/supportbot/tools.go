package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/supportagent/support"
)

func toolsCmd(flags *globalFlags) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools exposed to the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := loadConfig(flags); err != nil {
				return err
			}
			reg, err := support.NewRegistry()
			if err != nil {
				return err
			}
			defs := reg.Definitions()
			out := cmd.OutOrStdout()

			if jsonOutput {
				data, err := json.MarshalIndent(defs, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "NAME\tPARAMETERS\tDESCRIPTION\n")
			for _, d := range defs {
				params := make([]string, len(d.Parameters))
				for i, p := range d.Parameters {
					params[i] = fmt.Sprintf("%s:%s", p.Name, p.Type)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, strings.Join(params, ","), firstLine(d.Description))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
