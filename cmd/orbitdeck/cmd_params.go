package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func paramsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the runtime-tunable parameter table",
		Long:  "Params prints every parameter a client can adjust through a set_param intent, with its bounds and the value derived from the current configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			eng := buildEngine(logger)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCATEGORY\tVALUE\tMIN\tMAX\tDESCRIPTION")
			for _, p := range eng.params.Snapshot() {
				fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%s\n",
					p.Name, p.Category, p.Current, p.Min, p.Max, p.Description)
			}
			return w.Flush()
		},
	}
	return cmd
}
