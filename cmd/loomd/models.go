package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/loreweaver/loom/internal/model"
	"github.com/spf13/cobra"
)

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the built-in model catalog",
		Run: func(cmd *cobra.Command, _ []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCONTEXT TOKENS\tENCODING")
			for _, d := range model.All() {
				fmt.Fprintf(w, "%s\t%d\t%s\n", d.Name, d.ContextTokens, d.Encoding)
			}
			w.Flush()
		},
	}
}
