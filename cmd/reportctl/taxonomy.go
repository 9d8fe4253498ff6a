package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/quotediary-backend/internal/taxonomy"
)

func newTaxonomyCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Validate and print a taxonomy file (the built-in one by default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tax, err := taxonomy.LoadFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "taxonomy %s, fallback %s\n\n", tax.Version(), tax.FallbackKey())

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PRIORITY\tKEY\tSLUG\tFLAGS")
			for _, c := range tax.Categories() {
				var flags []string
				if c.Fallback {
					flags = append(flags, "fallback")
				}
				if c.ExcludeFromTrend {
					flags = append(flags, "no-trend")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.Priority, c.Key, c.Slug, strings.Join(flags, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "Taxonomy YAML file; empty uses the built-in taxonomy")
	return cmd
}
