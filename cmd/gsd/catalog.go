package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gridstat/diversity/internal/catalog"
	"github.com/gridstat/diversity/internal/ui"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the preconfigured indices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The catalog is local; no database connection needed.
		path := catalogFile
		if path == "" {
			path = os.Getenv("GSD_CATALOG_FILE")
		}
		cat, err := catalog.Load(path)
		if err != nil {
			return err
		}

		if jsonOutput {
			data, err := json.MarshalIndent(cat.Indices, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tVARIABLES\tDESCRIPTION")
		for _, name := range cat.Names() {
			entry := cat.Indices[name]
			fmt.Fprintf(w, "%s\t%d\t%s\n",
				ui.RenderAccent(name), len(entry.Variables), entry.Description)
		}
		w.Flush()

		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			for _, name := range cat.Names() {
				fmt.Printf("\n%s:\n  %s\n", name, strings.Join(cat.Indices[name].Variables, "\n  "))
			}
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().BoolP("verbose", "v", false, "list the enrichment variables of each index")
}
