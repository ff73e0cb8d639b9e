package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gridstat/diversity/internal/index"
	"github.com/spf13/cobra"
)

var preconfiguredCmd = &cobra.Command{
	Use:   "preconfigured <table> [index]",
	Short: "Compute a preconfigured index using the enrichment service",
	Long: `Compute one of the catalog indices against a table. The enrichment
service supplies the category-count columns; unless --keep-enrich-fields
is given, those columns are removed again after the index is written.

With --all, every catalog index is computed in turn. A failing index is
reported and the remaining indices still run.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		keep, _ := cmd.Flags().GetBool("keep-enrich-fields")
		outputField, _ := cmd.Flags().GetString("output-field")

		if all && len(args) == 2 {
			return fmt.Errorf("--all and an index name are mutually exclusive")
		}
		if !all && len(args) < 2 {
			return fmt.Errorf("an index name or --all is required")
		}

		env, err := openEnvironment()
		if err != nil {
			return err
		}
		defer env.close()

		if all {
			results := env.engine.AddAllPreconfigured(context.Background(), args[0], keep, actor)
			printResults(results)
			for _, res := range results {
				if res.Err != nil {
					os.Exit(1)
				}
			}
			return nil
		}

		run, err := env.engine.AddPreconfigured(context.Background(), index.PreconfiguredRequest{
			Table:            args[0],
			Index:            args[1],
			OutputField:      outputField,
			KeepEnrichFields: keep,
			CreatedBy:        actor,
		})
		if err != nil {
			if run != nil {
				printRun(run)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printRun(run)
		return nil
	},
}

func init() {
	preconfiguredCmd.Flags().Bool("all", false, "compute every catalog index")
	preconfiguredCmd.Flags().Bool("keep-enrich-fields", false, "keep the enrichment columns after the run")
	preconfiguredCmd.Flags().String("output-field", "", "name of the index column (default "+index.DefaultOutputField+"_<index>)")
}
