package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gridstat/diversity/internal/index"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <table> <field>...",
	Short: "Compute a diversity index over the named category-count fields",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputField, _ := cmd.Flags().GetString("output-field")

		env, err := openEnvironment()
		if err != nil {
			return err
		}
		defer env.close()

		run, err := env.engine.AddIndex(context.Background(), index.AddIndexRequest{
			Table:       args[0],
			InputFields: args[1:],
			OutputField: outputField,
			CreatedBy:   actor,
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
	addCmd.Flags().String("output-field", "", "name of the index column (default "+index.DefaultOutputField+")")
}
