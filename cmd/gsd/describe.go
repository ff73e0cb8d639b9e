package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gridstat/diversity/internal/index"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <table> <column>",
	Short: "Add standard-score and quartile columns for a numeric column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnvironment()
		if err != nil {
			return err
		}
		defer env.close()

		updated, err := env.engine.Describe(context.Background(), index.DescribeRequest{
			Table:  args[0],
			Column: args[1],
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(map[string]any{
				"table":        args[0],
				"column":       args[1],
				"rows_updated": updated,
			}, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		fmt.Printf("Added %s_std and %s_quartile to %s (%d rows)\n", args[1], args[1], args[0], updated)
		return nil
	},
}
