package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gridstat/diversity/internal/model"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs [id]",
	Short: "List index runs, or show one run in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnvironment()
		if err != nil {
			return err
		}
		defer env.close()

		if len(args) == 1 {
			run, err := env.store.GetRun(context.Background(), args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			printRun(run)
			return nil
		}

		table, _ := cmd.Flags().GetString("table")
		indexName, _ := cmd.Flags().GetString("index")
		statusFlag, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		filter := model.RunFilter{
			Table:  table,
			Index:  indexName,
			Limit:  limit,
			Offset: offset,
		}
		if statusFlag != "" {
			for _, s := range strings.Split(statusFlag, ",") {
				status := model.RunStatus(s)
				if !status.IsValid() {
					return fmt.Errorf("unknown status %q", s)
				}
				filter.Status = append(filter.Status, status)
			}
		}

		runs, total, err := env.store.ListRuns(context.Background(), filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printRunList(runs, total)
		return nil
	},
}

func init() {
	runsCmd.Flags().String("table", "", "filter by dataset table")
	runsCmd.Flags().String("index", "", "filter by preconfigured index name")
	runsCmd.Flags().String("status", "", "filter by status (comma-separated)")
	runsCmd.Flags().Int("limit", 50, "maximum number of runs to list")
	runsCmd.Flags().Int("offset", 0, "number of runs to skip")
}
