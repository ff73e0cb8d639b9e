package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gridstat/diversity/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <table> [field]...",
	Short: "Export a table's numeric columns as JSONL",
	Long: `Export dataset rows as JSONL: one header record followed by one
record per row. Without field arguments, every numeric column except
the key is exported.

The payload goes to stdout by default. --out writes it to a local file
instead; --s3 uploads it to the bucket configured via GSD_EXPORT_S3_*.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")
		toS3, _ := cmd.Flags().GetBool("s3")

		env, err := openEnvironment()
		if err != nil {
			return err
		}
		defer env.close()

		table, fields := args[0], args[1:]
		ctx := context.Background()

		var dests []export.Destination
		if outPath != "" {
			dests = append(dests, export.NewFileDestination(outPath))
		}
		if toS3 {
			if env.cfg.ExportS3Bucket == "" {
				return fmt.Errorf("GSD_EXPORT_S3_BUCKET is not set")
			}
			key := env.cfg.ExportS3Key
			if key == "" {
				key = export.DefaultObjectKey(table, time.Now())
			}
			s3dest, err := export.NewS3Destination(ctx,
				env.cfg.ExportS3Bucket, key,
				env.cfg.ExportS3Region, env.cfg.ExportS3Endpoint)
			if err != nil {
				return err
			}
			dests = append(dests, s3dest)
		}

		if len(dests) == 0 {
			if err := export.ExportJSONL(ctx, env.store, table, fields, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return nil
		}

		if err := export.Run(ctx, env.store, table, fields, dests, env.logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "", "write the JSONL payload to this file")
	exportCmd.Flags().Bool("s3", false, "upload the JSONL payload to the configured S3 bucket")
}
