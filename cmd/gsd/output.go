package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gridstat/diversity/internal/index"
	"github.com/gridstat/diversity/internal/model"
	"github.com/gridstat/diversity/internal/ui"
)

func printRun(run *model.IndexRun) {
	if jsonOutput {
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Run:          %s\n", ui.RenderAccent(run.ID))
	fmt.Printf("Table:        %s\n", run.Table)
	if run.IndexName != "" {
		fmt.Printf("Index:        %s\n", run.IndexName)
	}
	fmt.Printf("Output Field: %s\n", run.OutputField)
	if len(run.InputFields) > 0 {
		fmt.Printf("Input Fields: %s\n", strings.Join(run.InputFields, ", "))
	}
	fmt.Printf("Status:       %s\n", ui.RenderStatus(run.Status))
	fmt.Printf("Rows Updated: %d\n", run.RowsUpdated)
	if len(run.FailedKeys) > 0 {
		fmt.Printf("Failed Keys:  %v\n", run.FailedKeys)
	}
	if run.Error != "" {
		fmt.Printf("Error:        %s\n", run.Error)
	}
	if run.CreatedBy != "" {
		fmt.Printf("Created By:   %s\n", run.CreatedBy)
	}
	fmt.Printf("Created At:   %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Printf("Finished At:  %s\n", run.FinishedAt.Format("2006-01-02 15:04:05"))
	}
}

func printRunList(runs []*model.IndexRun, total int) {
	if jsonOutput {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTABLE\tINDEX\tOUTPUT FIELD\tSTATUS\tROWS\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			ui.RenderAccent(r.ID),
			r.Table,
			r.IndexName,
			r.OutputField,
			ui.RenderStatus(r.Status),
			r.RowsUpdated,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()
	if total > len(runs) {
		fmt.Printf("\nShowing %d of %d runs\n", len(runs), total)
	}
}

func printResults(results []index.IndexResult) {
	if jsonOutput {
		out := make([]map[string]any, len(results))
		for i, res := range results {
			out[i] = map[string]any{"index": res.Index, "run": res.Run}
			if res.Err != nil {
				out[i]["error"] = res.Err.Error()
			}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tRUN\tSTATUS\tROWS\tERROR")
	for _, res := range results {
		id, rows := "", int64(0)
		status := "-"
		if res.Run != nil {
			id = res.Run.ID
			rows = res.Run.RowsUpdated
			status = ui.RenderStatus(res.Run.Status)
		}
		errMsg := ""
		if res.Err != nil {
			errMsg = res.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			ui.RenderAccent(res.Index), id, status, rows, errMsg)
	}
	w.Flush()
}
