package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/gridstat/diversity/internal/events"
	"github.com/gridstat/diversity/internal/model"
)

// PreconfiguredRequest names one of the catalog indices to compute.
// The enrichment service supplies the category-count columns; when
// KeepEnrichFields is false those columns are dropped again after the
// index is written.
type PreconfiguredRequest struct {
	Table            string `json:"table"`
	Index            string `json:"index"`
	OutputField      string `json:"output_field,omitempty"` // default "simpson_diversity_index_<index>"
	KeepEnrichFields bool   `json:"keep_enrich_fields,omitempty"`
	CreatedBy        string `json:"created_by,omitempty"`
}

// AddPreconfigured enriches the table with the catalog variables for
// the named index, computes the index over the enriched columns, and
// optionally drops the enrichment-only columns afterwards. Only the
// columns the enricher reported adding are ever dropped.
func (e *Engine) AddPreconfigured(ctx context.Context, req PreconfiguredRequest) (*model.IndexRun, error) {
	if req.Table == "" {
		return nil, fmt.Errorf("no table given")
	}
	entry, err := e.catalog.Lookup(req.Index)
	if err != nil {
		return nil, err
	}
	if e.enricher == nil {
		return nil, &model.EnrichmentError{Index: req.Index, Err: errors.New("no enrichment service configured")}
	}
	if req.OutputField == "" {
		req.OutputField = DefaultOutputField + "_" + req.Index
	}

	run, err := e.newRun(ctx, req.Table, req.Index, req.OutputField, nil, req.CreatedBy)
	if err != nil {
		return nil, err
	}

	// Check the output field before enriching: a doomed run must not
	// cost a remote enrichment call, let alone leave its columns in
	// the table.
	schema, err := e.store.ListFields(ctx, req.Table)
	if err != nil {
		return run, e.fail(ctx, run, err)
	}
	if schema.Has(req.OutputField) {
		return run, e.fail(ctx, run, &model.DuplicateFieldError{Table: req.Table, Field: req.OutputField})
	}

	enrichFields, err := e.enricher.Enrich(ctx, req.Table, entry.Variables)
	if err != nil {
		var ee *model.EnrichmentError
		if errors.As(err, &ee) && ee.Index == "" {
			ee.Index = req.Index
		}
		return run, e.fail(ctx, run, err)
	}
	run.InputFields = enrichFields
	run.EnrichFields = enrichFields
	e.logger.Info("table enriched", "table", req.Table, "index", req.Index, "fields", len(enrichFields))

	if err := e.compute(ctx, run); err != nil {
		// The dataset table is externally owned: even a failed run
		// must not leave enrichment columns behind unless the caller
		// asked to keep them.
		if !req.KeepEnrichFields {
			if derr := e.dropEnrichFields(ctx, run); derr != nil {
				e.logger.Warn("failed to clean up enrichment fields after failed run",
					"run", run.ID, "table", run.Table, "error", derr)
			}
		}
		return run, err
	}

	if !req.KeepEnrichFields {
		if err := e.dropEnrichFields(ctx, run); err != nil {
			return run, err
		}
	}
	return run, nil
}

// dropEnrichFields removes the columns the enrichment step added.
// The index column itself and caller-supplied columns are never
// touched. Drop failures are logged and reported but do not undo the
// completed computation.
func (e *Engine) dropEnrichFields(ctx context.Context, run *model.IndexRun) error {
	var failed []string
	for _, field := range run.EnrichFields {
		if err := e.store.DropField(ctx, run.Table, field); err != nil {
			e.logger.Warn("failed to drop enrichment field", "table", run.Table, "field", field, "error", err)
			failed = append(failed, field)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("dropping enrichment fields from %q: %v", run.Table, failed)
	}

	run.EnrichFields = nil
	if err := e.store.UpdateRun(ctx, run); err != nil {
		e.logger.Warn("failed to persist run cleanup", "run", run.ID, "error", err)
	}
	e.publish(ctx, events.FieldsDropped{
		Table: run.Table, Fields: run.InputFields, RunID: run.ID,
	})
	return nil
}

// IndexResult pairs one catalog index with the outcome of its run in
// an "all" invocation.
type IndexResult struct {
	Index string          `json:"index"`
	Run   *model.IndexRun `json:"run,omitempty"`
	Err   error           `json:"-"`
}

// AddAllPreconfigured computes every catalog index against the table,
// one run per index. A failing index is reported in its result and the
// remaining indices still run; the caller inspects each result.
func (e *Engine) AddAllPreconfigured(ctx context.Context, table string, keepEnrichFields bool, createdBy string) []IndexResult {
	names := e.catalog.Names()
	results := make([]IndexResult, 0, len(names))
	for _, name := range names {
		run, err := e.AddPreconfigured(ctx, PreconfiguredRequest{
			Table:            table,
			Index:            name,
			KeepEnrichFields: keepEnrichFields,
			CreatedBy:        createdBy,
		})
		results = append(results, IndexResult{Index: name, Run: run, Err: err})
	}
	return results
}
