// Package index implements the diversity index engine: schema
// validation, field addition, and the row update pass that writes a
// Gini-Simpson score into every record of a dataset table.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gridstat/diversity/internal/catalog"
	"github.com/gridstat/diversity/internal/enrich"
	"github.com/gridstat/diversity/internal/events"
	"github.com/gridstat/diversity/internal/idgen"
	"github.com/gridstat/diversity/internal/model"
	"github.com/gridstat/diversity/internal/stats"
	"github.com/gridstat/diversity/internal/store"
)

// DefaultOutputField is the column name used when the caller does not
// pick one.
const DefaultOutputField = "simpson_diversity_index"

// Engine sequences the add-index workflows against a dataset store.
// It assumes a single writer: callers must not run two invocations
// against the same table concurrently.
type Engine struct {
	store    store.Store
	catalog  *catalog.Catalog
	enricher enrich.Enricher
	events   events.Publisher
	logger   *slog.Logger
}

// New creates an engine. enricher may be nil when only ad hoc indexes
// are computed; publisher and logger fall back to no-op and default.
func New(s store.Store, c *catalog.Catalog, enricher enrich.Enricher, publisher events.Publisher, logger *slog.Logger) *Engine {
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    s,
		catalog:  c,
		enricher: enricher,
		events:   publisher,
		logger:   logger,
	}
}

// AddIndexRequest describes an ad hoc index computation: the caller
// names the category-count fields directly.
type AddIndexRequest struct {
	Table       string   `json:"table"`
	InputFields []string `json:"input_fields"`
	OutputField string   `json:"output_field,omitempty"` // default "simpson_diversity_index"
	CreatedBy   string   `json:"created_by,omitempty"`
}

// AddIndex validates the request against the table schema, adds the
// output column, and writes a diversity score into every row. The
// returned run records the outcome even when err is non-nil.
func (e *Engine) AddIndex(ctx context.Context, req AddIndexRequest) (*model.IndexRun, error) {
	if req.OutputField == "" {
		req.OutputField = DefaultOutputField
	}
	if req.Table == "" {
		return nil, fmt.Errorf("no table given")
	}

	run, err := e.newRun(ctx, req.Table, "", req.OutputField, req.InputFields, req.CreatedBy)
	if err != nil {
		return nil, err
	}

	if err := e.compute(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

// newRun persists a pending run record and announces it.
func (e *Engine) newRun(ctx context.Context, table, indexName, outputField string, inputFields []string, createdBy string) (*model.IndexRun, error) {
	id, err := idgen.Generate()
	if err != nil {
		return nil, err
	}

	run := &model.IndexRun{
		ID:          id,
		Table:       table,
		IndexName:   indexName,
		OutputField: outputField,
		InputFields: inputFields,
		Status:      model.StatusPending,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   createdBy,
	}
	if err := e.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	e.publish(ctx, events.RunStarted{Run: run})
	return run, nil
}

// compute drives a run through validation, schema extension, and the
// row update pass, persisting each state transition. A completed
// schema extension is never undone; recovery is compensating cleanup,
// not rollback.
func (e *Engine) compute(ctx context.Context, run *model.IndexRun) error {
	schema, err := e.store.ListFields(ctx, run.Table)
	if err != nil {
		return e.fail(ctx, run, err)
	}
	keyField, err := e.store.PrimaryKey(ctx, run.Table)
	if err != nil {
		return e.fail(ctx, run, err)
	}

	if err := validateSchema(run.Table, schema, run.OutputField, run.InputFields); err != nil {
		return e.fail(ctx, run, err)
	}
	e.setStatus(ctx, run, model.StatusValidated)

	field := model.Field{Name: run.OutputField, Type: model.FieldTypeFloat}
	if err := e.store.AddField(ctx, run.Table, field); err != nil {
		return e.fail(ctx, run, err)
	}
	e.setStatus(ctx, run, model.StatusSchemaExtended)
	e.publish(ctx, events.SchemaExtended{
		Table: run.Table, Field: run.OutputField, RunID: run.ID,
	})
	e.logger.Info("schema extended", "table", run.Table, "field", run.OutputField, "run", run.ID)

	updated, rowErrs, err := e.updateRows(ctx, run.Table, keyField, run.InputFields, run.OutputField)
	run.RowsUpdated = updated
	if err != nil {
		return e.fail(ctx, run, err)
	}
	if len(rowErrs) > 0 {
		perr := &model.PartialUpdateError{Table: run.Table, Field: run.OutputField, Rows: rowErrs}
		run.FailedKeys = perr.FailedKeys()
		return e.fail(ctx, run, perr)
	}
	e.setStatus(ctx, run, model.StatusRowsUpdated)

	e.finish(ctx, run)
	return nil
}

// updateRows streams every record, computes the index over the
// selected fields, and writes it into the output field. A row's score
// is computed only from a fully scanned selection; rows that fail to
// read or write are accumulated and the pass continues, so one corrupt
// record does not discard the rest.
func (e *Engine) updateRows(ctx context.Context, table, keyField string, selection []string, outputField string) (int64, []model.RowError, error) {
	var (
		updated int64
		rowErrs []model.RowError
	)

	err := e.store.ScanRows(ctx, table, keyField, selection, func(key int64, counts []float64, scanErr error) error {
		if scanErr != nil {
			rowErrs = append(rowErrs, model.RowError{Key: key, Err: scanErr})
			return nil
		}

		score := stats.SimpsonIndex(counts)
		if err := e.store.UpdateRow(ctx, table, keyField, key, map[string]float64{outputField: score}); err != nil {
			rowErrs = append(rowErrs, model.RowError{Key: key, Err: err})
			return nil
		}
		updated++
		return nil
	})
	if err != nil {
		return updated, rowErrs, fmt.Errorf("update rows of %q: %w", table, err)
	}
	return updated, rowErrs, nil
}

// setStatus persists an intermediate state transition. Persistence
// failures here are logged rather than fatal: the run itself can still
// make progress and the terminal state is written by finish or fail.
func (e *Engine) setStatus(ctx context.Context, run *model.IndexRun, status model.RunStatus) {
	run.Status = status
	if err := e.store.UpdateRun(ctx, run); err != nil {
		e.logger.Warn("failed to persist run status", "run", run.ID, "status", status, "error", err)
	}
}

func (e *Engine) finish(ctx context.Context, run *model.IndexRun) {
	now := time.Now().UTC()
	run.Status = model.StatusDone
	run.FinishedAt = &now
	if err := e.store.UpdateRun(ctx, run); err != nil {
		e.logger.Warn("failed to persist run completion", "run", run.ID, "error", err)
	}
	e.publish(ctx, events.RunCompleted{Run: run})
	e.logger.Info("run completed", "run", run.ID, "table", run.Table, "rows", run.RowsUpdated)
}

func (e *Engine) fail(ctx context.Context, run *model.IndexRun, cause error) error {
	now := time.Now().UTC()
	run.Status = model.StatusFailed
	run.Error = cause.Error()
	run.FinishedAt = &now
	if err := e.store.UpdateRun(ctx, run); err != nil {
		e.logger.Warn("failed to persist run failure", "run", run.ID, "error", err)
	}
	e.publish(ctx, events.RunFailed{Run: run, Reason: cause.Error()})
	e.logger.Error("run failed", "run", run.ID, "table", run.Table, "error", cause)
	return cause
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if err := e.events.Publish(ctx, event); err != nil {
		e.logger.Warn("failed to publish event", "topic", event.Topic(), "error", err)
	}
}
