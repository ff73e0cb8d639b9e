package index

import (
	"context"
	"fmt"

	"github.com/gridstat/diversity/internal/model"
	"github.com/gridstat/diversity/internal/stats"
)

// DescribeRequest asks for descriptive companion columns for one
// numeric column: a standard-score column and a quartile column.
type DescribeRequest struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Describe appends <column>_std and <column>_quartile columns holding
// each row's standard score and quartile relative to the whole column.
// The same validation rules apply as for index runs: both new names
// must be free and the source column must exist.
func (e *Engine) Describe(ctx context.Context, req DescribeRequest) (int64, error) {
	if req.Table == "" {
		return 0, fmt.Errorf("no table given")
	}
	if req.Column == "" {
		return 0, fmt.Errorf("no column given")
	}

	stdField := req.Column + "_std"
	quartileField := req.Column + "_quartile"

	schema, err := e.store.ListFields(ctx, req.Table)
	if err != nil {
		return 0, err
	}
	keyField, err := e.store.PrimaryKey(ctx, req.Table)
	if err != nil {
		return 0, err
	}

	if err := validateSchema(req.Table, schema, stdField, []string{req.Column}); err != nil {
		return 0, err
	}
	if schema.Has(quartileField) {
		return 0, &model.DuplicateFieldError{Table: req.Table, Field: quartileField}
	}

	// Both passes need the full column: the scores are relative to the
	// whole distribution, so read everything before writing anything.
	var (
		keys   []int64
		values []float64
	)
	err = e.store.ScanRows(ctx, req.Table, keyField, []string{req.Column}, func(key int64, counts []float64, scanErr error) error {
		if scanErr != nil {
			return fmt.Errorf("row %d: %w", key, scanErr)
		}
		keys = append(keys, key)
		values = append(values, counts[0])
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("read column %q of %q: %w", req.Column, req.Table, err)
	}

	if err := e.store.AddField(ctx, req.Table, model.Field{Name: stdField, Type: model.FieldTypeFloat}); err != nil {
		return 0, err
	}
	if err := e.store.AddField(ctx, req.Table, model.Field{Name: quartileField, Type: model.FieldTypeBigint}); err != nil {
		return 0, err
	}

	scores := stats.StdScores(values)
	quartiles := stats.Quartiles(values)

	var (
		updated int64
		rowErrs []model.RowError
	)
	for i, key := range keys {
		err := e.store.UpdateRow(ctx, req.Table, keyField, key, map[string]float64{
			stdField:      scores[i],
			quartileField: float64(quartiles[i]),
		})
		if err != nil {
			rowErrs = append(rowErrs, model.RowError{Key: key, Err: err})
			continue
		}
		updated++
	}
	if len(rowErrs) > 0 {
		return updated, &model.PartialUpdateError{Table: req.Table, Field: stdField, Rows: rowErrs}
	}

	e.logger.Info("described column", "table", req.Table, "column", req.Column, "rows", updated)
	return updated, nil
}
