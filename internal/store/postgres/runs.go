package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/gridstat/diversity/internal/model"
)

// runColumns is the column list used for SELECT statements on the
// diversity_runs table.
const runColumns = `id, table_name, index_name, output_field, input_fields,
	enrich_fields, status, rows_updated, failed_keys, error,
	created_at, created_by, finished_at`

func queryCreateRun(ctx context.Context, db executor, r *model.IndexRun) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO diversity_runs (
			id, table_name, index_name, output_field, input_fields,
			enrich_fields, status, rows_updated, failed_keys, error,
			created_at, created_by, finished_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13
		)`,
		r.ID,
		r.Table,
		r.IndexName,
		r.OutputField,
		pq.Array(r.InputFields),
		pq.Array(r.EnrichFields),
		string(r.Status),
		r.RowsUpdated,
		pq.Array(r.FailedKeys),
		r.Error,
		r.CreatedAt,
		r.CreatedBy,
		nullTimePtr(r.FinishedAt),
	)
	return err
}

func queryUpdateRun(ctx context.Context, db executor, r *model.IndexRun) error {
	res, err := db.ExecContext(ctx, `
		UPDATE diversity_runs SET
			output_field = $2,
			input_fields = $3,
			enrich_fields = $4,
			status = $5,
			rows_updated = $6,
			failed_keys = $7,
			error = $8,
			finished_at = $9
		WHERE id = $1`,
		r.ID,
		r.OutputField,
		pq.Array(r.InputFields),
		pq.Array(r.EnrichFields),
		string(r.Status),
		r.RowsUpdated,
		pq.Array(r.FailedKeys),
		r.Error,
		nullTimePtr(r.FinishedAt),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %q not found", r.ID)
	}
	return nil
}

func queryGetRun(ctx context.Context, db executor, id string) (*model.IndexRun, error) {
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM diversity_runs WHERE id = $1`, id)
	return scanRun(row)
}

func queryListRuns(ctx context.Context, db executor, filter model.RunFilter) ([]*model.IndexRun, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.Table != "" {
		whereClauses = append(whereClauses, "table_name = "+nextArg())
		args = append(args, filter.Table)
	}

	if filter.Index != "" {
		whereClauses = append(whereClauses, "index_name = "+nextArg())
		args = append(args, filter.Index)
	}

	query := `SELECT COUNT(*) OVER() AS total_count, ` + runColumns + ` FROM diversity_runs`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		runs  []*model.IndexRun
		total int
	)
	for rows.Next() {
		r, err := scanRunWithTotal(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
