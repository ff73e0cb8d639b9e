package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/gridstat/diversity/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanRun scans a single row into a model.IndexRun.
// The row must contain columns in the order defined by runColumns.
func scanRun(row scannable) (*model.IndexRun, error) {
	var (
		r            model.IndexRun
		indexName    sql.NullString
		inputFields  pq.StringArray
		enrichFields pq.StringArray
		failedKeys   pq.Int64Array
		errMsg       sql.NullString
		createdBy    sql.NullString
		finishedAt   sql.NullTime
	)

	err := row.Scan(
		&r.ID,
		&r.Table,
		&indexName,
		&r.OutputField,
		&inputFields,
		&enrichFields,
		&r.Status,
		&r.RowsUpdated,
		&failedKeys,
		&errMsg,
		&r.CreatedAt,
		&createdBy,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	r.IndexName = indexName.String
	r.InputFields = inputFields
	r.EnrichFields = enrichFields
	r.FailedKeys = failedKeys
	r.Error = errMsg.String
	r.CreatedBy = createdBy.String
	if finishedAt.Valid {
		t := finishedAt.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

// scanRunWithTotal scans a run row prefixed with a total_count column,
// as produced by queryListRuns.
func scanRunWithTotal(rows *sql.Rows, total *int) (*model.IndexRun, error) {
	var (
		r            model.IndexRun
		indexName    sql.NullString
		inputFields  pq.StringArray
		enrichFields pq.StringArray
		failedKeys   pq.Int64Array
		errMsg       sql.NullString
		createdBy    sql.NullString
		finishedAt   sql.NullTime
	)

	err := rows.Scan(
		total,
		&r.ID,
		&r.Table,
		&indexName,
		&r.OutputField,
		&inputFields,
		&enrichFields,
		&r.Status,
		&r.RowsUpdated,
		&failedKeys,
		&errMsg,
		&r.CreatedAt,
		&createdBy,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	r.IndexName = indexName.String
	r.InputFields = inputFields
	r.EnrichFields = enrichFields
	r.FailedKeys = failedKeys
	r.Error = errMsg.String
	r.CreatedBy = createdBy.String
	if finishedAt.Valid {
		t := finishedAt.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

// nullTimePtr converts a *time.Time to sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
