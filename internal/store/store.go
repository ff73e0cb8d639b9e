package store

import (
	"context"

	"github.com/gridstat/diversity/internal/model"
)

// RowFunc is called once per scanned dataset row. counts holds the
// selected field values in selection order with NULLs read as 0. When
// the row could not be converted, err is non-nil and counts is nil;
// key still identifies the row whenever its column converted cleanly.
// Returning a non-nil error aborts the scan.
type RowFunc func(key int64, counts []float64, err error) error

// Store defines the persistence interface: schema and row access to
// externally-owned dataset tables, plus the run history this tool
// keeps about its own invocations.
type Store interface {
	// Dataset schema
	ListFields(ctx context.Context, table string) (model.Schema, error)
	PrimaryKey(ctx context.Context, table string) (string, error)
	AddField(ctx context.Context, table string, field model.Field) error
	DropField(ctx context.Context, table, field string) error

	// Dataset rows
	CountRows(ctx context.Context, table string) (int64, error)
	ScanRows(ctx context.Context, table, keyField string, fields []string, fn RowFunc) error
	UpdateRow(ctx context.Context, table, keyField string, key int64, values map[string]float64) error

	// Run history
	CreateRun(ctx context.Context, run *model.IndexRun) error
	UpdateRun(ctx context.Context, run *model.IndexRun) error
	GetRun(ctx context.Context, id string) (*model.IndexRun, error)
	ListRuns(ctx context.Context, filter model.RunFilter) ([]*model.IndexRun, int, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
