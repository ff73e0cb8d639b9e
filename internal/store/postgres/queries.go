package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/gridstat/diversity/internal/model"
	"github.com/gridstat/diversity/internal/store"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// quoteIdent quotes a table or column name for direct interpolation
// into SQL text. DDL statements and dynamic column lists cannot use
// placeholders, so identifiers are double-quoted with embedded quotes
// doubled.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func queryListFields(ctx context.Context, db executor, table string) (model.Schema, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("list fields of %q: %w", table, err)
	}
	defer rows.Close()

	var schema model.Schema
	for rows.Next() {
		var f model.Field
		if err := rows.Scan(&f.Name, &f.Type); err != nil {
			return nil, fmt.Errorf("scan field of %q: %w", table, err)
		}
		schema = append(schema, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fields of %q: %w", table, err)
	}
	if len(schema) == 0 {
		return nil, fmt.Errorf("table %q not found", table)
	}
	return schema, nil
}

func queryPrimaryKey(ctx context.Context, db executor, table string) (string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT a.attname
		FROM pg_index i
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		WHERE i.indrelid = $1::regclass AND i.indisprimary
		ORDER BY a.attnum`, table)
	if err != nil {
		return "", fmt.Errorf("primary key of %q: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return "", fmt.Errorf("scan primary key of %q: %w", table, err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("primary key of %q: %w", table, err)
	}

	switch len(cols) {
	case 0:
		return "", fmt.Errorf("table %q has no primary key", table)
	case 1:
		return cols[0], nil
	default:
		return "", fmt.Errorf("table %q has a composite primary key (%s); a single-column key is required",
			table, strings.Join(cols, ", "))
	}
}

func execAddField(ctx context.Context, db executor, table string, field model.Field) error {
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		quoteIdent(table), quoteIdent(field.Name), field.Type)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return &model.SchemaMutationError{Table: table, Field: field.Name, Err: err}
	}
	return nil
}

func execDropField(ctx context.Context, db executor, table, field string) error {
	stmt := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s",
		quoteIdent(table), quoteIdent(field))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return &model.SchemaMutationError{Table: table, Field: field, Err: err}
	}
	return nil
}

func queryCountRows(ctx context.Context, db executor, table string) (int64, error) {
	var count int64
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))
	if err := db.QueryRowContext(ctx, stmt).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows of %q: %w", table, err)
	}
	return count, nil
}

// queryScanRows streams every row of the table, reading the key column
// plus the selected fields. NULL counts are read as 0. Rows that fail
// to convert are handed to fn with a non-nil error instead of aborting
// the scan, so callers can account for them and keep going.
func queryScanRows(ctx context.Context, db executor, table, keyField string, fields []string, fn store.RowFunc) error {
	cols := make([]string, 0, len(fields)+1)
	cols = append(cols, quoteIdent(keyField))
	for _, f := range fields {
		cols = append(cols, quoteIdent(f))
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(cols, ", "), quoteIdent(table), quoteIdent(keyField))
	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("scan rows of %q: %w", table, err)
	}
	defer rows.Close()

	dests := make([]any, len(fields)+1)
	for rows.Next() {
		var key int64
		vals := make([]sql.NullFloat64, len(fields))
		dests[0] = &key
		for i := range vals {
			dests[i+1] = &vals[i]
		}

		if err := rows.Scan(dests...); err != nil {
			// The key column converts first, so key is usable for
			// reporting even when a later column failed.
			if ferr := fn(key, nil, err); ferr != nil {
				return ferr
			}
			continue
		}

		counts := make([]float64, len(vals))
		for i, v := range vals {
			if v.Valid {
				counts[i] = v.Float64
			}
		}
		if err := fn(key, counts, nil); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("scan rows of %q: %w", table, err)
	}
	return nil
}

func execUpdateRow(ctx context.Context, db executor, table, keyField string, key int64, values map[string]float64) error {
	if len(values) == 0 {
		return nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		sets[i] = fmt.Sprintf("%s = $%d", quoteIdent(name), i+1)
		args = append(args, values[name])
	}
	args = append(args, key)

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		quoteIdent(table), strings.Join(sets, ", "), quoteIdent(keyField), len(names)+1)
	res, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("row %d not found in %q", key, table)
	}
	return nil
}
