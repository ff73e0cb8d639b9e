package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gridstat/diversity/internal/model"
	"github.com/gridstat/diversity/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version   string    `json:"version"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Table     string    `json:"table"`
	KeyField  string    `json:"key_field"`
	Fields    []string  `json:"fields"`
	RowCount  int64     `json:"row_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// row is the payload of one dataset row record.
type row struct {
	Key    int64              `json:"key"`
	Values map[string]float64 `json:"values"`
}

// ExportJSONL writes the selected fields of a dataset table as JSONL
// to w: one header record followed by one row record per dataset row,
// ordered by key. When fields is empty, every numeric column except
// the key is exported.
func ExportJSONL(ctx context.Context, s store.Store, table string, fields []string, w io.Writer) error {
	keyField, err := s.PrimaryKey(ctx, table)
	if err != nil {
		return fmt.Errorf("primary key of %s: %w", table, err)
	}

	if len(fields) == 0 {
		schema, err := s.ListFields(ctx, table)
		if err != nil {
			return fmt.Errorf("list fields of %s: %w", table, err)
		}
		fields = exportableFields(schema, keyField)
	}
	if len(fields) == 0 {
		return fmt.Errorf("table %s has no exportable fields", table)
	}

	count, err := s.CountRows(ctx, table)
	if err != nil {
		return fmt.Errorf("count rows of %s: %w", table, err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:   "1",
		Type:      "header",
		Timestamp: time.Now().UTC(),
		Table:     table,
		KeyField:  keyField,
		Fields:    fields,
		RowCount:  count,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	err = s.ScanRows(ctx, table, keyField, fields, func(key int64, counts []float64, scanErr error) error {
		if scanErr != nil {
			return fmt.Errorf("scan row %d: %w", key, scanErr)
		}
		values := make(map[string]float64, len(fields))
		for i, f := range fields {
			values[f] = counts[i]
		}
		return enc.Encode(record{Type: "row", Data: row{Key: key, Values: values}})
	})
	if err != nil {
		return fmt.Errorf("export %s: %w", table, err)
	}
	return nil
}

// exportableFields returns the default selection for a table: every
// numeric column except the key.
func exportableFields(schema model.Schema, keyField string) []string {
	var fields []string
	for _, f := range schema {
		if f.Name == keyField || !f.Type.IsNumeric() {
			continue
		}
		fields = append(fields, f.Name)
	}
	return fields
}
