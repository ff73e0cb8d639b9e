package server

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/gridstat/diversity/internal/model"
	"github.com/gridstat/diversity/internal/store"
)

// mockTable is one in-memory dataset table.
type mockTable struct {
	keyField string
	schema   model.Schema
	rows     map[int64]map[string]float64
}

// mockStore backs the HTTP handler tests with in-memory tables and runs.
type mockStore struct {
	tables map[string]*mockTable
	runs   map[string]*model.IndexRun
}

func newMockStore() *mockStore {
	return &mockStore{
		tables: make(map[string]*mockTable),
		runs:   make(map[string]*model.IndexRun),
	}
}

func (m *mockStore) addTable(name, keyField string, fields ...model.Field) *mockTable {
	t := &mockTable{
		keyField: keyField,
		schema:   append(model.Schema{{Name: keyField, Type: model.FieldTypeBigint}}, fields...),
		rows:     make(map[int64]map[string]float64),
	}
	m.tables[name] = t
	return t
}

func (m *mockStore) table(name string) (*mockTable, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q not found", name)
	}
	return t, nil
}

func (m *mockStore) ListFields(_ context.Context, table string) (model.Schema, error) {
	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	schema := make(model.Schema, len(t.schema))
	copy(schema, t.schema)
	return schema, nil
}

func (m *mockStore) PrimaryKey(_ context.Context, table string) (string, error) {
	t, err := m.table(table)
	if err != nil {
		return "", err
	}
	return t.keyField, nil
}

func (m *mockStore) AddField(_ context.Context, table string, field model.Field) error {
	t, err := m.table(table)
	if err != nil {
		return err
	}
	if t.schema.Has(field.Name) {
		return &model.SchemaMutationError{Table: table, Field: field.Name, Err: fmt.Errorf("column exists")}
	}
	t.schema = append(t.schema, field)
	return nil
}

func (m *mockStore) DropField(_ context.Context, table, field string) error {
	t, err := m.table(table)
	if err != nil {
		return err
	}
	for i, f := range t.schema {
		if strings.EqualFold(f.Name, field) {
			t.schema = append(t.schema[:i], t.schema[i+1:]...)
			for _, row := range t.rows {
				delete(row, f.Name)
			}
			return nil
		}
	}
	return &model.SchemaMutationError{Table: table, Field: field, Err: fmt.Errorf("column missing")}
}

func (m *mockStore) CountRows(_ context.Context, table string) (int64, error) {
	t, err := m.table(table)
	if err != nil {
		return 0, err
	}
	return int64(len(t.rows)), nil
}

func (m *mockStore) ScanRows(_ context.Context, table, keyField string, fields []string, fn store.RowFunc) error {
	t, err := m.table(table)
	if err != nil {
		return err
	}
	keys := make([]int64, 0, len(t.rows))
	for key := range t.rows {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		counts := make([]float64, len(fields))
		for i, f := range fields {
			counts[i] = t.rows[key][f]
		}
		if err := fn(key, counts, nil); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStore) UpdateRow(_ context.Context, table, keyField string, key int64, values map[string]float64) error {
	t, err := m.table(table)
	if err != nil {
		return err
	}
	row, ok := t.rows[key]
	if !ok {
		return fmt.Errorf("row %d not found in %q", key, table)
	}
	for name, v := range values {
		row[name] = v
	}
	return nil
}

func (m *mockStore) CreateRun(_ context.Context, run *model.IndexRun) error {
	m.runs[run.ID] = run
	return nil
}

func (m *mockStore) UpdateRun(_ context.Context, run *model.IndexRun) error {
	if _, ok := m.runs[run.ID]; !ok {
		return fmt.Errorf("run %q not found", run.ID)
	}
	m.runs[run.ID] = run
	return nil
}

func (m *mockStore) GetRun(_ context.Context, id string) (*model.IndexRun, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return run, nil
}

func (m *mockStore) ListRuns(_ context.Context, filter model.RunFilter) ([]*model.IndexRun, int, error) {
	var runs []*model.IndexRun
	for _, r := range m.runs {
		if filter.Table != "" && r.Table != filter.Table {
			continue
		}
		if filter.Index != "" && r.IndexName != filter.Index {
			continue
		}
		if len(filter.Status) > 0 {
			found := false
			for _, s := range filter.Status {
				if r.Status == s {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, len(runs), nil
}

func (m *mockStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
