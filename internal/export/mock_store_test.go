package export

import (
	"context"
	"fmt"
	"sort"

	"github.com/gridstat/diversity/internal/model"
	"github.com/gridstat/diversity/internal/store"
)

// mockStore serves a single in-memory table for export tests.
type mockStore struct {
	table    string
	keyField string
	schema   model.Schema
	rows     map[int64]map[string]float64

	scanErrKey int64 // when non-zero, this key reports a scan error
}

func newMockStore(table, keyField string, fields ...model.Field) *mockStore {
	return &mockStore{
		table:    table,
		keyField: keyField,
		schema:   append(model.Schema{{Name: keyField, Type: model.FieldTypeBigint}}, fields...),
		rows:     make(map[int64]map[string]float64),
	}
}

func (m *mockStore) check(table string) error {
	if table != m.table {
		return fmt.Errorf("table %q not found", table)
	}
	return nil
}

func (m *mockStore) ListFields(_ context.Context, table string) (model.Schema, error) {
	if err := m.check(table); err != nil {
		return nil, err
	}
	return m.schema, nil
}

func (m *mockStore) PrimaryKey(_ context.Context, table string) (string, error) {
	if err := m.check(table); err != nil {
		return "", err
	}
	return m.keyField, nil
}

func (m *mockStore) AddField(_ context.Context, table string, field model.Field) error {
	return fmt.Errorf("not supported")
}

func (m *mockStore) DropField(_ context.Context, table, field string) error {
	return fmt.Errorf("not supported")
}

func (m *mockStore) CountRows(_ context.Context, table string) (int64, error) {
	if err := m.check(table); err != nil {
		return 0, err
	}
	return int64(len(m.rows)), nil
}

func (m *mockStore) ScanRows(_ context.Context, table, keyField string, fields []string, fn store.RowFunc) error {
	if err := m.check(table); err != nil {
		return err
	}
	keys := make([]int64, 0, len(m.rows))
	for key := range m.rows {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		if key == m.scanErrKey {
			if err := fn(key, nil, fmt.Errorf("bad row")); err != nil {
				return err
			}
			continue
		}
		counts := make([]float64, len(fields))
		for i, f := range fields {
			counts[i] = m.rows[key][f]
		}
		if err := fn(key, counts, nil); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStore) UpdateRow(_ context.Context, table, keyField string, key int64, values map[string]float64) error {
	return fmt.Errorf("not supported")
}

func (m *mockStore) CreateRun(_ context.Context, run *model.IndexRun) error { return nil }
func (m *mockStore) UpdateRun(_ context.Context, run *model.IndexRun) error { return nil }

func (m *mockStore) GetRun(_ context.Context, id string) (*model.IndexRun, error) {
	return nil, fmt.Errorf("run %q not found", id)
}

func (m *mockStore) ListRuns(_ context.Context, _ model.RunFilter) ([]*model.IndexRun, int, error) {
	return nil, 0, nil
}

func (m *mockStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
