// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/gridstat/diversity/internal/model"
	"github.com/gridstat/diversity/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
// Dataset tables are externally owned and mutated in place; only the
// diversity_runs history table belongs to this tool.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ListFields(ctx context.Context, table string) (model.Schema, error) {
	return queryListFields(ctx, s.db, table)
}

func (s *PostgresStore) PrimaryKey(ctx context.Context, table string) (string, error) {
	return queryPrimaryKey(ctx, s.db, table)
}

func (s *PostgresStore) AddField(ctx context.Context, table string, field model.Field) error {
	return execAddField(ctx, s.db, table, field)
}

func (s *PostgresStore) DropField(ctx context.Context, table, field string) error {
	return execDropField(ctx, s.db, table, field)
}

func (s *PostgresStore) CountRows(ctx context.Context, table string) (int64, error) {
	return queryCountRows(ctx, s.db, table)
}

func (s *PostgresStore) ScanRows(ctx context.Context, table, keyField string, fields []string, fn store.RowFunc) error {
	return queryScanRows(ctx, s.db, table, keyField, fields, fn)
}

func (s *PostgresStore) UpdateRow(ctx context.Context, table, keyField string, key int64, values map[string]float64) error {
	return execUpdateRow(ctx, s.db, table, keyField, key, values)
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *model.IndexRun) error {
	return queryCreateRun(ctx, s.db, run)
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *model.IndexRun) error {
	return queryUpdateRun(ctx, s.db, run)
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*model.IndexRun, error) {
	return queryGetRun(ctx, s.db, id)
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter model.RunFilter) ([]*model.IndexRun, int, error) {
	return queryListRuns(ctx, s.db, filter)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) ListFields(ctx context.Context, table string) (model.Schema, error) {
	return queryListFields(ctx, s.tx, table)
}

func (s *txStore) PrimaryKey(ctx context.Context, table string) (string, error) {
	return queryPrimaryKey(ctx, s.tx, table)
}

func (s *txStore) AddField(ctx context.Context, table string, field model.Field) error {
	return execAddField(ctx, s.tx, table, field)
}

func (s *txStore) DropField(ctx context.Context, table, field string) error {
	return execDropField(ctx, s.tx, table, field)
}

func (s *txStore) CountRows(ctx context.Context, table string) (int64, error) {
	return queryCountRows(ctx, s.tx, table)
}

func (s *txStore) ScanRows(ctx context.Context, table, keyField string, fields []string, fn store.RowFunc) error {
	return queryScanRows(ctx, s.tx, table, keyField, fields, fn)
}

func (s *txStore) UpdateRow(ctx context.Context, table, keyField string, key int64, values map[string]float64) error {
	return execUpdateRow(ctx, s.tx, table, keyField, key, values)
}

func (s *txStore) CreateRun(ctx context.Context, run *model.IndexRun) error {
	return queryCreateRun(ctx, s.tx, run)
}

func (s *txStore) UpdateRun(ctx context.Context, run *model.IndexRun) error {
	return queryUpdateRun(ctx, s.tx, run)
}

func (s *txStore) GetRun(ctx context.Context, id string) (*model.IndexRun, error) {
	return queryGetRun(ctx, s.tx, id)
}

func (s *txStore) ListRuns(ctx context.Context, filter model.RunFilter) ([]*model.IndexRun, int, error) {
	return queryListRuns(ctx, s.tx, filter)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
