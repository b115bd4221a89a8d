package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/expensetracker/internal/dbx"
	"github.com/dmitrijs2005/expensetracker/internal/filex"
	"github.com/dmitrijs2005/expensetracker/internal/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLStore keeps preferences in a single key/value table.
type SQLStore struct {
	db      dbx.DBTX
	dialect dbx.Dialect
	closer  func() error
}

func NewSQLStore(db dbx.DBTX, dialect dbx.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, closer: func() error { return nil }}
}

// runMigrations is a seam for tests that cannot execute real DDL.
var runMigrations = func(ctx context.Context, d dbx.Dialect, db *sql.DB) error {
	fsys, err := migrations.For(string(d))
	if err != nil {
		return err
	}

	gd := goose.DialectSQLite3
	if d == dbx.DialectPostgres {
		gd = goose.DialectPostgres
	}

	p, err := goose.NewProvider(gd, db, fsys)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

// OpenSQL connects to dsn, brings the schema up to date and returns a store
// that owns the connection.
func OpenSQL(ctx context.Context, d dbx.Dialect, dsn string) (*SQLStore, error) {
	if d == dbx.DialectSQLite {
		if err := filex.EnsureParentDir(dsn); err != nil {
			return nil, fmt.Errorf("open %s: %w", d, err)
		}
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d, err)
	}
	if d == dbx.DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := runMigrations(ctx, d, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", d, err)
	}

	s := NewSQLStore(db, d)
	s.closer = db.Close
	return s, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(`SELECT value FROM preferences WHERE key = ?`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preference[%s]: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if s.dialect == dbx.DialectPostgres {
		query += `, updated_at = now()`
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), key, value); err != nil {
		return fmt.Errorf("failed to set preference[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM preferences WHERE key = ?`), key); err != nil {
		return fmt.Errorf("failed to delete preference[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.closer()
}
