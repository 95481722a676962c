package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// SQLiteStore keeps every subject in one SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range createTablesSQL("REAL", "TEXT") {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create sqlite tables: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (model.Batch, error) {
	if err := validKey(key); err != nil {
		return model.Batch{}, err
	}
	var fields string
	err := s.db.QueryRowContext(ctx, `SELECT fields FROM subjects WHERE subject_key = ?`, key).Scan(&fields)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Batch{}, ErrNotFound
	}
	if err != nil {
		return model.Batch{}, fmt.Errorf("load subject %s: %w", key, err)
	}

	rows, err := s.db.QueryContext(ctx, selectObservationsSQL("?"), key)
	if err != nil {
		return model.Batch{}, fmt.Errorf("load observations %s: %w", key, err)
	}
	defer rows.Close()

	b := model.Batch{Schema: schemaOf(fields)}
	ms := model.Measures()
	for rows.Next() {
		var (
			date string
			o    model.Observation
			vals = make([]sql.NullFloat64, len(ms))
		)
		dest := []any{&date, &o.Category}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return model.Batch{}, fmt.Errorf("scan observation: %w", err)
		}
		d, err := time.Parse(model.DateLayout, date)
		if err != nil {
			return model.Batch{}, fmt.Errorf("%w: date %q: %w", ErrCorrupt, date, err)
		}
		o.Date = d
		for i, m := range ms {
			if vals[i].Valid {
				o.Set(m, model.Some(vals[i].Float64))
			}
		}
		b.Observations = append(b.Observations, o)
	}
	return b, rows.Err()
}

func (s *SQLiteStore) Replace(ctx context.Context, key string, b model.Batch) (err error) {
	if err := validKey(key); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM observations WHERE subject_key = ?`, key); err != nil {
		return fmt.Errorf("clear observations: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertObservationSQL(func(int) string { return "?" }))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, o := range b.Observations {
		if _, err = stmt.ExecContext(ctx, observationArgs(key, i, o, o.DateString())...); err != nil {
			return fmt.Errorf("insert observation %d: %w", i, err)
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO subjects (subject_key, fields) VALUES (?, ?)
		 ON CONFLICT(subject_key) DO UPDATE SET fields = excluded.fields`,
		key, fieldsOf(b.Schema)); err != nil {
		return fmt.Errorf("upsert subject: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT subject_key FROM subjects ORDER BY subject_key`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
