package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// Postgres pool settings.
const (
	pgMaxConns        = 10
	pgMinConns        = 1
	pgMaxConnLifetime = time.Hour
	pgMaxConnIdleTime = 30 * time.Minute
)

// PostgresStore keeps every subject in shared Postgres tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and creates the tables.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: empty dsn")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	cfg.MaxConns = pgMaxConns
	cfg.MinConns = pgMinConns
	cfg.MaxConnLifetime = pgMaxConnLifetime
	cfg.MaxConnIdleTime = pgMaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	for _, stmt := range createTablesSQL("DOUBLE PRECISION", "DATE") {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create postgres tables: %w", err)
		}
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) (model.Batch, error) {
	if err := validKey(key); err != nil {
		return model.Batch{}, err
	}
	var fields string
	err := s.pool.QueryRow(ctx, `SELECT fields FROM subjects WHERE subject_key = $1`, key).Scan(&fields)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Batch{}, ErrNotFound
	}
	if err != nil {
		return model.Batch{}, fmt.Errorf("load subject %s: %w", key, err)
	}

	rows, err := s.pool.Query(ctx, selectObservationsSQL("$1"), key)
	if err != nil {
		return model.Batch{}, fmt.Errorf("load observations %s: %w", key, err)
	}
	defer rows.Close()

	b := model.Batch{Schema: schemaOf(fields)}
	ms := model.Measures()
	for rows.Next() {
		var o model.Observation
		vals := make([]*float64, len(ms))
		dest := []any{&o.Date, &o.Category}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return model.Batch{}, fmt.Errorf("scan observation: %w", err)
		}
		o.Date = model.Date(o.Date)
		for i, m := range ms {
			o.Set(m, model.FromPtr(vals[i]))
		}
		b.Observations = append(b.Observations, o)
	}
	return b, rows.Err()
}

func (s *PostgresStore) Replace(ctx context.Context, key string, b model.Batch) error {
	if err := validKey(key); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM observations WHERE subject_key = $1`, key); err != nil {
		return fmt.Errorf("clear observations: %w", err)
	}
	cols := append([]string{"subject_key", "seq", "date", "category"}, measureColumns()...)
	_, err = tx.CopyFrom(ctx, pgx.Identifier{"observations"}, cols,
		pgx.CopyFromSlice(len(b.Observations), func(i int) ([]any, error) {
			o := b.Observations[i]
			return observationArgs(key, i, o, o.Date), nil
		}))
	if err != nil {
		return fmt.Errorf("copy observations: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO subjects (subject_key, fields) VALUES ($1, $2)
		 ON CONFLICT (subject_key) DO UPDATE SET fields = EXCLUDED.fields`,
		key, fieldsOf(b.Schema)); err != nil {
		return fmt.Errorf("upsert subject: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT subject_key FROM subjects ORDER BY subject_key`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
