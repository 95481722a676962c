// Package repository persists one batch of observations per subject key.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverParquet  = "parquet"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store provides whole-subject read and replace access.
type Store interface {
	// Load returns the stored batch for key or ErrNotFound.
	Load(ctx context.Context, key string) (model.Batch, error)

	// Replace swaps the stored batch for key all-or-nothing.
	Replace(ctx context.Context, key string, b model.Batch) error

	// Keys lists stored subject keys in ascending order.
	Keys(ctx context.Context) ([]string, error)

	Close() error
}

// Open creates the store selected by driver, instrumented with metrics.
func Open(ctx context.Context, driver string, opts ...Option) (Store, error) {
	o := newOptions(opts...)

	var (
		s   Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverMemory:
		s = NewMemoryStore()
	case "", DriverParquet:
		driver = DriverParquet
		s, err = NewParquetStore(o.dataDir)
	case DriverSQLite:
		s, err = NewSQLiteStore(ctx, o.sqlitePath)
	case DriverPostgres:
		s, err = NewPostgresStore(ctx, o.postgresDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}
	return newInstrumented(driver, s, o.logger), nil
}

// validKey rejects keys that cannot name a store unit.
func validKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func fieldsOf(s model.Schema) string { return strings.Join(s.Names(), ",") }

func schemaOf(fields string) model.Schema {
	var s model.Schema
	for _, f := range strings.Split(fields, ",") {
		if m, ok := model.ParseMeasure(strings.TrimSpace(f)); ok {
			s[m] = true
		}
	}
	return s
}
