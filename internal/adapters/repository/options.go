package repository

import (
	"path/filepath"

	"github.com/okian/pitchtrack/pkg/logger"
)

type options struct {
	dataDir     string
	sqlitePath  string
	postgresDSN string
	logger      logger.Logger
}

func newOptions(opts ...Option) options {
	o := options{dataDir: "data"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sqlitePath == "" {
		o.sqlitePath = filepath.Join(o.dataDir, "pitchtrack.db")
	}
	return o
}

// Option applies a configuration option to Open.
type Option func(*options)

// WithDataDir sets the directory of file-backed stores.
func WithDataDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.dataDir = dir
		}
	}
}

// WithSQLitePath sets the SQLite database file.
func WithSQLitePath(path string) Option {
	return func(o *options) { o.sqlitePath = path }
}

// WithPostgresDSN sets the Postgres connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *options) { o.postgresDSN = dsn }
}

// WithLogger sets the logger used by the instrumented store.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}
