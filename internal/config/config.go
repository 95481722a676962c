// Package config defines service configuration and its loading from YAML
// and environment variables.
package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/okian/pitchtrack/internal/domain/layout"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreDriver selects memory, parquet, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`
	DataDir     string `koanf:"data_dir"`
	SQLitePath  string `koanf:"sqlite_path"`
	PostgresDSN string `koanf:"postgres_dsn"`

	// NameLine and HeaderLine are 1-based line numbers of the subject
	// metadata row and the header row.
	NameLine   int `koanf:"name_line"`
	HeaderLine int `koanf:"header_line"`

	// SniffLines bounds delimiter detection.
	SniffLines int `koanf:"sniff_lines"`

	SentinelTokens    []string `koanf:"sentinel_tokens"`
	ExcludeCategories []string `koanf:"exclude_categories"`
	BreakLimit        float64  `koanf:"break_limit"`
	MinCount          int      `koanf:"min_count"`

	// MaxUploadMB caps a POST /ingest body.
	MaxUploadMB int `koanf:"max_upload_mb"`

	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`

	// Uploader selects none, memory, drive or s3.
	Uploader             string `koanf:"uploader"`
	DriveFolderID        string `koanf:"drive_folder_id"`
	DriveCredentialsFile string `koanf:"drive_credentials_file"`
	S3Bucket             string `koanf:"s3_bucket"`
	S3Region             string `koanf:"s3_region"`
	S3Endpoint           string `koanf:"s3_endpoint"`
	S3Prefix             string `koanf:"s3_prefix"`

	// Aliases overrides the header aliases of canonical fields.
	Aliases map[string][]string `koanf:"aliases"`

	// Metrics settings of the /metrics registry.
	MetricsEnabled   bool              `koanf:"metrics_enabled"`
	MetricsNamespace string            `koanf:"metrics_namespace"`
	MetricsLabels    map[string]string `koanf:"metrics_labels"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		StoreDriver:       "parquet",
		DataDir:           "data",
		NameLine:          3,
		HeaderLine:        5,
		SniffLines:        layout.DefaultSniffLines,
		SentinelTokens:    []string{"-", "－"},
		ExcludeCategories: []string{"-", "Other"},
		BreakLimit:        70,
		MinCount:          1,
		MaxUploadMB:       32,
		ChartWidth:        1240,
		ChartHeight:       1754,
		Uploader:          "none",
		S3Region:          "us-east-1",
		MetricsEnabled:    true,
		MetricsNamespace:  "pitchtrack",
	}
}

var (
	metricName   = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	storeDrivers = []string{"memory", "parquet", "sqlite", "postgres"}
	uploaders    = []string{"", "none", "memory", "drive", "s3"}
)

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains(storeDrivers, strings.ToLower(c.StoreDriver)):
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case strings.EqualFold(c.StoreDriver, "postgres") && c.PostgresDSN == "":
		return fmt.Errorf("%w: postgres_dsn is required for the postgres store", ErrInvalidConfig)
	case c.NameLine < 1 || c.HeaderLine < 1:
		return fmt.Errorf("%w: name_line and header_line are 1-based", ErrInvalidConfig)
	case c.SniffLines < 1:
		return fmt.Errorf("%w: sniff_lines must be positive", ErrInvalidConfig)
	case c.MinCount < 0:
		return fmt.Errorf("%w: min_count must not be negative", ErrInvalidConfig)
	case c.MaxUploadMB < 1:
		return fmt.Errorf("%w: max_upload_mb must be positive", ErrInvalidConfig)
	case c.ChartWidth < 100 || c.ChartHeight < 100:
		return fmt.Errorf("%w: chart size too small", ErrInvalidConfig)
	case !slices.Contains(uploaders, strings.ToLower(c.Uploader)):
		return fmt.Errorf("%w: unknown uploader %q", ErrInvalidConfig, c.Uploader)
	case strings.EqualFold(c.Uploader, "drive") && c.DriveCredentialsFile == "":
		return fmt.Errorf("%w: drive_credentials_file is required for drive uploads", ErrInvalidConfig)
	case strings.EqualFold(c.Uploader, "s3") && c.S3Bucket == "":
		return fmt.Errorf("%w: s3_bucket is required for s3 uploads", ErrInvalidConfig)
	case !metricName.MatchString(c.MetricsNamespace):
		return fmt.Errorf("%w: invalid metrics_namespace %q", ErrInvalidConfig, c.MetricsNamespace)
	}
	for name := range c.MetricsLabels {
		if !metricName.MatchString(name) {
			return fmt.Errorf("%w: invalid metrics label %q", ErrInvalidConfig, name)
		}
	}
	return nil
}
