package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/okian/pitchtrack/internal/adapters/render"
	"github.com/okian/pitchtrack/internal/adapters/repository"
	"github.com/okian/pitchtrack/internal/adapters/upload"
	"github.com/okian/pitchtrack/internal/config"
	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/columns"
	"github.com/okian/pitchtrack/internal/domain/ingest"
	"github.com/okian/pitchtrack/internal/domain/layout"
	"github.com/okian/pitchtrack/internal/domain/normalize"
)

// FromConfig translates a loaded configuration into service options.
// The drive credentials file is read here so that Start never touches
// the filesystem for it.
func FromConfig(cfg *config.Config) ([]Option, error) {
	if cfg == nil {
		cfg = config.New()
	}

	opts := []Option{
		WithStoreDriver(strings.ToLower(cfg.StoreDriver),
			repository.WithDataDir(cfg.DataDir),
			repository.WithSQLitePath(cfg.SQLitePath),
			repository.WithPostgresDSN(cfg.PostgresDSN),
		),
		WithPipeline(
			ingest.WithLayout(
				layout.WithNameLine(cfg.NameLine),
				layout.WithHeaderLine(cfg.HeaderLine),
				layout.WithSniffLines(cfg.SniffLines),
			),
			ingest.WithColumns(columns.WithOverrides(cfg.Aliases)),
			ingest.WithNormalize(normalize.WithSentinels(cfg.SentinelTokens...)),
		),
		WithDefaultFilter(aggregate.Filter{
			Exclude:    append([]string(nil), cfg.ExcludeCategories...),
			BreakLimit: cfg.BreakLimit,
			MinCount:   cfg.MinCount,
		}),
		WithRender(render.WithSize(cfg.ChartWidth, cfg.ChartHeight)),
	}

	uploadOpts := []upload.Option{
		upload.WithDriveFolder(cfg.DriveFolderID),
		upload.WithS3Bucket(cfg.S3Bucket),
		upload.WithS3Region(cfg.S3Region),
		upload.WithS3Endpoint(cfg.S3Endpoint),
		upload.WithS3Prefix(cfg.S3Prefix),
	}
	sink := strings.ToLower(cfg.Uploader)
	if sink == upload.SinkDrive {
		creds, err := os.ReadFile(cfg.DriveCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read drive credentials: %w", err)
		}
		uploadOpts = append(uploadOpts, upload.WithDriveCredentials(creds))
	}
	opts = append(opts, WithUploadSink(sink, uploadOpts...))

	return opts, nil
}
