package ingestcli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/pitchtrack/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the logger on stderr, teeing to logFile when set.
// The returned closer releases the log file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, file)
		closer = file
	}
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)
	if logFile != "" {
		logger.Get().Debug(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return closer, nil
}

// ShowHelp prints usage information for the ingest tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `pitchtrack ingest
=================

Ingests pitch tracking CSV exports and prints one result line per file.
The exit status is 1 when any file failed.

Usage:
  ingest [options] file.csv [file.csv ...]

Options:
  -url string
        Upload to a running server instead of ingesting in-process
  -config string
        YAML configuration for the in-process service (default $PITCHTRACK_CONFIG)
  -publish
        Render and upload the charts and workbook of every ingested subject
  -workers int
        Number of concurrent file readers (default 4)
  -timeout duration
        HTTP request timeout (default 1m)
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Ingest into the local parquet store
  ingest exports/*.csv

  # Upload to a server and publish the results
  ingest -url http://localhost:9080 -publish exports/*.csv
`)
}
