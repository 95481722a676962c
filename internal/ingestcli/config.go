package ingestcli

import (
	"errors"
	"time"
)

// Errors returned by Run.
var (
	ErrNoFiles     = errors.New("no input files")
	ErrFilesFailed = errors.New("one or more files failed")
	ErrStatus      = errors.New("unexpected response status")
)

// Config holds configuration for one ingest run.
type Config struct {
	BaseURL    string        // remote server; empty ingests in-process
	ConfigFile string        // YAML file for the in-process service
	Publish    bool          // publish every ingested subject
	Workers    int           // concurrent file readers
	Timeout    time.Duration // HTTP request timeout
	LogFile    string        // optional log file
	Verbose    bool          // debug logging
}

// Stats holds run statistics.
type Stats struct {
	Files     int
	Failed    int
	RowsAdded int
	Published int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
