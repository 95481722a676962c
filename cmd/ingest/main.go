package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/pitchtrack/internal/ingestcli"
)

// Default configuration constants.
const (
	defaultWorkers = 4
	defaultTimeout = time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, executes one ingest run and returns the exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		baseURL    = fs.String("url", "", "Upload to a running server instead of ingesting in-process")
		configFile = fs.String("config", "", "YAML configuration for the in-process service")
		publish    = fs.Bool("publish", false, "Publish every ingested subject")
		workers    = fs.Int("workers", defaultWorkers, "Number of concurrent file readers")
		timeout    = fs.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile    = fs.String("log", "", "Also write logs to this file")
		verbose    = fs.Bool("verbose", false, "Enable debug logging")
		help       = fs.Bool("help", false, "Show help")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		ingestcli.ShowHelp(stdout)
		return 0
	}
	if fs.NArg() == 0 {
		ingestcli.ShowHelp(stderr)
		return 2
	}

	closer, err := ingestcli.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = io.WriteString(stderr, "failed to setup logging: "+err.Error()+"\n")
		return 1
	}
	defer closer.Close()

	cfg := &ingestcli.Config{
		BaseURL:    *baseURL,
		ConfigFile: *configFile,
		Publish:    *publish,
		Workers:    *workers,
		Timeout:    *timeout,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}
	if _, err := ingestcli.Run(ctx, cfg, fs.Args(), stdout); err != nil {
		if !errors.Is(err, ingestcli.ErrFilesFailed) {
			_, _ = io.WriteString(stderr, "ingest failed: "+err.Error()+"\n")
		}
		return 1
	}
	return 0
}
