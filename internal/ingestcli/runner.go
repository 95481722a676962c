// Package ingestcli implements the ingest command: it reads CSV exports,
// ingests them in-process or on a remote server, and optionally publishes
// the resulting artifacts.
package ingestcli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	service "github.com/okian/pitchtrack/internal/app"
	"github.com/okian/pitchtrack/internal/config"
	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/internal/domain/types"
	"github.com/okian/pitchtrack/pkg/logger"
)

// Backend ingests and publishes subjects.
type Backend interface {
	Ingest(ctx context.Context, files []model.RawFile) (types.IngestResult, error)
	Publish(ctx context.Context, key string) (types.PublishResult, error)
}

// localBackend runs the service in-process.
type localBackend struct {
	svc *service.Service
}

func (b localBackend) Ingest(ctx context.Context, files []model.RawFile) (types.IngestResult, error) {
	return b.svc.Ingest(ctx, files)
}

func (b localBackend) Publish(ctx context.Context, key string) (types.PublishResult, error) {
	return b.svc.Publish(ctx, key, b.svc.DefaultFilter())
}

// Run executes one ingest run and writes one line per file to out.
func Run(ctx context.Context, cfg *Config, paths []string, out io.Writer) (*Stats, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}
	backend, closeFn, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return RunWith(ctx, backend, cfg, paths, out)
}

// RunWith executes one ingest run against backend.
func RunWith(ctx context.Context, backend Backend, cfg *Config, paths []string, out io.Writer) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting ingest",
		logger.Int("files", len(paths)),
		logger.String("baseURL", cfg.BaseURL),
		logger.Bool("publish", cfg.Publish))

	files, unreadable, err := readFiles(ctx, paths, cfg.Workers)
	if err != nil {
		return nil, err
	}

	var res types.IngestResult
	if len(files) > 0 {
		res, err = backend.Ingest(ctx, files)
		if err != nil {
			return nil, fmt.Errorf("ingest failed: %w", err)
		}
	}
	res.Files = mergeResults(len(paths), unreadable, res.Files)

	published := map[string]bool{}
	for _, fr := range res.Files {
		stats.Files++
		stats.RowsAdded += fr.RowsAdded
		if !fr.OK() {
			stats.Failed++
		}
		fmt.Fprintln(out, fr.String())
	}

	if cfg.Publish {
		for _, fr := range res.Files {
			if !fr.OK() || published[fr.Key] {
				continue
			}
			published[fr.Key] = true
			pr, err := backend.Publish(ctx, fr.Key)
			if err != nil {
				return stats, fmt.Errorf("publish %s: %w", fr.Key, err)
			}
			stats.Published++
			fmt.Fprintf(out, "PUB  %s: session=%s sink=%s uploaded=%d failed=%d\n", fr.Key, pr.Session, pr.Sink, pr.Uploaded, pr.Failed)
			for _, f := range pr.Failures {
				fmt.Fprintf(out, "     %s: %s\n", f.Name, f.Error)
			}
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrFilesFailed, stats.Failed, stats.Files)
	}
	return stats, nil
}

func openBackend(ctx context.Context, cfg *Config) (Backend, func(), error) {
	if cfg.BaseURL != "" {
		c := NewHTTPClient(cfg.BaseURL, cfg.Timeout)
		if err := c.Health(ctx); err != nil {
			return nil, nil, fmt.Errorf("service health check failed: %w", err)
		}
		return c, func() {}, nil
	}

	path := cfg.ConfigFile
	if path == "" {
		path = os.Getenv(config.EnvFile)
	}
	appCfg, err := config.LoadFile(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	opts, err := service.FromConfig(appCfg)
	if err != nil {
		return nil, nil, err
	}
	svc := service.New(append(opts, service.WithLogger(logger.Get()))...)
	if err := svc.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start service: %w", err)
	}
	return localBackend{svc: svc}, svc.Stop, nil
}

// readFiles loads paths concurrently. Readable files come back in input
// order; unreadable ones come back as failed results keyed by input index
// instead of aborting the run.
func readFiles(ctx context.Context, paths []string, workers int) ([]model.RawFile, map[int]types.FileResult, error) {
	if workers < 1 {
		workers = 1
	}
	files := make([]model.RawFile, len(paths))
	errs := make([]error, len(paths))

	idx := make(chan int, workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				data, err := os.ReadFile(paths[i])
				if err != nil {
					errs[i] = fmt.Errorf("read %s: %w", paths[i], err)
					continue
				}
				files[i] = model.RawFile{Name: filepath.Base(paths[i]), Data: data}
			}
		}()
	}

	go func() {
		defer close(idx)
		for i := range paths {
			select {
			case <-ctx.Done():
				return
			case idx <- i:
			}
		}
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	var (
		ok     = make([]model.RawFile, 0, len(paths))
		failed = make(map[int]types.FileResult)
	)
	for i, err := range errs {
		if err != nil {
			failed[i] = types.FileResult{File: filepath.Base(paths[i]), Error: err.Error()}
			continue
		}
		ok = append(ok, files[i])
	}
	return ok, failed, nil
}

// mergeResults puts the unreadable results back at their input index
// between the backend results, which follow the order of the readable files.
func mergeResults(n int, unreadable map[int]types.FileResult, ingested []types.FileResult) []types.FileResult {
	out := make([]types.FileResult, 0, n)
	j := 0
	for i := range n {
		if fr, ok := unreadable[i]; ok {
			out = append(out, fr)
			continue
		}
		if j < len(ingested) {
			out = append(out, ingested[j])
			j++
		}
	}
	return append(out, ingested[j:]...)
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.Int("files", stats.Files),
		logger.Int("failed", stats.Failed),
		logger.Int("rowsAdded", stats.RowsAdded),
		logger.Int("published", stats.Published),
		logger.Duration("duration", stats.Duration))
}
