// Package service wires the ingest pipeline, the subject store, the
// aggregator, the renderer and the uploader behind the operations used by
// the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/pitchtrack/internal/adapters/render"
	"github.com/okian/pitchtrack/internal/adapters/repository"
	"github.com/okian/pitchtrack/internal/adapters/upload"
	"github.com/okian/pitchtrack/internal/domain/accumulate"
	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/ingest"
	"github.com/okian/pitchtrack/pkg/logger"
	"github.com/okian/pitchtrack/pkg/metrics"
)

// Sentinel errors of the service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrNoFiles      = errors.New("no files to ingest")
	ErrUnknownChart = errors.New("unknown chart")
	ErrPublish      = upload.ErrUpload
	ErrNotFound     = repository.ErrNotFound
)

// Service implements the API dependencies of the pitch tracking system.
type Service struct {
	// mu is held for reading by every operation and for writing by Start
	// and Stop, so the store is never closed under a running call.
	mu sync.RWMutex

	// ingestMu serializes writes to the store.
	ingestMu sync.Mutex

	// statsMu guards counts.
	statsMu sync.Mutex

	// Core components
	store    repository.Store
	pipeline *ingest.Pipeline
	acc      *accumulate.Accumulator
	agg      aggregate.Aggregator
	renderer *render.Renderer
	uploader upload.Uploader

	// Configuration
	storeDriver  string
	storeOpts    []repository.Option
	pipelineOpts []ingest.Option
	renderOpts   []render.Option
	uploadSink   string
	uploadOpts   []upload.Option
	filter       aggregate.Filter
	ownsStore    bool

	// State
	started bool
	counts  struct {
		batches, files, failed, rowsAdded int
	}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore uses an already opened store. The service does not close it.
func WithStore(s repository.Store) Option {
	return func(svc *Service) { svc.store = s }
}

// WithStoreDriver opens the named driver on Start.
func WithStoreDriver(driver string, opts ...repository.Option) Option {
	return func(s *Service) {
		s.storeDriver = driver
		s.storeOpts = append(s.storeOpts, opts...)
	}
}

// WithPipeline passes stage options to the ingest pipeline.
func WithPipeline(opts ...ingest.Option) Option {
	return func(s *Service) { s.pipelineOpts = append(s.pipelineOpts, opts...) }
}

// WithAggregator replaces the default calculator.
func WithAggregator(a aggregate.Aggregator) Option {
	return func(s *Service) {
		if a != nil {
			s.agg = a
		}
	}
}

// WithRender sets chart options.
func WithRender(opts ...render.Option) Option {
	return func(s *Service) { s.renderOpts = append(s.renderOpts, opts...) }
}

// WithUploader uses u for Publish.
func WithUploader(u upload.Uploader) Option {
	return func(s *Service) { s.uploader = u }
}

// WithUploadSink opens the named sink on Start.
func WithUploadSink(sink string, opts ...upload.Option) Option {
	return func(s *Service) {
		s.uploadSink = sink
		s.uploadOpts = append(s.uploadOpts, opts...)
	}
}

// WithDefaultFilter sets the filter applied when a request names none.
func WithDefaultFilter(f aggregate.Filter) Option {
	return func(s *Service) { s.filter = f }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeDriver: repository.DriverParquet,
		filter:      aggregate.DefaultFilter(),
		agg:         aggregate.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store and the uploader.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting pitchtrack service...")

	if s.store == nil {
		st, err := repository.Open(ctx, s.storeDriver, append(s.storeOpts, repository.WithLogger(s.logger))...)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store, s.ownsStore = st, true
		s.logger.Info(ctx, "using store", logger.String("driver", s.storeDriver))
	}
	if s.uploader == nil {
		u, err := upload.Open(ctx, s.uploadSink, append(s.uploadOpts, upload.WithLogger(s.logger))...)
		if err != nil {
			s.closeStore()
			return fmt.Errorf("open uploader: %w", err)
		}
		s.uploader = u
	}

	s.pipeline = ingest.New(s.pipelineOpts...)
	s.acc = accumulate.New(s.store, accumulate.WithLogger(s.logger))
	s.renderer = render.New(s.renderOpts...)

	s.started = true
	s.logger.Info(ctx, "pitchtrack service started",
		logger.String("uploader", s.uploader.Name()),
	)
	return nil
}

// Stop closes the store when the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping pitchtrack service...")
	s.closeStore()
	s.started = false
	s.logger.Info(context.Background(), "pitchtrack service stopped")
}

func (s *Service) closeStore() {
	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(context.Background(), "close store", logger.Error(err))
		}
		s.store, s.ownsStore = nil, false
	}
}

// DefaultFilter returns the filter used when a request names none.
func (s *Service) DefaultFilter() aggregate.Filter {
	f := s.filter
	f.Exclude = append([]string(nil), f.Exclude...)
	return f
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.statsMu.Lock()
	stats := map[string]interface{}{
		"started":     s.started,
		"storeDriver": s.storeDriver,
		"batches":     s.counts.batches,
		"files":       s.counts.files,
		"failedFiles": s.counts.failed,
		"rowsAdded":   s.counts.rowsAdded,
	}
	s.statsMu.Unlock()

	if s.started {
		stats["uploader"] = s.uploader.Name()
		if keys, err := s.store.Keys(context.Background()); err == nil {
			stats["subjects"] = len(keys)
		}
	}
	return stats
}

// RefreshMetrics sets the subjects gauge from the store.
func (s *Service) RefreshMetrics(ctx context.Context) error {
	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()
	return s.refreshMetrics(ctx)
}

func (s *Service) refreshMetrics(ctx context.Context) error {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}
	metrics.UpdateSubjects(len(keys))
	return nil
}

// acquire holds the read lock for the duration of one operation. It reports
// ErrNotStarted before Start and after Stop. Callers must not acquire again
// before calling release.
func (s *Service) acquire() (release func(), err error) {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return nil, ErrNotStarted
	}
	return s.mu.RUnlock, nil
}
