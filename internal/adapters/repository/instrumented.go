package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/pkg/logger"
	"github.com/okian/pitchtrack/pkg/metrics"
)

// instrumented records latency and failures of every store call.
type instrumented struct {
	driver string
	next   Store
	log    logger.Logger
}

func newInstrumented(driver string, next Store, log logger.Logger) Store {
	return &instrumented{driver: driver, next: next, log: log}
}

func (s *instrumented) observe(ctx context.Context, op string, start time.Time, err error) {
	metrics.RecordStoreLatency(s.driver, op, time.Since(start).Seconds())
	if err == nil || errors.Is(err, ErrNotFound) {
		return
	}
	metrics.RecordStoreError(s.driver, op)
	if s.log != nil {
		s.log.Error(ctx, "store operation failed",
			logger.String("driver", s.driver),
			logger.String("op", op),
			logger.Error(err))
	}
}

func (s *instrumented) Load(ctx context.Context, key string) (model.Batch, error) {
	start := time.Now()
	b, err := s.next.Load(ctx, key)
	s.observe(ctx, "load", start, err)
	return b, err
}

func (s *instrumented) Replace(ctx context.Context, key string, b model.Batch) error {
	start := time.Now()
	err := s.next.Replace(ctx, key, b)
	s.observe(ctx, "replace", start, err)
	return err
}

func (s *instrumented) Keys(ctx context.Context) ([]string, error) {
	start := time.Now()
	keys, err := s.next.Keys(ctx)
	s.observe(ctx, "keys", start, err)
	if err == nil {
		metrics.UpdateSubjects(len(keys))
	}
	return keys, err
}

func (s *instrumented) Close() error { return s.next.Close() }
