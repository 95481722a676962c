// Package upload sends rendered artifacts to remote storage.
package upload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/pitchtrack/pkg/logger"
	"github.com/okian/pitchtrack/pkg/metrics"
)

// Sink names accepted by Open.
const (
	SinkNone   = "none"
	SinkMemory = "memory"
	SinkDrive  = "drive"
	SinkS3     = "s3"
)

// Uploader stores one named artifact.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, data []byte) error
	Name() string
}

// Open builds the uploader named by sink. An empty name means none.
func Open(ctx context.Context, sink string, opts ...Option) (Uploader, error) {
	s := newSettings(opts...)
	var (
		u   Uploader
		err error
	)
	switch sink {
	case "", SinkNone:
		return Nop{}, nil
	case SinkMemory:
		u = NewMemory()
	case SinkDrive:
		u, err = NewDrive(ctx, s)
	case SinkS3:
		u, err = NewS3(ctx, s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, sink)
	}
	if err != nil {
		return nil, err
	}
	return &instrumented{next: u, log: s.log}, nil
}

// Nop rejects every upload with ErrDisabled.
type Nop struct{}

func (Nop) Upload(context.Context, string, string, []byte) error { return ErrDisabled }

func (Nop) Name() string { return SinkNone }

// Object is an artifact kept by Memory.
type Object struct {
	Name        string
	ContentType string
	Data        []byte
}

// Memory keeps uploads in process; used in tests and dry runs.
type Memory struct {
	mu      sync.Mutex
	objects []Object
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Upload(ctx context.Context, name, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = append(m.objects, Object{Name: name, ContentType: contentType, Data: append([]byte(nil), data...)})
	return nil
}

func (m *Memory) Name() string { return SinkMemory }

// Objects returns the uploads in arrival order.
func (m *Memory) Objects() []Object {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Object(nil), m.objects...)
}

type instrumented struct {
	next Uploader
	log  logger.Logger
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Upload(ctx context.Context, name, contentType string, data []byte) error {
	start := time.Now()
	err := i.next.Upload(ctx, name, contentType, data)
	if err != nil {
		metrics.RecordUpload(i.next.Name(), "error")
		i.log.Error(ctx, "upload failed",
			logger.String("sink", i.next.Name()),
			logger.String("name", name),
			logger.Error(err))
		return err
	}
	metrics.RecordUpload(i.next.Name(), "ok")
	i.log.Info(ctx, "uploaded artifact",
		logger.String("sink", i.next.Name()),
		logger.String("name", name),
		logger.Int("bytes", len(data)),
		logger.Duration("took", time.Since(start)))
	return nil
}
