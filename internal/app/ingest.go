package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/internal/domain/types"
	"github.com/okian/pitchtrack/pkg/logger"
	"github.com/okian/pitchtrack/pkg/metrics"
)

// Ingest parses every file and appends it to its subject. Failures are
// scoped to one file; the remaining files are still processed.
func (s *Service) Ingest(ctx context.Context, files []model.RawFile) (types.IngestResult, error) {
	release, err := s.acquire()
	if err != nil {
		return types.IngestResult{}, err
	}
	defer release()
	if len(files) == 0 {
		return types.IngestResult{}, ErrNoFiles
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	res := types.IngestResult{BatchID: uuid.NewString(), Files: make([]types.FileResult, 0, len(files))}
	log := s.logger.Named("ingest")
	log.Info(ctx, "ingest batch started",
		logger.String("batch", res.BatchID),
		logger.Int("files", len(files)))

	added := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			res.Files = append(res.Files, types.FileResult{File: f.Name, Error: err.Error()})
			res.Failed++
			continue
		}
		fr := s.ingestFile(ctx, res.BatchID, f)
		if !fr.OK() {
			res.Failed++
		}
		added += fr.RowsAdded
		res.Files = append(res.Files, fr)
	}

	if err := s.refreshMetrics(ctx); err != nil {
		log.Warn(ctx, "refresh metrics failed", logger.Error(err))
	}

	s.statsMu.Lock()
	s.counts.batches++
	s.counts.files += len(files)
	s.counts.failed += res.Failed
	s.counts.rowsAdded += added
	s.statsMu.Unlock()

	log.Info(ctx, "ingest batch finished",
		logger.String("batch", res.BatchID),
		logger.Int("failed", res.Failed),
		logger.Int("rowsAdded", added))
	return res, nil
}

func (s *Service) ingestFile(ctx context.Context, batchID string, f model.RawFile) types.FileResult {
	start := time.Now()
	defer func() { metrics.RecordIngestLatency(time.Since(start).Seconds()) }()

	out := types.FileResult{File: f.Name}
	parsed, err := s.pipeline.Parse(f)
	out.Encoding = parsed.Encoding
	out.Lossy = parsed.Lossy
	if parsed.Encoding != "" {
		metrics.RecordEncoding(parsed.Encoding)
	}
	if err != nil {
		return s.fail(ctx, batchID, out, err)
	}

	out.Subject = parsed.Subject.Name
	out.Key = parsed.Key()
	out.RowsParsed = parsed.Batch.Len()
	out.Ignored = parsed.Ignored
	metrics.RecordRowsParsed(out.RowsParsed)
	metrics.RecordRowsDropped("date", parsed.Stats.DroppedDate)
	if parsed.Lossy {
		s.logger.Warn(ctx, "file decoded with replacement characters",
			logger.String("batch", batchID),
			logger.String("file", f.Name),
			logger.String("encoding", parsed.Encoding))
	}

	acc, err := s.acc.Append(ctx, out.Key, parsed.Batch)
	if err != nil {
		return s.fail(ctx, batchID, out, fmt.Errorf("%s: %w", f.Name, err))
	}
	out.RowsAdded = acc.Added
	out.Duplicates = acc.Duplicates
	out.TotalRows = acc.Batch.Len()
	metrics.RecordRowsAdded(acc.Added)
	metrics.RecordRowsDropped("duplicate", acc.Duplicates)
	metrics.RecordFile("ok")

	s.logger.Info(ctx, "file ingested",
		logger.String("batch", batchID),
		logger.String("file", f.Name),
		logger.String("subject", out.Key),
		logger.Int("parsed", out.RowsParsed),
		logger.Int("added", out.RowsAdded),
		logger.Int("duplicates", out.Duplicates),
		logger.Int("droppedDate", parsed.Stats.DroppedDate))
	return out
}

func (s *Service) fail(ctx context.Context, batchID string, out types.FileResult, err error) types.FileResult {
	metrics.RecordFile("failed")
	s.logger.Warn(ctx, "file rejected",
		logger.String("batch", batchID),
		logger.String("file", out.File),
		logger.Error(err))
	out.Error = err.Error()
	return out
}
