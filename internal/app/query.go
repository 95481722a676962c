package service

import (
	"context"
	"fmt"

	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/internal/domain/types"
)

// Subjects lists stored subjects with their row count and session date.
func (s *Service) Subjects(ctx context.Context) ([]types.SubjectInfo, error) {
	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	keys, err := s.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	out := make([]types.SubjectInfo, 0, len(keys))
	for _, k := range keys {
		b, err := s.store.Load(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", k, err)
		}
		info := types.SubjectInfo{Key: k, Rows: b.Len(), Fields: b.Schema.Names()}
		if b.Len() > 0 {
			info.Session = s.agg.SessionDate(b).Format(model.DateLayout)
		}
		out = append(out, info)
	}
	return out, nil
}

// Observations returns the filtered stored batch of key.
func (s *Service) Observations(ctx context.Context, key string, f aggregate.Filter) (model.Batch, error) {
	release, err := s.acquire()
	if err != nil {
		return model.Batch{}, err
	}
	defer release()
	return s.observations(ctx, key, f)
}

func (s *Service) observations(ctx context.Context, key string, f aggregate.Filter) (model.Batch, error) {
	b, err := s.store.Load(ctx, key)
	if err != nil {
		return model.Batch{}, fmt.Errorf("load %s: %w", key, err)
	}
	return s.agg.Filter(b, f), nil
}

// Summary returns per-category statistics of key.
func (s *Service) Summary(ctx context.Context, key string, f aggregate.Filter) ([]aggregate.SummaryRow, error) {
	b, err := s.Observations(ctx, key, f)
	if err != nil {
		return nil, err
	}
	return s.agg.Summary(b), nil
}

// Trend returns bucketed means of m for key.
func (s *Service) Trend(ctx context.Context, key string, f aggregate.Filter, m model.Measure, bucket aggregate.Bucket) ([]aggregate.TrendPoint, error) {
	b, err := s.Observations(ctx, key, f)
	if err != nil {
		return nil, err
	}
	return s.agg.Trend(b, m, bucket), nil
}

// Scatter returns x/y pairs per category for key.
func (s *Service) Scatter(ctx context.Context, key string, f aggregate.Filter, x, y model.Measure) ([]aggregate.ScatterSeries, error) {
	b, err := s.Observations(ctx, key, f)
	if err != nil {
		return nil, err
	}
	return s.agg.Scatter(b, x, y), nil
}

// Indicator returns the fastball relative table of key.
func (s *Service) Indicator(ctx context.Context, key string, f aggregate.Filter) ([]aggregate.IndicatorRow, error) {
	b, err := s.Observations(ctx, key, f)
	if err != nil {
		return nil, err
	}
	return s.agg.Indicator(b), nil
}

// CompareFastballs returns one fastball average point per stored subject.
func (s *Service) CompareFastballs(ctx context.Context, f aggregate.Filter) ([]aggregate.ComparePoint, error) {
	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return s.compareFastballs(ctx, f)
}

func (s *Service) compareFastballs(ctx context.Context, f aggregate.Filter) ([]aggregate.ComparePoint, error) {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	subjects := make(map[string]model.Batch, len(keys))
	for _, k := range keys {
		b, err := s.store.Load(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", k, err)
		}
		subjects[k] = s.agg.Filter(b, f)
	}
	return s.agg.CompareFastballs(subjects), nil
}
