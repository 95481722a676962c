// Package accumulate merges newly parsed observations into a subject's
// persistent store without duplicating rows.
package accumulate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/pitchtrack/internal/domain/dedupe"
	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/pkg/logger"
)

// ErrNotFound is returned by a Store that has nothing for a key. The
// accumulator treats it as an empty batch.
var ErrNotFound = errors.New("subject not found")

// Store is the persistence the accumulator needs. Replace must swap the
// whole content of key atomically.
type Store interface {
	Load(ctx context.Context, key string) (model.Batch, error)
	Replace(ctx context.Context, key string, b model.Batch) error
}

// Result describes one Append.
type Result struct {
	Batch      model.Batch // merged content now in the store
	Previous   int         // rows before the append
	Added      int         // rows after minus rows before
	Duplicates int         // incoming rows dropped as duplicates
}

// Accumulator appends batches to a Store.
type Accumulator struct {
	store Store
	log   logger.Logger
}

// New creates an Accumulator over store.
func New(store Store, opts ...Option) *Accumulator {
	a := &Accumulator{store: store}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Append loads the stored batch for key, appends b after it, removes
// duplicates over (date, category, merged schema) keeping the first
// occurrence and replaces the stored content. Appending the same batch twice
// leaves the store as after the first append.
func (a *Accumulator) Append(ctx context.Context, key string, b model.Batch) (Result, error) {
	if strings.TrimSpace(key) == "" {
		return Result{}, ErrInvalidKey
	}

	old, err := a.store.Load(ctx, key)
	existed := true
	if errors.Is(err, ErrNotFound) {
		old, existed, err = model.Batch{}, false, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: load %s: %w", ErrStorage, key, err)
	}

	merged := model.Batch{
		Schema:       old.Schema.Union(b.Schema),
		Observations: make([]model.Observation, 0, old.Len()+b.Len()),
	}
	merged.Observations = append(merged.Observations, old.Observations...)
	merged.Observations = append(merged.Observations, b.Observations...)
	merged, dropped := dedupe.Unique(merged)

	res := Result{
		Batch:      merged,
		Previous:   old.Len(),
		Added:      merged.Len() - old.Len(),
		Duplicates: dropped,
	}

	switch {
	case !existed && merged.Len() == 0:
		return res, nil
	case existed && res.Added == 0 && merged.Schema == old.Schema:
		return res, nil
	}

	if err := a.store.Replace(ctx, key, merged); err != nil {
		return Result{}, fmt.Errorf("%w: replace %s: %w", ErrStorage, key, err)
	}
	if a.log != nil {
		a.log.Debug(ctx, "subject store replaced",
			logger.String("subject", key),
			logger.Int("rows", merged.Len()),
			logger.Int("added", res.Added),
			logger.Int("duplicates", res.Duplicates))
	}
	return res, nil
}
