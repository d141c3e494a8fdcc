// Package ingestion folds raw events into durable per-customer, per-minute
// counters. Raw events are discarded once counted; only the counters persist.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	v1 "github.com/HonRosie/probable-octo-tribble/internal/api/v1"
	"github.com/HonRosie/probable-octo-tribble/internal/core/bucket"
	"github.com/HonRosie/probable-octo-tribble/internal/core/storage"
)

const (
	defaultBatchSize   = 1000
	defaultWorkerCount = 4
)

// EventSource supplies a stream of already-decoded raw events.
// The decoder package provides the delimited-file implementation.
type EventSource interface {
	Events(ctx context.Context, fn func(*v1.RawEvent) error) error
}

// Service is the aggregator: it accumulates (customer, minute) deltas in
// memory and flushes them to the counter store in batches. The final counter
// table is identical for any arrival order of the same events, because each
// flush is an atomic, commutative increment.
type Service struct {
	store       storage.CounterStore
	batchSize   int
	workerCount int
}

// NewService creates an aggregator writing to the given counter store.
// batchSize is the number of unique (customer, minute) keys accumulated
// before a flush; workerCount bounds concurrent flushes.
func NewService(store storage.CounterStore, batchSize, workerCount int) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return &Service{
		store:       store,
		batchSize:   batchSize,
		workerCount: workerCount,
	}
}

// Ingest folds a slice of raw events into the counter store.
// It is the batch form of IngestFrom and shares its semantics.
func (s *Service) Ingest(ctx context.Context, events []*v1.RawEvent) error {
	return s.IngestFrom(ctx, sliceSource(events))
}

// IngestFrom consumes every event from src, accumulating one delta per
// (customer, canonical minute) key and flushing whenever the number of
// unique keys reaches the batch size, plus a final flush at end of stream.
//
// If a flush fails, ingestion stops and the error is returned; flushes
// already committed stay applied. Re-running the same input after a partial
// failure would double count the already-applied events — callers deciding
// to retry must retry only what was not yet applied.
func (s *Service) IngestFrom(ctx context.Context, src EventSource) error {
	runID := uuid.NewString()
	slog.Info("Ingestion run starting", "run_id", runID, "batch_size", s.batchSize, "workers", s.workerCount)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workerCount)

	deltas := make(map[storage.CounterKey]int64, s.batchSize)
	var events, flushes int64

	flush := func() {
		if len(deltas) == 0 {
			return
		}
		batch := deltas
		deltas = make(map[storage.CounterKey]int64, s.batchSize)
		flushes++

		group.Go(func() error {
			if err := s.store.IncrementCounts(groupCtx, batch); err != nil {
				return fmt.Errorf("flush counter batch: %w", err)
			}
			return nil
		})
	}

	err := src.Events(groupCtx, func(evt *v1.RawEvent) error {
		key := storage.CounterKey{
			CustomerID: evt.CustomerID,
			Minute:     bucket.MinuteOf(evt.Timestamp),
		}
		deltas[key]++
		events++

		if len(deltas) >= s.batchSize {
			flush()
		}
		// A failed flush cancels groupCtx; stop reading instead of
		// accumulating deltas that will never be applied.
		return groupCtx.Err()
	})

	if err == nil {
		flush()
	}

	if waitErr := group.Wait(); waitErr != nil {
		slog.Error("Ingestion run failed", "run_id", runID, "events", events, "error", waitErr)
		return waitErr
	}
	if err != nil {
		slog.Error("Ingestion run failed", "run_id", runID, "events", events, "error", err)
		return fmt.Errorf("ingest events: %w", err)
	}

	slog.Info("Ingestion run complete", "run_id", runID, "events", events, "flushes", flushes)
	return nil
}

// sliceSource adapts an in-memory slice to the EventSource interface.
type sliceSource []*v1.RawEvent

func (s sliceSource) Events(ctx context.Context, fn func(*v1.RawEvent) error) error {
	for _, evt := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(evt); err != nil {
			return err
		}
	}
	return nil
}
