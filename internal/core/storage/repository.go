package storage

import (
	"context"
	"time"
)

// CounterKey identifies one durable minute counter: a customer and the
// canonical UTC minute its events fell in.
type CounterKey struct {
	CustomerID string
	Minute     time.Time
}

// MinuteCount is the durable, deduplicated count of events for one customer
// in one calendar minute. It is the only persisted entity in the system.
type MinuteCount struct {
	CustomerID string
	Minute     time.Time
	EventCount int64
}

// CounterStore defines the interface for the minute counter table.
type CounterStore interface {
	// IncrementCounts atomically applies a set of counter deltas: for each
	// key the stored event_count grows by the given amount, with the row
	// created on first observation. The upsert must be atomic per key so
	// that concurrent or repeated ingestion never loses an increment.
	IncrementCounts(ctx context.Context, deltas map[CounterKey]int64) error

	// MinuteCounts fetches the counters for one customer whose minute lies
	// in the half-open window [start, end), ordered by minute ascending.
	// A customer with no rows yields an empty slice, not an error.
	MinuteCounts(ctx context.Context, customerID string, start, end time.Time) ([]MinuteCount, error)
}
