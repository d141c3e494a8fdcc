// Package query reconstructs hour-bucketed count series from the minute
// counter table. Queries never mutate state and may run concurrently with
// ingestion.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HonRosie/probable-octo-tribble/internal/core/bucket"
	"github.com/HonRosie/probable-octo-tribble/internal/core/storage"
)

// ErrInvalidRange marks request validation errors that should return HTTP 400.
var ErrInvalidRange = errors.New("invalid query range")

// Service implements the bucketed range query over the counter store.
type Service struct {
	store storage.CounterStore
}

// NewService creates a query service reading from the given counter store.
func NewService(store storage.CounterStore) *Service {
	if store == nil {
		panic("query: store must not be nil")
	}
	return &Service{store: store}
}

// HourlyCounts returns the number of events the customer sent per hour over
// the half-open window [start, end).
//
// The result covers every hour boundary the window touches, in chronological
// order with no gaps; hours without events appear with count zero. The first
// and last buckets only count minutes inside the window, so the sum over all
// buckets equals the customer's event total in [start, end) exactly.
func (s *Service) HourlyCounts(ctx context.Context, req HourlyCountsRequest) (*HourlyCountsResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	// The store fetch is already bounded by [start, end), which is what
	// clamps the first and last buckets: minutes outside the window never
	// reach the rollup.
	counts, err := s.store.MinuteCounts(ctx, req.CustomerID, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("query minute counts: %w", err)
	}

	perHour := make(map[time.Time]int64, len(counts))
	for _, mc := range counts {
		perHour[bucket.HourOf(mc.Minute)] += mc.EventCount
	}

	hours := bucket.HourStartsBetween(req.Start, req.End)
	buckets := make([]HourBucket, 0, len(hours))
	for _, h := range hours {
		buckets = append(buckets, HourBucket{
			HourStart: h,
			Count:     perHour[h],
		})
	}

	return &HourlyCountsResponse{
		CustomerID: req.CustomerID,
		Start:      req.Start.UTC(),
		End:        req.End.UTC(),
		Buckets:    buckets,
	}, nil
}

func validate(req HourlyCountsRequest) error {
	if req.CustomerID == "" {
		return invalidRangef("customer_id is required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return invalidRangef("start and end are required")
	}
	if !req.End.After(req.Start) {
		return invalidRangef("end time must be after start time")
	}
	return nil
}

func invalidRangef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRange, fmt.Sprintf(format, args...))
}
