package v1

import (
	"fmt"
	"time"
)

// RawEvent is one observed customer action before aggregation.
// It exists only in transit: the decoder produces it, the aggregator folds it
// into a minute counter, and nothing of it is retained afterwards.
type RawEvent struct {
	// CustomerID is the opaque identifier of the customer that sent the event.
	CustomerID string `json:"customer_id"`

	// Timestamp is when the event occurred, carrying its original timezone
	// offset. Aggregation normalizes it to UTC.
	Timestamp time.Time `json:"timestamp"`
}

// Validate ensures the event carries everything aggregation needs.
// The decoder calls this before handing the event downstream; the aggregator
// assumes events it receives are well-formed.
func (e *RawEvent) Validate() error {
	if e.CustomerID == "" {
		return fmt.Errorf("customer_id is required")
	}

	if e.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	return nil
}
