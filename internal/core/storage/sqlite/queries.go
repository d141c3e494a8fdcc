package sqlite

// SQL statements for the minute counter table.

const (
	// queryUpsertMinuteCount applies one counter delta atomically.
	// Events arrive in arbitrary order, so a row for (customer, minute) may
	// already exist; the unique constraint turns the insert into an in-place
	// increment instead of a duplicate row. The conditional write happens
	// inside the engine, so there is no read-modify-write race to lose.
	queryUpsertMinuteCount = `
		INSERT INTO events_aggregation (customer_id, minute, event_count)
		VALUES (?, ?, ?)
		ON CONFLICT (customer_id, minute)
		DO UPDATE SET event_count = event_count + excluded.event_count
	`

	// queryMinuteCountsInRange fetches one customer's counters in [start, end).
	// Bounds are compared as text in the canonical minute layout, where
	// lexicographic order equals chronological order.
	queryMinuteCountsInRange = `
		SELECT minute, event_count
		FROM events_aggregation
		WHERE customer_id = ?
		  AND minute >= ?
		  AND minute < ?
		ORDER BY minute ASC
	`
)
