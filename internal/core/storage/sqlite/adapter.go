package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/HonRosie/probable-octo-tribble/internal/core/bucket"
	"github.com/HonRosie/probable-octo-tribble/internal/core/storage"
	_ "modernc.org/sqlite" // Register sqlite driver
)

const connectPingTimeout = 5 * time.Second

// Adapter implements storage.CounterStore on an embedded SQLite database.
// Increments for one flush are applied in a single transaction; the unique
// constraint on (customer_id, minute) makes each upsert atomic per key.
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates an adapter over an already-open database handle.
// Used by Open and by tests that supply their own handle.
func NewAdapter(db *sql.DB) *Adapter {
	return &Adapter{db: db}
}

// Open opens the embedded database at the given DSN and configures the
// connection pool. WAL journaling lets queries read concurrently with an
// in-flight ingestion transaction.
//
// Example DSN: "file:hourcount.db"
//
// Schema is initialized separately via migrations.
func Open(dsn string, maxOpenConns, maxIdleConns int) (*Adapter, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), connectPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(pingCtx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL journal mode: %w", err)
	}

	slog.Info("[SQLite] Database opened",
		"dsn", dsn,
		"max_open_conns", maxOpenConns,
		"max_idle_conns", maxIdleConns)

	return NewAdapter(db), nil
}

// IncrementCounts applies a set of counter deltas in one transaction.
// Either every delta in the map is applied or none are; increments from
// previously committed flushes are never rolled back.
func (a *Adapter) IncrementCounts(ctx context.Context, deltas map[storage.CounterKey]int64) error {
	if len(deltas) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("increment counts: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	upsertStmt, err := tx.PrepareContext(ctx, queryUpsertMinuteCount)
	if err != nil {
		return fmt.Errorf("increment counts: prepare upsert: %w", err)
	}
	defer upsertStmt.Close()

	for key, delta := range deltas {
		if _, err := upsertStmt.ExecContext(ctx,
			key.CustomerID,
			bucket.FormatMinute(key.Minute),
			delta,
		); err != nil {
			return fmt.Errorf("increment counts: upsert %s/%s: %w",
				key.CustomerID, bucket.FormatMinute(key.Minute), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("increment counts: commit: %w", err)
	}

	slog.Debug("[SQLite] Applied counter increments", "keys", len(deltas))
	return nil
}

// MinuteCounts fetches one customer's counters whose minute lies in
// [start, end), ordered by minute ascending.
func (a *Adapter) MinuteCounts(ctx context.Context, customerID string, start, end time.Time) ([]storage.MinuteCount, error) {
	rows, err := a.db.QueryContext(ctx, queryMinuteCountsInRange,
		customerID,
		bucket.FormatMinute(start),
		bucket.FormatMinute(end),
	)
	if err != nil {
		return nil, fmt.Errorf("query minute counts: %w", err)
	}
	defer rows.Close()

	var results []storage.MinuteCount
	for rows.Next() {
		var minuteStr string
		var count int64

		if err := rows.Scan(&minuteStr, &count); err != nil {
			return nil, fmt.Errorf("scan minute count row: %w", err)
		}

		minute, err := bucket.ParseMinute(minuteStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored minute: %w", err)
		}

		results = append(results, storage.MinuteCount{
			CustomerID: customerID,
			Minute:     minute,
			EventCount: count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate minute counts: %w", err)
	}

	return results, nil
}

// DB returns the underlying *sql.DB so migrations and health checks can share
// this connection rather than opening a second one.
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// Close closes the database connection. Should be called during graceful shutdown.
func (a *Adapter) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	slog.Info("[SQLite] Adapter closed gracefully")
	return nil
}
