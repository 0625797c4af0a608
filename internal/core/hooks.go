package core

import (
	"context"
	"time"
)

// QueryEvent contains information about an executed statement.
// This is passed to QueryHook callbacks for logging, metrics, or tracing.
type QueryEvent struct {
	// SQL is the statement text with named placeholders
	SQL string
	// Params is the named parameter map bound to the statement
	Params Params
	// Duration is how long the statement took to execute
	Duration time.Duration
	// RowsAffected is the number of rows affected (for INSERT/UPDATE/DELETE)
	RowsAffected int64
	// Error is any error that occurred during execution (nil on success)
	Error error
	// Operation is the SQL operation type (SELECT, INSERT, UPDATE, DELETE, UNKNOWN)
	Operation string
}

// QueryHook is a callback function invoked after each statement execution.
// Use this for logging, metrics, distributed tracing, or debugging.
//
// Example:
//
//	db, _ := fabrica.Open("postgres", dsn,
//	    fabrica.WithQueryHook(func(ctx context.Context, e fabrica.QueryEvent) {
//	        slog.Info("query", "sql", e.SQL, "duration", e.Duration, "err", e.Error)
//	    }))
type QueryHook func(ctx context.Context, event QueryEvent)

// invokeHook calls the query hook if set.
func (db *DB) invokeHook(ctx context.Context, event QueryEvent) {
	if db.queryHook != nil {
		db.queryHook(ctx, event)
	}
}
