// Package fabrica provides a fluent SQL statement builder for Go with named
// parameter binding, typed value coercion, and deterministic rendering of
// SELECT, COUNT, INSERT, UPDATE, and DELETE statements for MySQL, PostgreSQL,
// and SQLite. Statements execute through database/sql with prepared statement
// caching, structured logging, and OpenTelemetry tracing out of the box.
package fabrica

import (
	"github.com/coregx/fabrica/internal/core"
	"github.com/coregx/fabrica/internal/logger"
	"github.com/coregx/fabrica/internal/security"
	"github.com/coregx/fabrica/internal/tracer"
)

type (
	// DB represents a database connection with statement caching, logging,
	// tracing, and optional security validation.
	DB = core.DB
	// Tx represents a database transaction.
	Tx = core.Tx
	// TxOptions represents transaction options including isolation level.
	TxOptions = core.TxOptions
	// Option is a functional option for configuring DB.
	Option = core.Option
	// Builder accumulates statement clauses and named parameters, then
	// renders them into executable statements.
	Builder = core.Builder
	// Query is a built statement: SQL text with named placeholders and the
	// parameter values bound to them.
	Query = core.Query
	// Params represents named parameter values for statement binding.
	Params = core.Params
	// Row is one fetched row, keyed by column name.
	Row = core.Row
	// Combinator is the boolean operator joining top-level WHERE fragments.
	Combinator = core.Combinator
	// FetchMode selects what Select fetches from the rendered statement.
	FetchMode = core.FetchMode
	// QueryEvent contains information about an executed statement.
	QueryEvent = core.QueryEvent
	// QueryHook is a callback invoked after each statement execution.
	QueryHook = core.QueryHook
	// PoolStats reports connection pool usage and the current health state.
	PoolStats = core.PoolStats

	// Logger is the pluggable logging interface.
	Logger = logger.Logger
	// NoopLogger discards all log output.
	NoopLogger = logger.NoopLogger
	// SlogAdapter adapts a log/slog.Logger to the Logger interface.
	SlogAdapter = logger.SlogAdapter
	// Tracer is the pluggable tracing interface.
	Tracer = tracer.Tracer
	// AuditLevel selects which operations reach the audit trail.
	AuditLevel = security.AuditLevel
	// ValidatorOption configures the SQL injection validator.
	ValidatorOption = security.ValidatorOption
)

// RowMapper converts a fetched Row into a caller-defined value.
type RowMapper[T any] = core.RowMapper[T]

const (
	// And joins WHERE fragments with AND (the default combinator).
	And = core.And
	// Or joins WHERE fragments with OR.
	Or = core.Or
)

const (
	// FetchNone executes the statement and reports the affected row count.
	FetchNone = core.FetchNone
	// FetchAll fetches every row.
	FetchAll = core.FetchAll
	// FetchRow fetches the first row.
	FetchRow = core.FetchRow
	// FetchColumn fetches the first column of every row.
	FetchColumn = core.FetchColumn
	// FetchCell fetches the first column of the first row.
	FetchCell = core.FetchCell
)

const (
	// AuditNone disables audit logging.
	AuditNone = security.AuditNone
	// AuditWrites logs only write operations.
	AuditWrites = security.AuditWrites
	// AuditReads logs read operations in addition to writes.
	AuditReads = security.AuditReads
	// AuditAll logs all database operations.
	AuditAll = security.AuditAll
)

// Re-export core constructors and options.
var (
	Open       = core.Open
	NewDB      = core.NewDB
	WrapDB     = core.WrapDB
	NewBuilder = core.NewBuilder

	WithMaxOpenConns      = core.WithMaxOpenConns
	WithMaxIdleConns      = core.WithMaxIdleConns
	WithConnMaxLifetime   = core.WithConnMaxLifetime
	WithConnMaxIdleTime   = core.WithConnMaxIdleTime
	WithStmtCacheCapacity = core.WithStmtCacheCapacity
	WithLogger            = core.WithLogger
	WithSensitiveFields   = core.WithSensitiveFields
	WithTracer            = core.WithTracer
	WithQueryHook         = core.WithQueryHook
	WithValidator         = core.WithValidator
	WithAudit             = core.WithAudit
	WithHealthCheck       = core.WithHealthCheck

	// Logging and tracing adapters.
	NewSlogAdapter = logger.NewSlogAdapter
	NewOtelTracer  = tracer.NewOtelTracer

	// Validator options.
	WithStrict = security.WithStrict

	// Audit context helpers.
	WithUser      = security.WithUser
	WithClientIP  = security.WithClientIP
	WithRequestID = security.WithRequestID
)

// Re-export predefined errors.
var (
	ErrNoRows             = core.ErrNoRows
	ErrTxDone             = core.ErrTxDone
	ErrUnsupportedDialect = core.ErrUnsupportedDialect
	ErrEmptyReturns       = core.ErrEmptyReturns
	ErrNoExecutor         = core.ErrNoExecutor
	ErrInvalidField       = core.ErrInvalidField
	ErrMissingParam       = core.ErrMissingParam
)

// SelectAs executes the builder's rendered SELECT statement and maps every
// fetched row through mapper.
func SelectAs[T any](b *Builder, mapper RowMapper[T]) []T {
	return core.SelectAs(b, mapper)
}

// MapRows applies mapper to every row and returns the mapped values.
func MapRows[T any](rows []Row, mapper RowMapper[T]) []T {
	return core.MapRows(rows, mapper)
}
