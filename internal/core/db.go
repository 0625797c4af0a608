package core

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/coregx/fabrica/internal/cache"
	"github.com/coregx/fabrica/internal/dialects"
	"github.com/coregx/fabrica/internal/logger"
	"github.com/coregx/fabrica/internal/security"
	"github.com/coregx/fabrica/internal/tracer"
)

// DB represents a database connection with statement caching, logging,
// tracing, and optional security validation.
type DB struct {
	sqlDB      *sql.DB
	driverName string
	stmtCache  *cache.StmtCache
	dialect    dialects.Dialect
	logger     logger.Logger
	sanitizer  *logger.Sanitizer
	tracer     tracer.Tracer
	queryHook  QueryHook
	validator  *security.Validator
	auditor    *security.Auditor

	health         *healthChecker
	healthInterval time.Duration

	ctx context.Context
}

// Tx represents a database transaction. Statements built through its builder
// or NewQuery bypass the statement cache and run on the transaction
// connection.
type Tx struct {
	tx  *sql.Tx
	db  *DB
	ctx context.Context
}

// TxOptions represents transaction options including isolation level.
type TxOptions struct {
	// Isolation level for the transaction (e.g., sql.LevelReadCommitted)
	Isolation sql.IsolationLevel
	// ReadOnly indicates whether the transaction is read-only
	ReadOnly bool
}

// Option is a functional option for configuring DB.
type Option func(*DB)

// WithMaxOpenConns sets the maximum number of open connections.
func WithMaxOpenConns(n int) Option {
	return func(db *DB) {
		db.sqlDB.SetMaxOpenConns(n)
	}
}

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(n int) Option {
	return func(db *DB) {
		db.sqlDB.SetMaxIdleConns(n)
	}
}

// WithConnMaxLifetime sets the maximum amount of time a connection may be
// reused.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(db *DB) {
		db.sqlDB.SetConnMaxLifetime(d)
	}
}

// WithConnMaxIdleTime sets the maximum amount of time a connection may be
// idle.
func WithConnMaxIdleTime(d time.Duration) Option {
	return func(db *DB) {
		db.sqlDB.SetConnMaxIdleTime(d)
	}
}

// WithStmtCacheCapacity sets the prepared statement cache capacity.
func WithStmtCacheCapacity(capacity int) Option {
	return func(db *DB) {
		db.stmtCache = cache.NewStmtCacheWithCapacity(capacity)
	}
}

// WithLogger sets the logger used for statement execution logging.
func WithLogger(log logger.Logger) Option {
	return func(db *DB) {
		db.logger = log
	}
}

// WithSensitiveFields replaces the default set of sensitive field names used
// to mask parameter values before logging.
func WithSensitiveFields(fields ...string) Option {
	return func(db *DB) {
		db.sanitizer = logger.NewSanitizer(fields)
	}
}

// WithTracer sets the tracer used to record statement execution spans.
func WithTracer(t tracer.Tracer) Option {
	return func(db *DB) {
		db.tracer = t
	}
}

// WithQueryHook sets a callback invoked after every statement execution.
func WithQueryHook(hook QueryHook) Option {
	return func(db *DB) {
		db.queryHook = hook
	}
}

// WithValidator enables SQL injection validation of statements and parameters
// before they are prepared. Validation is off by default; raw fragments are
// the caller's responsibility.
func WithValidator(opts ...security.ValidatorOption) Option {
	return func(db *DB) {
		db.validator = security.NewValidator(opts...)
	}
}

// WithAudit enables the audit trail for executed statements.
func WithAudit(log *slog.Logger, level security.AuditLevel) Option {
	return func(db *DB) {
		db.auditor = security.NewAuditor(log, level)
	}
}

// WithHealthCheck enables periodic background pings at the given interval.
func WithHealthCheck(interval time.Duration) Option {
	return func(db *DB) {
		db.healthInterval = interval
	}
}

// NewDB creates a new DB for the given driver and DSN with default
// configuration.
func NewDB(driverName, dsn string) (*DB, error) {
	return Open(driverName, dsn)
}

// Open creates a new DB for the given driver and DSN, then applies options.
// Returns an error wrapping ErrUnsupportedDialect when no dialect is
// registered for the driver name.
func Open(driverName, dsn string, opts ...Option) (*DB, error) {
	if !dialects.HasDialect(driverName) {
		return nil, WrapError(ErrUnsupportedDialect, driverName)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	return configure(newDB(sqlDB, driverName), opts), nil
}

// WrapDB wraps an existing sql.DB connection. The caller keeps ownership of
// pool configuration already applied to sqlDB; Close still closes it.
func WrapDB(sqlDB *sql.DB, driverName string, opts ...Option) (*DB, error) {
	if !dialects.HasDialect(driverName) {
		return nil, WrapError(ErrUnsupportedDialect, driverName)
	}
	return configure(newDB(sqlDB, driverName), opts), nil
}

func newDB(sqlDB *sql.DB, driverName string) *DB {
	return &DB{
		sqlDB:      sqlDB,
		driverName: driverName,
		stmtCache:  cache.NewStmtCache(),
		dialect:    dialects.GetDialect(driverName),
		sanitizer:  logger.NewSanitizer(nil),
		tracer:     &tracer.NoopTracer{},
	}
}

func configure(db *DB, opts []Option) *DB {
	for _, opt := range opts {
		opt(db)
	}

	if db.healthInterval > 0 {
		db.health = newHealthChecker(db.sqlDB, db.logger, db.healthInterval)
		db.health.start()
	}

	return db
}

// Close releases all database resources: the health checker, every cached
// prepared statement, and the underlying connection pool.
func (db *DB) Close() error {
	if db.health != nil {
		db.health.shutdown()
	}
	db.stmtCache.Clear()
	return db.sqlDB.Close()
}

// WithContext returns a shallow copy of the DB whose builders and queries
// default to the given context.
func (db *DB) WithContext(ctx context.Context) *DB {
	newDB := *db
	newDB.ctx = ctx
	return &newDB
}

// NewQuery creates a query from raw SQL text. The text may embed {:name}
// parameter placeholders and {{table}} / [[column]] identifier quoting, both
// resolved at execution time.
func (db *DB) NewQuery(sqlText string) *Query {
	return &Query{
		sql:     sqlText,
		params:  Params{},
		db:      db,
		ctx:     db.ctx,
		dialect: db.dialect,
	}
}

// NewQuery creates a query that executes within this transaction.
func (tx *Tx) NewQuery(sqlText string) *Query {
	q := tx.db.NewQuery(sqlText)
	q.tx = tx.tx
	q.ctx = tx.ctx
	return q
}

// Begin starts a transaction with default options.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	return db.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with the specified options.
// Options can specify isolation level and read-only mode.
func (db *DB) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	var sqlOpts *sql.TxOptions
	if opts != nil {
		sqlOpts = &sql.TxOptions{
			Isolation: opts.Isolation,
			ReadOnly:  opts.ReadOnly,
		}
	}

	tx, err := db.sqlDB.BeginTx(ctx, sqlOpts)
	if err != nil {
		return nil, err
	}

	return &Tx{
		tx:  tx,
		db:  db,
		ctx: ctx,
	}, nil
}

// Transactional runs fn within a transaction. The transaction is rolled back
// when fn returns an error or panics, and committed otherwise.
func (db *DB) Transactional(ctx context.Context, fn func(*Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Commit commits the transaction. Finishing an already committed or rolled
// back transaction returns ErrTxDone.
func (tx *Tx) Commit() error {
	return txDoneError(tx.tx.Commit())
}

// Rollback rolls back the transaction. Finishing an already committed or
// rolled back transaction returns ErrTxDone.
func (tx *Tx) Rollback() error {
	return txDoneError(tx.tx.Rollback())
}

func txDoneError(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return ErrTxDone
	}
	return err
}

// ExecContext executes raw SQL with positional arguments, bypassing named
// parameter processing and the statement cache.
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.sqlDB.ExecContext(ctx, query, args...)
}

// QueryContext executes raw SQL with positional arguments and returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.sqlDB.QueryContext(ctx, query, args...)
}

// QueryRowContext executes raw SQL expected to return at most one row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.sqlDB.QueryRowContext(ctx, query, args...)
}

// IsHealthy reports database reachability. With a health checker configured
// it reports the outcome of the most recent background ping; otherwise it
// pings synchronously.
func (db *DB) IsHealthy() bool {
	if db.health != nil {
		return db.health.isHealthy()
	}
	return db.sqlDB.Ping() == nil
}

// HealthError returns the error from the most recent background health check.
// It returns nil when no health checker is configured or the last check
// passed.
func (db *DB) HealthError() error {
	if db.health == nil {
		return nil
	}
	return db.health.lastError()
}

// LastHealthCheck returns the time of the most recent background health
// check, or the zero time when no health checker is configured.
func (db *DB) LastHealthCheck() time.Time {
	if db.health == nil {
		return time.Time{}
	}
	return db.health.lastCheck()
}

// PoolStats reports connection pool usage and the current health state.
type PoolStats struct {
	MaxOpenConnections int // Pool capacity
	OpenConnections    int // Established connections, in use and idle
	InUse              int // Connections currently in use
	Idle               int // Idle connections

	Healthy         bool      // Current health state
	LastHealthCheck time.Time // Zero when background health checks are disabled
}

// Stats returns connection pool statistics and the current health state.
func (db *DB) Stats() PoolStats {
	s := db.sqlDB.Stats()
	return PoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		Healthy:            db.IsHealthy(),
		LastHealthCheck:    db.LastHealthCheck(),
	}
}

// CacheStats returns prepared statement cache metrics.
func (db *DB) CacheStats() cache.Stats {
	return db.stmtCache.Stats()
}

// DriverName returns the name of the SQL driver backing this connection.
func (db *DB) DriverName() string {
	return db.driverName
}
